// Package summaries serves short AI-written company briefs. Generation is
// the most expensive upstream call in the system, so briefs are cached for a
// full day and stale copies are preferred over regeneration failures.
package summaries

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/aisummary"
)

// SummaryClient generates a company brief for a symbol.
type SummaryClient interface {
	GenerateSummary(ctx context.Context, symbol string) (aisummary.Summary, error)
}

var _ SummaryClient = (*aisummary.Client)(nil)

// Service serves AI summaries through the fallback cache.
type Service struct {
	client SummaryClient
	store  *cache.Store[aisummary.Summary]
	log    zerolog.Logger
}

// NewService creates a new summaries service
func NewService(client SummaryClient, store *cache.Store[aisummary.Summary], log zerolog.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		log:    log.With().Str("service", "summaries").Logger(),
	}
}

// GetSummary returns the brief for a symbol, generating one on a cache miss.
func (s *Service) GetSummary(ctx context.Context, symbol string) (cache.Result[aisummary.Summary], error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))

	return cache.Resolve(ctx, s.store, key, func(ctx context.Context) (aisummary.Summary, error) {
		return s.client.GenerateSummary(ctx, key)
	})
}
