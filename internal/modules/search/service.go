// Package search resolves free-text ticker lookups against Alpha Vantage
// symbol search, with cached results keyed by query.
package search

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/alphavantage"
)

// SearchClient fetches symbol matches for a keyword query.
type SearchClient interface {
	SearchSymbols(ctx context.Context, keywords string) ([]alphavantage.SearchResult, error)
}

var _ SearchClient = (*alphavantage.Client)(nil)

// Service serves symbol search results through the fallback cache.
type Service struct {
	client SearchClient
	store  *cache.Store[[]alphavantage.SearchResult]
	log    zerolog.Logger
}

// NewService creates a new search service
func NewService(client SearchClient, store *cache.Store[[]alphavantage.SearchResult], log zerolog.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		log:    log.With().Str("service", "search").Logger(),
	}
}

// Search returns symbol matches for the query. Queries differing only in
// case share a cache entry; an empty match list is cached like any other
// result so repeated lookups of unknown names do not hammer the upstream.
func (s *Service) Search(ctx context.Context, query string) (cache.Result[[]alphavantage.SearchResult], error) {
	key := strings.ToLower(strings.TrimSpace(query))

	return cache.Resolve(ctx, s.store, key, func(ctx context.Context) ([]alphavantage.SearchResult, error) {
		return s.client.SearchSymbols(ctx, query)
	})
}
