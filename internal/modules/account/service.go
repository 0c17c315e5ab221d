// Package account serves broker account data. Balances live under a single
// fixed cache key; the short TTL keeps the dashboard close to the broker
// while stale fallback covers session hiccups.
package account

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/broker"
)

// balancesKey is the only key in the balances store. The endpoint has no
// parameters, so every request shares one entry.
const balancesKey = "balances"

// BalancesClient fetches cash balances from the broker account.
type BalancesClient interface {
	GetCashBalances(ctx context.Context) ([]broker.CashBalance, error)
}

var _ BalancesClient = (*broker.Client)(nil)

// Service serves account data through the fallback cache.
type Service struct {
	client BalancesClient
	store  *cache.Store[[]broker.CashBalance]
	log    zerolog.Logger
}

// NewService creates a new account service
func NewService(client BalancesClient, store *cache.Store[[]broker.CashBalance], log zerolog.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		log:    log.With().Str("service", "account").Logger(),
	}
}

// GetBalances returns cash balances per currency. An account holding no cash
// is a legitimate empty result.
func (s *Service) GetBalances(ctx context.Context) (cache.Result[[]broker.CashBalance], error) {
	return cache.Resolve(ctx, s.store, balancesKey, func(ctx context.Context) ([]broker.CashBalance, error) {
		return s.client.GetCashBalances(ctx)
	})
}
