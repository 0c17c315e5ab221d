// Package crypto serves per-coin market data from CoinGecko.
package crypto

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/coingecko"
)

// CoinClient fetches market data for a single coin.
type CoinClient interface {
	GetCoin(ctx context.Context, id string) (coingecko.CoinData, error)
}

var _ CoinClient = (*coingecko.Client)(nil)

// Service serves coin market data through the fallback cache.
type Service struct {
	client CoinClient
	store  *cache.Store[coingecko.CoinData]
	log    zerolog.Logger
}

// NewService creates a new crypto service
func NewService(client CoinClient, store *cache.Store[coingecko.CoinData], log zerolog.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		log:    log.With().Str("service", "crypto").Logger(),
	}
}

// GetCoin returns market data for one CoinGecko coin id. Ids are lowercase
// upstream, so the key is lowercased to match.
func (s *Service) GetCoin(ctx context.Context, id string) (cache.Result[coingecko.CoinData], error) {
	key := strings.ToLower(strings.TrimSpace(id))

	return cache.Resolve(ctx, s.store, key, func(ctx context.Context) (coingecko.CoinData, error) {
		return s.client.GetCoin(ctx, key)
	})
}
