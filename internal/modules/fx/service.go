// Package fx serves foreign exchange rates from exchangerate-api.com. The
// full table for a base currency is cached whole; per-request symbol filters
// are applied to a copy so one request's filter never narrows what later
// requests can see. Single-pair lookups carry the only last-resort behavior
// in the system: a short list of documented hardcoded rates served when the
// upstream is down and nothing is cached.
package fx

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/exchangerate"
)

// PairRate is one conversion rate between two currencies.
type PairRate struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Rate     float64 `json:"rate"`
	Fallback bool    `json:"fallback,omitempty"`
}

// defaultRates are the documented last-resort conversion rates. They stand in
// for real data only when the upstream call fails and the pair has never been
// cached, they are flagged as fallback in the payload, and they are never
// written to the cache. Pairs outside this table fail normally.
var defaultRates = map[string]float64{
	"EUR:USD": 1 / 0.9,
	"EUR:GBP": 1 / 1.2,
	"EUR:HKD": 1 / 0.11,
	"USD:EUR": 0.9,
	"GBP:EUR": 1.2,
	"HKD:EUR": 0.11,
}

// RatesClient fetches conversion rates.
type RatesClient interface {
	GetRates(ctx context.Context, base string) (exchangerate.Rates, error)
	GetPairRate(ctx context.Context, from, to string) (float64, error)
}

var _ RatesClient = (*exchangerate.Client)(nil)

// Service serves FX rates through the fallback caches.
type Service struct {
	client RatesClient
	rates  *cache.Store[exchangerate.Rates]
	pairs  *cache.Store[PairRate]
	log    zerolog.Logger
}

// NewService creates a new fx service
func NewService(client RatesClient, rates *cache.Store[exchangerate.Rates], pairs *cache.Store[PairRate], log zerolog.Logger) *Service {
	return &Service{
		client: client,
		rates:  rates,
		pairs:  pairs,
		log:    log.With().Str("service", "fx").Logger(),
	}
}

// GetRates returns the rate table for a base currency, optionally narrowed
// to the given symbols. The unfiltered table is what gets cached; filtering
// happens on a fresh map per request.
func (s *Service) GetRates(ctx context.Context, base string, symbols []string) (cache.Result[exchangerate.Rates], error) {
	key := strings.ToUpper(strings.TrimSpace(base))

	result, err := cache.Resolve(ctx, s.rates, key, func(ctx context.Context) (exchangerate.Rates, error) {
		return s.client.GetRates(ctx, key)
	})
	if err != nil {
		return result, err
	}

	if len(symbols) > 0 {
		filtered := make(map[string]float64, len(symbols))
		for _, code := range symbols {
			code = strings.ToUpper(strings.TrimSpace(code))
			if rate, ok := result.Value.Rates[code]; ok {
				filtered[code] = rate
			}
		}
		result.Value.Rates = filtered
	}

	return result, nil
}

// GetPairRate returns the conversion rate for one currency pair. Identical
// currencies convert at 1.0 without touching the cache or the upstream.
func (s *Service) GetPairRate(ctx context.Context, from, to string) (cache.Result[PairRate], error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return cache.Result[PairRate]{Value: PairRate{From: from, To: to, Rate: 1.0}}, nil
	}

	key := from + ":" + to

	result, err := cache.Resolve(ctx, s.pairs, key, func(ctx context.Context) (PairRate, error) {
		rate, err := s.client.GetPairRate(ctx, from, to)
		if err != nil {
			return PairRate{}, err
		}
		return PairRate{From: from, To: to, Rate: rate}, nil
	})
	if err != nil {
		if rate, ok := defaultRates[key]; ok {
			s.log.Warn().
				Err(err).
				Str("from", from).
				Str("to", to).
				Float64("rate", rate).
				Msg("Upstream failed with no cached rate, serving hardcoded fallback")
			return cache.Result[PairRate]{Value: PairRate{From: from, To: to, Rate: rate, Fallback: true}}, nil
		}
		return result, err
	}

	return result, nil
}
