// Package quotes serves OHLCV charts and previous session closes, cached per
// symbol/range/interval combination with stale fallback when the provider is
// down.
package quotes

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/clients/yahoo"
	"github.com/mkelaidis/spyglass/pkg/formulas"
)

// ChartClient fetches chart data from the quotes provider.
type ChartClient interface {
	GetChart(ctx context.Context, symbol, chartRange, interval string) (yahoo.Chart, error)
	GetPreviousClose(ctx context.Context, symbol string) (yahoo.PreviousClose, error)
}

var _ ChartClient = (*yahoo.Client)(nil)

// SMAPoint is one simple-moving-average value aligned to a candle.
type SMAPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// ChartPayload is the cached chart response: the normalized chart plus the
// optional SMA overlay that was requested with it.
type ChartPayload struct {
	yahoo.Chart
	SMA []SMAPoint `json:"sma,omitempty"`
}

// Service resolves chart and previous-close requests through their stores.
type Service struct {
	client ChartClient
	charts *cache.Store[ChartPayload]
	closes *cache.Store[yahoo.PreviousClose]
	log    zerolog.Logger
}

// NewService creates the quotes service.
func NewService(client ChartClient, charts *cache.Store[ChartPayload], closes *cache.Store[yahoo.PreviousClose], log zerolog.Logger) *Service {
	return &Service{
		client: client,
		charts: charts,
		closes: closes,
		log:    log.With().Str("service", "quotes").Logger(),
	}
}

// GetChart returns candles for a symbol, optionally with an SMA overlay when
// smaPeriod > 0. Each symbol/range/interval/sma combination caches
// independently.
func (s *Service) GetChart(ctx context.Context, symbol, chartRange, interval string, smaPeriod int) (cache.Result[ChartPayload], error) {
	key := chartKey(symbol, chartRange, interval, smaPeriod)

	return cache.Resolve(ctx, s.charts, key, func(ctx context.Context) (ChartPayload, error) {
		chart, err := s.client.GetChart(ctx, symbol, chartRange, interval)
		if err != nil {
			return ChartPayload{}, err
		}

		payload := ChartPayload{Chart: chart}
		if smaPeriod > 0 {
			payload.SMA = smaOverlay(chart.Candles, smaPeriod)
		}
		return payload, nil
	})
}

// GetPreviousClose returns the prior session close for a symbol.
func (s *Service) GetPreviousClose(ctx context.Context, symbol string) (cache.Result[yahoo.PreviousClose], error) {
	key := strings.ToUpper(symbol)

	return cache.Resolve(ctx, s.closes, key, func(ctx context.Context) (yahoo.PreviousClose, error) {
		return s.client.GetPreviousClose(ctx, symbol)
	})
}

// chartKey joins the request parameters so distinct combinations never
// collide ("AAPL_1mo_1d", "AAPL_1mo_1d_sma20").
func chartKey(symbol, chartRange, interval string, smaPeriod int) string {
	key := strings.ToUpper(symbol) + "_" + chartRange + "_" + interval
	if smaPeriod > 0 {
		key += "_sma" + strconv.Itoa(smaPeriod)
	}
	return key
}

// smaOverlay computes SMA points aligned to candle timestamps, skipping the
// warmup bars that have no average yet.
func smaOverlay(candles []yahoo.Candle, period int) []SMAPoint {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	values := formulas.SMA(closes, period)
	if values == nil {
		return nil
	}

	points := make([]SMAPoint, 0, len(candles)-period+1)
	for i := period - 1; i < len(values); i++ {
		points = append(points, SMAPoint{Timestamp: candles[i].Timestamp, Value: values[i]})
	}
	return points
}
