package cache

import (
	"context"
	"time"

	"github.com/mkelaidis/spyglass/internal/metrics"
	"github.com/mkelaidis/spyglass/internal/upstream"
)

// Result carries a resolved value and its provenance, so callers can tell
// live data, fresh cache hits and stale fallbacks apart.
type Result[T any] struct {
	Value  T
	Cached bool // served from the store rather than a live fetch
	Stale  bool // served past its TTL because the live fetch failed
}

// FetchFunc loads a fresh value from an upstream provider. Implementations
// return a typed upstream error on failure, including soft errors embedded
// in 2xx bodies; those must never be returned as data.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Resolve implements the fetch-or-fallback flow shared by every data
// endpoint:
//
//  1. A fresh entry for key is returned immediately, no upstream call.
//  2. Otherwise fetch is called exactly once. No retries.
//  3. On success the value is stored (legitimately-empty payloads included)
//     and returned.
//  4. On failure the entry is looked up again ignoring freshness; if present
//     it is returned marked stale, otherwise the typed error surfaces.
//
// Missing-credential errors are the exception to step 4: they surface
// immediately, so operators can tell a broken setup apart from a flaky
// upstream.
func Resolve[T any](ctx context.Context, store *Store[T], key string, fetch FetchFunc[T]) (Result[T], error) {
	if value, ok := store.GetIfFresh(key); ok {
		metrics.CacheHits.WithLabelValues(store.name).Inc()
		store.log.Debug().Str("key", key).Msg("Cache hit")
		return Result[T]{Value: value, Cached: true}, nil
	}
	metrics.CacheMisses.WithLabelValues(store.name).Inc()

	start := time.Now()
	value, err := fetch(ctx)
	metrics.FetchDuration.WithLabelValues(store.name).Observe(time.Since(start).Seconds())
	if err != nil {
		if upstream.IsNotConfigured(err) {
			return Result[T]{}, err
		}
		metrics.UpstreamFailures.WithLabelValues(store.name).Inc()

		if stale, storedAt, ok := store.Get(key); ok {
			metrics.StaleFallbacks.WithLabelValues(store.name).Inc()
			store.log.Warn().
				Err(err).
				Str("key", key).
				Time("stored_at", storedAt).
				Msg("Upstream failed, using stale cached data")
			return Result[T]{Value: stale, Cached: true, Stale: true}, nil
		}
		return Result[T]{}, err
	}

	store.Set(key, value)
	return Result[T]{Value: value}, nil
}
