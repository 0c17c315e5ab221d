// Package metrics holds the Prometheus collectors for the cache and fetch
// pipeline. Everything is registered on the default registry and served via
// promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spyglass_cache_hits_total",
	Help: "The total number of fresh cache hits per store",
}, []string{"store"})

var CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spyglass_cache_misses_total",
	Help: "The total number of cache misses (absent or expired) per store",
}, []string{"store"})

var StaleFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spyglass_cache_stale_fallbacks_total",
	Help: "The total number of responses served from expired entries after an upstream failure",
}, []string{"store"})

var UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spyglass_upstream_failures_total",
	Help: "The total number of failed upstream fetches per store",
}, []string{"store"})

var FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "spyglass_fetch_duration_seconds",
	Help:    "A histogram of upstream fetch latencies per store",
	Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
}, []string{"store"})

var CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "spyglass_cache_entries",
	Help: "The current number of entries held per store, fresh or stale",
}, []string{"store"})
