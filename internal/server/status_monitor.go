package server

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/events"
	"github.com/mkelaidis/spyglass/internal/metrics"
)

// StatusMonitor periodically snapshots cache store sizes, refreshes the
// Prometheus entry gauges, and emits a CacheStatusChanged event whenever the
// snapshot differs from the previous one. It only reads store counters and
// never calls a provider; data flow stays request-driven.
type StatusMonitor struct {
	eventManager *events.Manager
	stores       []cache.Flusher
	log          zerolog.Logger

	lastCounts map[string]int
	stop       chan struct{}
}

// NewStatusMonitor creates a new status monitor over the given stores.
func NewStatusMonitor(eventManager *events.Manager, stores []cache.Flusher, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		eventManager: eventManager,
		stores:       stores,
		log:          log.With().Str("component", "status_monitor").Logger(),
		lastCounts:   make(map[string]int),
		stop:         make(chan struct{}),
	}
}

// Start begins periodic status monitoring.
func (m *StatusMonitor) Start(interval time.Duration) {
	go m.monitor(interval)
}

// Stop halts the monitoring loop.
func (m *StatusMonitor) Stop() {
	close(m.stop)
}

// monitor runs the periodic monitoring loop.
func (m *StatusMonitor) monitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial snapshot establishes the baseline and is always emitted.
	m.checkCacheStatus()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.checkCacheStatus()
		}
	}
}

// checkCacheStatus snapshots store sizes and emits an event when they changed.
func (m *StatusMonitor) checkCacheStatus() {
	counts := make(map[string]int, len(m.stores))
	total := 0
	changed := len(m.lastCounts) != len(m.stores)

	for _, store := range m.stores {
		n := store.Len()
		counts[store.Name()] = n
		total += n
		metrics.CacheEntries.WithLabelValues(store.Name()).Set(float64(n))
		if m.lastCounts[store.Name()] != n {
			changed = true
		}
	}

	if !changed {
		return
	}
	m.lastCounts = counts

	m.log.Debug().
		Int("total_entries", total).
		Msg("Cache status changed")

	if m.eventManager != nil {
		m.eventManager.EmitTyped(events.CacheStatusChanged, "status_monitor", &events.CacheStatusChangedData{
			Stores:       counts,
			TotalEntries: total,
			LastUpdated:  time.Now().Format(time.RFC3339),
		})
	}
}
