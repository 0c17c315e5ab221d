package server

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/events"
	"github.com/mkelaidis/spyglass/internal/metrics"
)

func TestStatusMonitorEmitsOnChangeOnly(t *testing.T) {
	log := zerolog.Nop()
	bus := events.NewBus(log)
	manager := events.NewManager(bus, log)

	charts := cache.New[string]("monitor_test_charts", time.Minute, log)
	news := cache.New[string]("monitor_test_news", time.Minute, log)

	var received []*events.Event
	bus.Subscribe(events.CacheStatusChanged, func(e *events.Event) {
		received = append(received, e)
	})

	monitor := NewStatusMonitor(manager, []cache.Flusher{charts, news}, log)

	// Baseline snapshot is emitted even when everything is empty.
	monitor.checkCacheStatus()
	require.Len(t, received, 1)

	// Nothing changed, nothing emitted.
	monitor.checkCacheStatus()
	require.Len(t, received, 1)

	charts.Set("AAPL_1mo_1d", "chart")
	monitor.checkCacheStatus()
	require.Len(t, received, 2)

	typed := received[1].GetTypedData()
	require.NotNil(t, typed)
	status, ok := typed.(*events.CacheStatusChangedData)
	require.True(t, ok)
	assert.Equal(t, 1, status.TotalEntries)
	assert.Equal(t, 1, status.Stores["monitor_test_charts"])
	assert.Equal(t, 0, status.Stores["monitor_test_news"])
}

func TestStatusMonitorUpdatesEntryGauge(t *testing.T) {
	log := zerolog.Nop()
	store := cache.New[string]("monitor_test_gauge", time.Minute, log)
	store.Set("a", "1")
	store.Set("b", "2")

	monitor := NewStatusMonitor(nil, []cache.Flusher{store}, log)
	monitor.checkCacheStatus()

	gauge := metrics.CacheEntries.WithLabelValues("monitor_test_gauge")
	assert.Equal(t, 2.0, testutil.ToFloat64(gauge))

	store.Clear()
	monitor.checkCacheStatus()
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge))
}

func TestStatusMonitorStartAndStop(t *testing.T) {
	log := zerolog.Nop()
	bus := events.NewBus(log)
	manager := events.NewManager(bus, log)

	baseline := make(chan *events.Event, 1)
	bus.Subscribe(events.CacheStatusChanged, func(e *events.Event) {
		select {
		case baseline <- e:
		default:
		}
	})

	store := cache.New[string]("monitor_test_lifecycle", time.Minute, log)
	monitor := NewStatusMonitor(manager, []cache.Flusher{store}, log)

	// A long interval means only the startup snapshot fires.
	monitor.Start(time.Hour)

	select {
	case <-baseline:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a baseline cache status event after Start")
	}

	require.NotPanics(t, monitor.Stop)
}
