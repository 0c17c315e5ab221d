package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/events"
)

type adminFixture struct {
	handlers   *CacheAdminHandlers
	router     *chi.Mux
	bus        *events.Bus
	earnings   *cache.Store[string]
	estimates  *cache.Store[string]
	financials *cache.Store[string]
	profiles   *cache.Store[string]
}

func setupCacheAdmin(t *testing.T) *adminFixture {
	t.Helper()

	log := zerolog.Nop()
	f := &adminFixture{
		bus:        events.NewBus(log),
		earnings:   cache.New[string]("earnings", time.Hour, log),
		estimates:  cache.New[string]("estimates", time.Hour, log),
		financials: cache.New[string]("financials", time.Hour, log),
		profiles:   cache.New[string]("profiles", time.Hour, log),
	}

	manager := events.NewManager(f.bus, log)
	f.handlers = NewCacheAdminHandlers(manager, log)
	f.handlers.Register("earnings", f.earnings, f.estimates)
	f.handlers.Register("estimates", f.estimates)
	f.handlers.Register("financials", f.financials)
	f.handlers.Register("profiles", f.profiles)

	f.router = chi.NewRouter()
	f.router.Post("/api/admin/cache/{store}/clear", f.handlers.HandleClearStore)
	f.router.Get("/api/admin/cache/status", f.handlers.HandleCacheStatus)

	return f
}

func (f *adminFixture) do(t *testing.T, method, target string) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestClearStoreWithKeyCascadesToCompanions(t *testing.T) {
	f := setupCacheAdmin(t)
	f.earnings.Set("AAPL", "q3 earnings")
	f.earnings.Set("MSFT", "q2 earnings")
	f.estimates.Set("AAPL", "q4 estimates")
	f.profiles.Set("AAPL", "profile")

	w, resp := f.do(t, http.MethodPost, "/api/admin/cache/earnings/clear?key=AAPL")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "earnings", data["store"])
	assert.Equal(t, "AAPL", data["key"])
	assert.Equal(t, float64(2), data["cleared"])
	assert.Equal(t, []interface{}{"estimates"}, data["cascaded"])

	_, _, ok = f.earnings.Get("AAPL")
	assert.False(t, ok, "earnings entry should be gone")
	_, _, ok = f.estimates.Get("AAPL")
	assert.False(t, ok, "estimates entry should cascade away")
	_, _, ok = f.earnings.Get("MSFT")
	assert.True(t, ok, "other symbols must stay")
	_, _, ok = f.profiles.Get("AAPL")
	assert.True(t, ok, "profiles are not part of the earnings group")
}

func TestClearStoreWithoutKeyEmptiesGroup(t *testing.T) {
	f := setupCacheAdmin(t)
	f.earnings.Set("AAPL", "a")
	f.earnings.Set("MSFT", "b")
	f.estimates.Set("AAPL", "c")

	w, resp := f.do(t, http.MethodPost, "/api/admin/cache/earnings/clear")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["cleared"])
	assert.Equal(t, 0, f.earnings.Len())
	assert.Equal(t, 0, f.estimates.Len())
}

func TestClearFinancialsLeavesProfilesAlone(t *testing.T) {
	f := setupCacheAdmin(t)
	f.financials.Set("AAPL_income", "statement")
	f.profiles.Set("AAPL", "profile")

	_, resp := f.do(t, http.MethodPost, "/api/admin/cache/financials/clear?key=AAPL_income")

	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, data, "cascaded")

	_, _, ok = f.financials.Get("AAPL_income")
	assert.False(t, ok)
	_, _, ok = f.profiles.Get("AAPL")
	assert.True(t, ok)
}

func TestClearAbsentKeyStillAcknowledges(t *testing.T) {
	f := setupCacheAdmin(t)

	w, resp := f.do(t, http.MethodPost, "/api/admin/cache/earnings/clear?key=UNSEEN")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(0), data["cleared"])
}

func TestClearUnknownStoreIsNotFound(t *testing.T) {
	f := setupCacheAdmin(t)

	w, resp := f.do(t, http.MethodPost, "/api/admin/cache/bogus/clear")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown cache store")
}

func TestClearEmitsCacheClearedEvent(t *testing.T) {
	f := setupCacheAdmin(t)
	f.earnings.Set("AAPL", "a")
	f.estimates.Set("AAPL", "b")

	var received *events.Event
	f.bus.Subscribe(events.CacheCleared, func(e *events.Event) {
		received = e
	})

	f.do(t, http.MethodPost, "/api/admin/cache/earnings/clear?key=AAPL")

	require.NotNil(t, received)
	assert.Equal(t, "cache_admin", received.Module)

	typed := received.GetTypedData()
	require.NotNil(t, typed)
	cleared, ok := typed.(*events.CacheClearedData)
	require.True(t, ok)
	assert.Equal(t, "earnings", cleared.Store)
	assert.Equal(t, "AAPL", cleared.Key)
	assert.Equal(t, 2, cleared.Removed)
	assert.Equal(t, []string{"estimates"}, cleared.Cascaded)
}

func TestCacheStatusReportsEveryStoreOnce(t *testing.T) {
	f := setupCacheAdmin(t)
	f.earnings.Set("AAPL", "a")
	f.earnings.Set("MSFT", "b")
	f.estimates.Set("AAPL", "c")

	w, resp := f.do(t, http.MethodGet, "/api/admin/cache/status")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var status CacheStatusResponse
	require.NoError(t, json.Unmarshal(raw, &status))

	require.Len(t, status.Stores, 4)
	assert.Equal(t, 3, status.TotalEntries)

	names := make([]string, 0, len(status.Stores))
	byName := make(map[string]StoreStatus)
	for _, s := range status.Stores {
		names = append(names, s.Name)
		byName[s.Name] = s
	}
	assert.Equal(t, []string{"earnings", "estimates", "financials", "profiles"}, names)
	assert.Equal(t, 2, byName["earnings"].Entries)
	assert.Equal(t, 1, byName["estimates"].Entries)
	assert.Equal(t, 3600, byName["earnings"].TTLSeconds)
}
