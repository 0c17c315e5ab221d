package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/cache"
	"github.com/mkelaidis/spyglass/internal/events"
)

// CacheAdminHandlers exposes the cache maintenance endpoints. Stores register
// under a public name together with any companion stores that must be cleared
// alongside them, so dropping cached earnings for a symbol also drops the
// estimates derived from the same filing. Financials and profiles stay
// independent on purpose.
type CacheAdminHandlers struct {
	log    zerolog.Logger
	events *events.Manager
	order  []string                   // registration order, keeps status output stable
	groups map[string][]cache.Flusher // public name -> primary store plus cascade
}

// NewCacheAdminHandlers creates an empty registry of administrable stores.
func NewCacheAdminHandlers(eventManager *events.Manager, log zerolog.Logger) *CacheAdminHandlers {
	return &CacheAdminHandlers{
		log:    log.With().Str("handler", "cache_admin").Logger(),
		events: eventManager,
		groups: make(map[string][]cache.Flusher),
	}
}

// Register exposes a store group under a public name. The first store is the
// primary one; any further stores are cleared whenever the group is cleared.
func (h *CacheAdminHandlers) Register(name string, stores ...cache.Flusher) {
	if len(stores) == 0 {
		return
	}
	if _, exists := h.groups[name]; !exists {
		h.order = append(h.order, name)
	}
	h.groups[name] = stores
}

// Stores returns each registered primary store once, in registration order.
// Cascade-only members appear under their own name as well, so the list is
// free of duplicates.
func (h *CacheAdminHandlers) Stores() []cache.Flusher {
	stores := make([]cache.Flusher, 0, len(h.order))
	for _, name := range h.order {
		stores = append(stores, h.groups[name][0])
	}
	return stores
}

// StoreStatus describes one store in the cache status report.
type StoreStatus struct {
	Name       string `json:"name"`
	Entries    int    `json:"entries"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// CacheStatusResponse is the payload of the cache status endpoint.
type CacheStatusResponse struct {
	Stores       []StoreStatus `json:"stores"`
	TotalEntries int           `json:"total_entries"`
}

// HandleCacheStatus handles GET /api/admin/cache/status
func (h *CacheAdminHandlers) HandleCacheStatus(w http.ResponseWriter, r *http.Request) {
	stores := make([]StoreStatus, 0, len(h.order))
	total := 0

	for _, name := range h.order {
		primary := h.groups[name][0]
		entries := primary.Len()
		total += entries
		stores = append(stores, StoreStatus{
			Name:       name,
			Entries:    entries,
			TTLSeconds: int(primary.TTL().Seconds()),
		})
	}

	api.WriteData(w, h.log, CacheStatusResponse{Stores: stores, TotalEntries: total}, false, false)
}

// HandleClearStore handles POST /api/admin/cache/{store}/clear
//
// With a key query parameter only that entry is removed, from the named store
// and every companion in its group. Without one the whole group is emptied.
// The key is passed to the stores verbatim; clearing an absent key is a no-op
// and still acknowledged with success.
func (h *CacheAdminHandlers) HandleClearStore(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "store")
	group, ok := h.groups[name]
	if !ok {
		api.WriteNotFound(w, h.log, "unknown cache store: "+name)
		return
	}

	key := r.URL.Query().Get("key")

	removed := 0
	for _, store := range group {
		if key == "" {
			removed += store.Clear()
			continue
		}
		before := store.Len()
		store.Delete(key)
		removed += before - store.Len()
	}

	var cascaded []string
	for _, store := range group[1:] {
		cascaded = append(cascaded, store.Name())
	}

	h.log.Info().
		Str("store", name).
		Str("key", key).
		Int("removed", removed).
		Strs("cascaded", cascaded).
		Msg("Cache cleared")

	if h.events != nil {
		h.events.EmitTyped(events.CacheCleared, "cache_admin", &events.CacheClearedData{
			Store:    name,
			Key:      key,
			Removed:  removed,
			Cascaded: cascaded,
		})
	}

	payload := map[string]interface{}{
		"store":   name,
		"cleared": removed,
	}
	if key != "" {
		payload["key"] = key
	}
	if len(cascaded) > 0 {
		payload["cascaded"] = cascaded
	}

	api.WriteData(w, h.log, payload, false, false)
}
