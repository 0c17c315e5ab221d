// Package handlers provides HTTP handlers for symbol search.
package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/modules/search"
)

// Handler provides HTTP handlers for search endpoints
type Handler struct {
	service *search.Service
	log     zerolog.Logger
}

// NewHandler creates a new search handler
func NewHandler(service *search.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "search").Logger(),
	}
}

// HandleSearch handles GET /api/search
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		api.WriteValidationError(w, h.log, "q parameter is required")
		return
	}

	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("Failed to search symbols")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}
