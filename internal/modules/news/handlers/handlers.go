// Package handlers provides HTTP handlers for company news.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/modules/news"
)

// Handler provides HTTP handlers for news endpoints
type Handler struct {
	service *news.Service
	log     zerolog.Logger
}

// NewHandler creates a new news handler
func NewHandler(service *news.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "news").Logger(),
	}
}

// HandleGetNews handles GET /api/news
func (h *Handler) HandleGetNews(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		api.WriteValidationError(w, h.log, "symbol parameter is required")
		return
	}

	limit := news.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.WriteValidationError(w, h.log, "limit parameter must be a positive integer")
			return
		}
		limit = parsed
	}

	result, err := h.service.GetNews(r.Context(), symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get news")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}
