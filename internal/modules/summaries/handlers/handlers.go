// Package handlers provides HTTP handlers for AI company briefs.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/modules/summaries"
)

// Handler provides HTTP handlers for summary endpoints
type Handler struct {
	service *summaries.Service
	log     zerolog.Logger
}

// NewHandler creates a new summaries handler
func NewHandler(service *summaries.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "summaries").Logger(),
	}
}

// HandleGetSummary handles GET /api/summaries
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		api.WriteValidationError(w, h.log, "symbol parameter is required")
		return
	}

	result, err := h.service.GetSummary(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get summary")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}
