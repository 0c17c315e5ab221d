// Package handlers provides HTTP handlers for crypto market data.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/modules/crypto"
)

// Handler provides HTTP handlers for crypto endpoints
type Handler struct {
	service *crypto.Service
	log     zerolog.Logger
}

// NewHandler creates a new crypto handler
func NewHandler(service *crypto.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "crypto").Logger(),
	}
}

// HandleGetCoin handles GET /api/crypto/coin
func (h *Handler) HandleGetCoin(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		api.WriteValidationError(w, h.log, "id parameter is required")
		return
	}

	result, err := h.service.GetCoin(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to get coin data")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}
