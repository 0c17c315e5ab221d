// Package handlers provides HTTP handlers for broker account data.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/modules/account"
)

// Handler provides HTTP handlers for account endpoints
type Handler struct {
	service *account.Service
	log     zerolog.Logger
}

// NewHandler creates a new account handler
func NewHandler(service *account.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "account").Logger(),
	}
}

// HandleGetBalances handles GET /api/account/balances
func (h *Handler) HandleGetBalances(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetBalances(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get balances")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}
