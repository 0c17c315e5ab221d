// Package handlers provides HTTP handlers for FX rates.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/modules/fx"
	"github.com/mkelaidis/spyglass/internal/utils"
)

// Handler provides HTTP handlers for fx endpoints
type Handler struct {
	service *fx.Service
	log     zerolog.Logger
}

// NewHandler creates a new fx handler
func NewHandler(service *fx.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "fx").Logger(),
	}
}

// HandleGetRates handles GET /api/fx/rates
func (h *Handler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		api.WriteValidationError(w, h.log, "base parameter is required")
		return
	}

	symbols := utils.ParseCSV(r.URL.Query().Get("symbols"))

	result, err := h.service.GetRates(r.Context(), base, symbols)
	if err != nil {
		h.log.Error().Err(err).Str("base", base).Msg("Failed to get rates")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}

// HandleGetPairRate handles GET /api/fx/pair
func (h *Handler) HandleGetPairRate(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	if from == "" {
		api.WriteValidationError(w, h.log, "from parameter is required")
		return
	}
	to := r.URL.Query().Get("to")
	if to == "" {
		api.WriteValidationError(w, h.log, "to parameter is required")
		return
	}

	result, err := h.service.GetPairRate(r.Context(), from, to)
	if err != nil {
		h.log.Error().Err(err).Str("from", from).Str("to", to).Msg("Failed to get pair rate")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}
