// Package handlers provides HTTP handlers for chart and quote endpoints.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/modules/quotes"
)

// Handler provides HTTP handlers for quote endpoints
type Handler struct {
	service *quotes.Service
	log     zerolog.Logger
}

// NewHandler creates a new quotes handler
func NewHandler(service *quotes.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "quotes").Logger(),
	}
}

// HandleGetChart handles GET /api/quotes/chart
func (h *Handler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		api.WriteValidationError(w, h.log, "symbol parameter is required")
		return
	}

	chartRange := r.URL.Query().Get("range")
	if chartRange == "" {
		chartRange = "1mo"
	}

	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "1d"
	}

	smaPeriod := 0
	if raw := r.URL.Query().Get("sma"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.WriteValidationError(w, h.log, "sma parameter must be a positive integer")
			return
		}
		smaPeriod = parsed
	}

	result, err := h.service.GetChart(r.Context(), symbol, chartRange, interval, smaPeriod)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get chart")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}

// HandleGetPreviousClose handles GET /api/quotes/previous-close
func (h *Handler) HandleGetPreviousClose(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		api.WriteValidationError(w, h.log, "symbol parameter is required")
		return
	}

	result, err := h.service.GetPreviousClose(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get previous close")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}
