// Package handlers provides HTTP handlers for company fundamentals.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/api"
	"github.com/mkelaidis/spyglass/internal/modules/fundamentals"
)

// Handler provides HTTP handlers for fundamentals endpoints
type Handler struct {
	service *fundamentals.Service
	log     zerolog.Logger
}

// NewHandler creates a new fundamentals handler
func NewHandler(service *fundamentals.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "fundamentals").Logger(),
	}
}

// HandleGetEarnings handles GET /api/fundamentals/earnings
func (h *Handler) HandleGetEarnings(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		api.WriteValidationError(w, h.log, "symbol parameter is required")
		return
	}

	result, err := h.service.GetEarnings(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get earnings")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}

// HandleGetEstimates handles GET /api/fundamentals/estimates
func (h *Handler) HandleGetEstimates(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		api.WriteValidationError(w, h.log, "symbol parameter is required")
		return
	}

	result, err := h.service.GetEstimates(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get estimates")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}

// HandleGetFinancials handles GET /api/fundamentals/financials
func (h *Handler) HandleGetFinancials(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		api.WriteValidationError(w, h.log, "symbol parameter is required")
		return
	}

	statement := r.URL.Query().Get("statement")
	if statement == "" {
		statement = "income"
	}
	switch statement {
	case "income", "balance", "cash":
	default:
		api.WriteValidationError(w, h.log, "statement parameter must be one of income, balance, cash")
		return
	}

	result, err := h.service.GetFinancials(r.Context(), symbol, statement)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Str("statement", statement).Msg("Failed to get financials")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}

// HandleGetProfile handles GET /api/fundamentals/profile
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		api.WriteValidationError(w, h.log, "symbol parameter is required")
		return
	}

	result, err := h.service.GetProfile(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get profile")
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, result.Value, result.Cached, result.Stale)
}
