package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all fundamentals routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fundamentals", func(r chi.Router) {
		r.Get("/earnings", h.HandleGetEarnings)     // Annual and quarterly EPS history
		r.Get("/estimates", h.HandleGetEstimates)   // Forward analyst estimates
		r.Get("/financials", h.HandleGetFinancials) // Income, balance or cash statement
		r.Get("/profile", h.HandleGetProfile)       // Company overview
	})
}
