package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all fx routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fx", func(r chi.Router) {
		r.Get("/rates", h.HandleGetRates)   // Full rate table for a base currency
		r.Get("/pair", h.HandleGetPairRate) // Single conversion rate
	})
}
