package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all crypto routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/crypto", func(r chi.Router) {
		r.Get("/coin", h.HandleGetCoin) // Market data for one coin id
	})
}
