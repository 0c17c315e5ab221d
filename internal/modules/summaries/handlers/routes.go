package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all summary routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/summaries", h.HandleGetSummary) // AI-written company brief
}
