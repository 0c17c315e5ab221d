package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all quote routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/quotes", func(r chi.Router) {
		r.Get("/chart", h.HandleGetChart)                  // OHLCV chart with optional SMA overlay
		r.Get("/previous-close", h.HandleGetPreviousClose) // Prior session close
	})
}
