package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/trading", h.HandleGetTrading)
		r.Put("/trading", h.HandleUpdateTrading)
		r.Get("/notifications", h.HandleGetNotifications)
		r.Put("/notifications", h.HandleUpdateNotifications)
	})
}
