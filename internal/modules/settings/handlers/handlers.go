// Package handlers provides HTTP handlers for user preferences.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantfold/stocktrader/internal/modules/settings"
)

// Handler handles settings HTTP requests
type Handler struct {
	service *settings.Service
	log     zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "settings").Logger(),
	}
}

// HandleGetTrading handles GET /api/settings/trading
func (h *Handler) HandleGetTrading(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Trading())
}

// HandleUpdateTrading handles PUT /api/settings/trading
func (h *Handler) HandleUpdateTrading(w http.ResponseWriter, r *http.Request) {
	var req settings.TradingSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode trading settings")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateTrading(req); err != nil {
		h.writeSettingsError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, req)
}

// HandleGetNotifications handles GET /api/settings/notifications
func (h *Handler) HandleGetNotifications(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Notifications())
}

// HandleUpdateNotifications handles PUT /api/settings/notifications
func (h *Handler) HandleUpdateNotifications(w http.ResponseWriter, r *http.Request) {
	var req settings.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode notification settings")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateNotifications(req); err != nil {
		h.writeSettingsError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, req)
}

func (h *Handler) writeSettingsError(w http.ResponseWriter, err error) {
	var vErr *settings.ValidationError
	if errors.As(err, &vErr) {
		h.writeError(w, http.StatusBadRequest, vErr.Error())
		return
	}

	h.log.Error().Err(err).Msg("Settings update failed")
	h.writeError(w, http.StatusInternalServerError, "Settings update failed")
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
