// Package handlers provides HTTP handlers for authentication and profile
// management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantfold/stocktrader/internal/modules/session"
)

// Handler handles auth HTTP requests
type Handler struct {
	manager *session.Manager
	log     zerolog.Logger
}

// NewHandler creates a new session handler
func NewHandler(manager *session.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		log:     log.With().Str("handler", "session").Logger(),
	}
}

// HandleLogin handles POST /api/auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode login request")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.manager.Login(creds)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

// HandleSignup handles POST /api/auth/signup
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var input session.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode signup request")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.manager.Signup(input)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, profile)
}

// HandleGetSession handles GET /api/auth/session
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	profile := h.manager.Current()
	if profile == nil {
		h.writeError(w, http.StatusUnauthorized, "Not logged in")
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile handles PUT /api/auth/profile
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update session.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode profile update")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.manager.UpdateProfile(update)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

// HandleLogout handles POST /api/auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Logout(); err != nil {
		h.log.Error().Err(err).Msg("Logout failed")
		h.writeError(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) writeSessionError(w http.ResponseWriter, err error) {
	var vErr *session.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, session.ErrNotAuthenticated):
		h.writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.log.Error().Err(err).Msg("Session operation failed")
		h.writeError(w, http.StatusInternalServerError, "Internal error")
	}
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
