// Package handlers provides HTTP handlers for instrument lookups.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantfold/stocktrader/internal/modules/market"
)

// Handler handles market HTTP requests
type Handler struct {
	catalog *market.Catalog
	log     zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(catalog *market.Catalog, log zerolog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleListStocks handles GET /api/stocks
func (h *Handler) HandleListStocks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stocks": h.catalog.All(),
	})
}

// HandleSearch handles GET /api/stocks/search?symbol=AAPL
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Missing symbol parameter")
		return
	}

	inst := h.catalog.Find(symbol)
	if inst == nil {
		h.writeError(w, http.StatusNotFound, "Unknown symbol")
		return
	}

	h.writeJSON(w, http.StatusOK, inst)
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
