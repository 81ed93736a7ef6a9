// Package handlers provides HTTP handlers for portfolio and trading operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/quantfold/stocktrader/internal/modules/ledger"
)

// Handler handles portfolio and trade HTTP requests
type Handler struct {
	service *ledger.Service
	log     zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(service *ledger.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "ledger").Logger(),
	}
}

// TradeRequest represents a buy or sell order
type TradeRequest struct {
	Symbol   string  `json:"symbol"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// PositionView is a position with its derived values for the portfolio screen
type PositionView struct {
	ledger.Position
	MarketValue     float64 `json:"marketValue"`
	GainLoss        float64 `json:"gainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
}

// HandleGetPortfolio handles GET /api/portfolio
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	positions := h.service.Positions()
	views := make([]PositionView, 0, len(positions))
	for _, pos := range positions {
		views = append(views, PositionView{
			Position:        pos,
			MarketValue:     pos.MarketValue(),
			GainLoss:        pos.GainLoss(),
			GainLossPercent: pos.GainLossPercent(),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions": views,
	})
}

// HandleGetSummary handles GET /api/portfolio/summary
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Summary())
}

// HandleBuy handles POST /api/trades/buy
func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	h.handleTrade(w, r, h.service.Buy)
}

// HandleSell handles POST /api/trades/sell
func (h *Handler) HandleSell(w http.ResponseWriter, r *http.Request) {
	h.handleTrade(w, r, h.service.Sell)
}

func (h *Handler) handleTrade(w http.ResponseWriter, r *http.Request, execute func(string, int64, float64) (ledger.Transaction, error)) {
	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode trade request")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := execute(req.Symbol, req.Quantity, req.Price)
	if err != nil {
		h.writeTradeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, tx)
}

// HandleGetTrades handles GET /api/trades?limit=N
func (h *Handler) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": h.service.History(limit),
	})
}

// HandleGetReport handles GET /api/trades/report
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Report())
}

func (h *Handler) writeTradeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrUnknownSymbol):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidQuantity), errors.Is(err, ledger.ErrInvalidPrice):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientHoldings):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Msg("Trade failed")
		h.writeError(w, http.StatusInternalServerError, "Trade failed")
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
