// Package ledger provides position and transaction bookkeeping for the
// simulated portfolio.
package ledger

import (
	"errors"
	"time"
)

// Side represents the direction of a transaction
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Guard errors returned by Buy and Sell.
var (
	ErrUnknownSymbol        = errors.New("unknown symbol")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// Position represents the user's current holding in one instrument
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     int64   `json:"quantity"`
	AvgPrice     float64 `json:"avgPrice"`
	CurrentPrice float64 `json:"currentPrice"`
}

// MarketValue returns quantity times the last observed price
func (p Position) MarketValue() float64 {
	return float64(p.Quantity) * p.CurrentPrice
}

// CostBasis returns quantity times the average acquisition price
func (p Position) CostBasis() float64 {
	return float64(p.Quantity) * p.AvgPrice
}

// GainLoss returns the unrealized gain or loss for the position
func (p Position) GainLoss() float64 {
	return p.MarketValue() - p.CostBasis()
}

// GainLossPercent returns the unrealized gain/loss relative to cost.
// Returns 0 when the average price is 0 to avoid division by zero.
func (p Position) GainLossPercent() float64 {
	if p.AvgPrice == 0 {
		return 0
	}
	return (p.CurrentPrice - p.AvgPrice) / p.AvgPrice * 100
}

// Transaction represents one executed buy or sell.
// Records are append-only: created on every completed trade, never mutated.
type Transaction struct {
	ID        int64     `json:"id"`
	OrderID   string    `json:"orderId"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"type"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary holds portfolio-level derived values
type Summary struct {
	TotalValue      float64 `json:"totalValue"`
	TotalCost       float64 `json:"totalCost"`
	TotalGainLoss   float64 `json:"totalGainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
	PositionCount   int     `json:"positionCount"`
}

// ActivityReport aggregates the transaction history for the reports screen
type ActivityReport struct {
	TotalVolume float64 `json:"totalVolume"`
	TradeCount  int     `json:"tradeCount"`
	BuyCount    int     `json:"buyCount"`
	SellCount   int     `json:"sellCount"`
}
