// Package settings manages user-adjustable trading and notification
// preferences, persisted to the local record store.
package settings

import (
	"fmt"
)

// Risk levels accepted by TradingSettings.
const (
	RiskConservative = "conservative"
	RiskModerate     = "moderate"
	RiskAggressive   = "aggressive"
)

// Notification frequencies accepted by NotificationSettings.
const (
	FrequencyImmediate = "immediate"
	FrequencyHourly    = "hourly"
	FrequencyDaily     = "daily"
)

// ValidationError describes a rejected settings field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// TradingSettings controls order placement behavior.
type TradingSettings struct {
	AutoTradeEnabled     bool    `json:"autoTradeEnabled"`
	StopLossPercentage   float64 `json:"stopLossPercentage"`
	TakeProfitPercentage float64 `json:"takeProfitPercentage"`
	MaxDailyLoss         float64 `json:"maxDailyLoss"`
	RiskLevel            string  `json:"riskLevel"`
	ConfirmTrades        bool    `json:"confirmTrades"`
}

// DefaultTradingSettings returns the settings used before the user has
// saved any.
func DefaultTradingSettings() TradingSettings {
	return TradingSettings{
		AutoTradeEnabled:     false,
		StopLossPercentage:   5,
		TakeProfitPercentage: 10,
		MaxDailyLoss:         1000,
		RiskLevel:            RiskModerate,
		ConfirmTrades:        true,
	}
}

// Validate checks enum fields and numeric ranges.
func (s TradingSettings) Validate() error {
	switch s.RiskLevel {
	case RiskConservative, RiskModerate, RiskAggressive:
	default:
		return &ValidationError{Field: "riskLevel", Message: "must be conservative, moderate or aggressive"}
	}
	if s.StopLossPercentage < 0 {
		return &ValidationError{Field: "stopLossPercentage", Message: "cannot be negative"}
	}
	if s.TakeProfitPercentage < 0 {
		return &ValidationError{Field: "takeProfitPercentage", Message: "cannot be negative"}
	}
	if s.MaxDailyLoss < 0 {
		return &ValidationError{Field: "maxDailyLoss", Message: "cannot be negative"}
	}
	return nil
}

// NotificationSettings controls which alerts the user receives and how.
type NotificationSettings struct {
	EmailEnabled       bool   `json:"emailEnabled"`
	PushEnabled        bool   `json:"pushEnabled"`
	SMSEnabled         bool   `json:"smsEnabled"`
	PriceAlerts        bool   `json:"priceAlerts"`
	TradeConfirmations bool   `json:"tradeConfirmations"`
	MarketNews         bool   `json:"marketNews"`
	PortfolioUpdates   bool   `json:"portfolioUpdates"`
	Frequency          string `json:"frequency"`
}

// DefaultNotificationSettings returns the settings used before the user
// has saved any.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		EmailEnabled:       true,
		PushEnabled:        true,
		SMSEnabled:         false,
		PriceAlerts:        true,
		TradeConfirmations: true,
		MarketNews:         false,
		PortfolioUpdates:   true,
		Frequency:          FrequencyImmediate,
	}
}

// Validate checks the frequency enum.
func (s NotificationSettings) Validate() error {
	switch s.Frequency {
	case FrequencyImmediate, FrequencyHourly, FrequencyDaily:
	default:
		return &ValidationError{Field: "frequency", Message: "must be immediate, hourly or daily"}
	}
	return nil
}
