package settings

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quantfold/stocktrader/internal/store"
)

// Service reads and writes user preferences. Unset or unreadable records
// fall back to the package defaults.
type Service struct {
	mu    sync.Mutex
	store *store.Store
	log   zerolog.Logger
}

// NewService creates a settings service backed by the record store.
func NewService(st *store.Store, log zerolog.Logger) *Service {
	return &Service{
		store: st,
		log:   log.With().Str("component", "settings").Logger(),
	}
}

// Trading returns the persisted trading settings, or defaults when unset.
func (s *Service) Trading() TradingSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := DefaultTradingSettings()
	found, err := s.store.Load(store.KeyTradingSettings, &settings)
	if err != nil {
		s.log.Warn().Err(err).Msg("Stored trading settings are unreadable, using defaults")
		return DefaultTradingSettings()
	}
	if !found {
		return DefaultTradingSettings()
	}
	return settings
}

// UpdateTrading validates and persists new trading settings.
func (s *Service) UpdateTrading(settings TradingSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Put(store.KeyTradingSettings, settings); err != nil {
		return fmt.Errorf("persisting trading settings: %w", err)
	}

	s.log.Info().Str("riskLevel", settings.RiskLevel).Msg("Trading settings updated")
	return nil
}

// Notifications returns the persisted notification settings, or defaults
// when unset.
func (s *Service) Notifications() NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := DefaultNotificationSettings()
	found, err := s.store.Load(store.KeyNotificationSettings, &settings)
	if err != nil {
		s.log.Warn().Err(err).Msg("Stored notification settings are unreadable, using defaults")
		return DefaultNotificationSettings()
	}
	if !found {
		return DefaultNotificationSettings()
	}
	return settings
}

// UpdateNotifications validates and persists new notification settings.
func (s *Service) UpdateNotifications(settings NotificationSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Put(store.KeyNotificationSettings, settings); err != nil {
		return fmt.Errorf("persisting notification settings: %w", err)
	}

	s.log.Info().Str("frequency", settings.Frequency).Msg("Notification settings updated")
	return nil
}
