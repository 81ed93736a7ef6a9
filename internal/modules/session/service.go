package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantfold/stocktrader/internal/store"
)

// Manager owns the device's active session.
//
// All methods are safe for concurrent use. State changes are persisted to
// the record store before they become visible in memory.
type Manager struct {
	mu    sync.Mutex
	store *store.Store
	log   zerolog.Logger

	profile *Profile
	now     func() time.Time
}

// NewManager creates a session manager and restores any persisted profile.
func NewManager(st *store.Store, log zerolog.Logger) *Manager {
	m := &Manager{
		store: st,
		log:   log.With().Str("component", "session").Logger(),
		now:   time.Now,
	}
	m.restore()
	return m
}

// restore hydrates the profile from the record store. A corrupt record is
// logged and treated as an anonymous session.
func (m *Manager) restore() {
	var profile Profile
	found, err := m.store.Load(store.KeyUser, &profile)
	if err != nil {
		m.log.Warn().Err(err).Msg("Stored profile is unreadable, starting anonymous")
		return
	}
	if found {
		m.profile = &profile
		m.log.Debug().Str("email", profile.Email).Msg("Restored session")
	}
}

// Login starts a session for the given credentials.
//
// There is no credential verification on-device. Any non-empty email and
// password pair opens a session whose display name is the email local part.
func (m *Manager) Login(creds Credentials) (*Profile, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "is required"}
	}
	if creds.Password == "" {
		return nil, &ValidationError{Field: "password", Message: "is required"}
	}

	profile := &Profile{
		ID:    uuid.NewString(),
		Email: email,
		Name:  emailLocalPart(email),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Put(store.KeyUser, profile); err != nil {
		return nil, fmt.Errorf("persisting profile: %w", err)
	}
	m.profile = profile

	m.log.Info().Str("email", email).Msg("Session started")
	return m.snapshot(), nil
}

// Signup registers a new profile and starts a session for it.
func (m *Manager) Signup(input SignupInput) (*Profile, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "is required"}
	}
	if input.Password == "" {
		return nil, &ValidationError{Field: "password", Message: "is required"}
	}

	age, err := validateDateOfBirth(input.DateOfBirth, m.now())
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = emailLocalPart(email)
	}

	profile := &Profile{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          name,
		AadhaarNumber: strings.TrimSpace(input.AadhaarNumber),
		PanNumber:     strings.TrimSpace(input.PanNumber),
		Nationality:   strings.TrimSpace(input.Nationality),
		MobileNumber:  strings.TrimSpace(input.MobileNumber),
		DateOfBirth:   strings.TrimSpace(input.DateOfBirth),
		Age:           age,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Put(store.KeyUser, profile); err != nil {
		return nil, fmt.Errorf("persisting profile: %w", err)
	}
	m.profile = profile

	m.log.Info().Str("email", email).Int("age", age).Msg("Account created")
	return m.snapshot(), nil
}

// UpdateProfile applies a partial edit to the active profile. A changed
// date of birth is re-validated against the minimum age.
func (m *Manager) UpdateProfile(update ProfileUpdate) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return nil, ErrNotAuthenticated
	}

	next := *m.profile
	if update.Name != nil {
		next.Name = strings.TrimSpace(*update.Name)
	}
	if update.AadhaarNumber != nil {
		next.AadhaarNumber = strings.TrimSpace(*update.AadhaarNumber)
	}
	if update.PanNumber != nil {
		next.PanNumber = strings.TrimSpace(*update.PanNumber)
	}
	if update.Nationality != nil {
		next.Nationality = strings.TrimSpace(*update.Nationality)
	}
	if update.MobileNumber != nil {
		next.MobileNumber = strings.TrimSpace(*update.MobileNumber)
	}
	if update.DateOfBirth != nil {
		age, err := validateDateOfBirth(*update.DateOfBirth, m.now())
		if err != nil {
			return nil, err
		}
		next.DateOfBirth = strings.TrimSpace(*update.DateOfBirth)
		next.Age = age
	}

	if err := m.store.Put(store.KeyUser, &next); err != nil {
		return nil, fmt.Errorf("persisting profile: %w", err)
	}
	m.profile = &next

	m.log.Info().Str("email", next.Email).Msg("Profile updated")
	return m.snapshot(), nil
}

// Current returns a copy of the active profile, or nil when anonymous.
func (m *Manager) Current() *Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Logout ends the session and removes the persisted profile. Logging out
// of an anonymous session is a no-op.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return nil
	}

	if err := m.store.Delete(store.KeyUser); err != nil {
		return fmt.Errorf("removing profile: %w", err)
	}

	m.log.Info().Str("email", m.profile.Email).Msg("Session ended")
	m.profile = nil
	return nil
}

func (m *Manager) snapshot() *Profile {
	if m.profile == nil {
		return nil
	}
	copied := *m.profile
	return &copied
}
