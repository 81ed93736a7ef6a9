// Package store provides the device-local record store.
// Each record is a JSON blob stored under a well-known key, mirroring the
// "read full record, mutate, write full record" persistence model.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantfold/stocktrader/internal/database"
)

// Well-known record keys.
const (
	KeyUser                 = "user"
	KeyPortfolio            = "portfolio"
	KeyTransactions         = "transactions"
	KeyTradingSettings      = "tradingSettings"
	KeyNotificationSettings = "notificationSettings"
)

// AllKeys lists every record key the store will accept.
var AllKeys = []string{
	KeyUser,
	KeyPortfolio,
	KeyTransactions,
	KeyTradingSettings,
	KeyNotificationSettings,
}

// validKeys is a set for O(1) key validation.
var validKeys = func() map[string]bool {
	m := make(map[string]bool, len(AllKeys))
	for _, k := range AllKeys {
		m[k] = true
	}
	return m
}()

// Store persists JSON records keyed by name.
type Store struct {
	db *sql.DB
}

// New creates a record store over the given database connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// validateKey ensures the key is in our allowed list.
func validateKey(key string) error {
	if !validKeys[key] {
		return fmt.Errorf("invalid record key: %s", key)
	}
	return nil
}

// Put serializes v and upserts it under key.
func (s *Store) Put(key string, v interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", key, err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO records (key, data, updated_at) VALUES (?, ?, ?)",
		key, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store record %s: %w", key, err)
	}

	return nil
}

// Record pairs a key with the value to persist under it.
type Record struct {
	Key   string
	Value interface{}
}

// PutMany upserts several records in one transaction. Either every record
// is written or none is; callers whose state spans multiple keys use this
// so a partial write can never reach disk.
func (s *Store) PutMany(records ...Record) error {
	for _, rec := range records {
		if err := validateKey(rec.Key); err != nil {
			return err
		}
	}

	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		now := time.Now().Unix()
		for _, rec := range records {
			data, err := json.Marshal(rec.Value)
			if err != nil {
				return fmt.Errorf("failed to marshal record %s: %w", rec.Key, err)
			}

			_, err = tx.Exec(
				"INSERT OR REPLACE INTO records (key, data, updated_at) VALUES (?, ?, ?)",
				rec.Key, string(data), now,
			)
			if err != nil {
				return fmt.Errorf("failed to store record %s: %w", rec.Key, err)
			}
		}
		return nil
	})
}

// Get returns the raw record stored under key.
// Returns nil, nil if the key doesn't exist.
func (s *Store) Get(key string) (json.RawMessage, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var data string
	err := s.db.QueryRow("SELECT data FROM records WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}

	return json.RawMessage(data), nil
}

// Load reads the record under key into dest.
// Returns false, nil when the record is absent. A record that exists but
// cannot be decoded is reported as an error so callers can decide to fall
// back to empty state.
func (s *Store) Load(key string, dest interface{}) (bool, error) {
	raw, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode record %s: %w", key, err)
	}

	return true, nil
}

// Delete removes the record under key. Idempotent.
func (s *Store) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := s.db.Exec("DELETE FROM records WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}

	return nil
}

// Count returns the number of records currently stored.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}
