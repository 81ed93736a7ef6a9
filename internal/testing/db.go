// Package testing provides test helpers shared across the project's packages.
package testing

import (
	"os"
	"testing"

	"github.com/quantfold/stocktrader/internal/database"
	"github.com/quantfold/stocktrader/internal/store"
)

// NewTestDB creates a temporary file-backed store database with the schema
// applied. Returns the database and a cleanup function that closes the
// connection and removes the file. The cleanup function is safe to call
// multiple times.
func NewTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_store_*.db")
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path: tmpPath,
		Name: "store",
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database: %v", err)
		}
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			t.Logf("Warning: Failed to remove temporary database file %s: %v", tmpPath, err)
		}
	}
}

// NewTestStore creates a record store over a temporary database.
// Returns the store and a cleanup function.
func NewTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	db, cleanup := NewTestDB(t)
	return store.New(db.Conn()), cleanup
}

// SeedRecord writes a raw record directly, bypassing the store's typed API.
// Useful for corrupt-state tests.
func SeedRecord(t *testing.T, db *database.DB, key, data string) {
	t.Helper()

	_, err := db.Exec(
		"INSERT OR REPLACE INTO records (key, data, updated_at) VALUES (?, ?, 0)",
		key, data,
	)
	if err != nil {
		t.Fatalf("Failed to seed record %s: %v", key, err)
	}
}
