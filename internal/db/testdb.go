package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns an in-memory store with both tables created. It is closed
// when the test ends.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	database, err := Setup(":memory:")
	if err != nil {
		t.Fatalf("setting up test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}
