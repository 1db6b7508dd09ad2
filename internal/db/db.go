package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/welwishers/weldshop/internal/model"
)

// Open opens a SQLite database connection and configures pragmas.
// Connection failures are reported as model.ErrStorageUnavailable.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", model.ErrStorageUnavailable, err)
	}

	// A single connection keeps the pragmas below in effect for every query
	// and makes ":memory:" databases behave as one store.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: setting pragma %q: %w", model.ErrStorageUnavailable, p, err)
		}
	}

	return db, nil
}

// Setup creates the parent directory of path if needed, opens the database
// and ensures the schema. Every failure is reported as
// model.ErrStorageUnavailable.
func Setup(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: creating database directory: %w", model.ErrStorageUnavailable, err)
		}
	}

	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
	}
	return db, nil
}
