package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS inventory (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    item     TEXT,
    brand    TEXT,
    quantity INTEGER,
    price    REAL
);

CREATE TABLE IF NOT EXISTS invoices (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_name TEXT,
    items         TEXT,
    total_bill    REAL
);
`

// EnsureSchema creates both tables if they don't already exist. It is safe to
// call on every start.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
