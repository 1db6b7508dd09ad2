package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/welwishers/weldshop/internal/model"
	"github.com/welwishers/weldshop/internal/validate"
)

type newItemParams struct {
	Item     string          `json:"item" validate:"required"`
	Brand    string          `json:"brand" validate:"required"`
	Quantity int             `json:"quantity" validate:"gte=1"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
}

type updateItemParams struct {
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
}

// AddItem inserts a new inventory row and returns its id.
func AddItem(ctx context.Context, db *sql.DB, item, brand string, quantity int, price decimal.Decimal) (int64, error) {
	p := newItemParams{
		Item:     strings.TrimSpace(item),
		Brand:    strings.TrimSpace(brand),
		Quantity: quantity,
		Price:    price,
	}
	if err := validate.Struct(&p); err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO inventory (item, brand, quantity, price) VALUES (?, ?, ?, ?)`,
		p.Item, p.Brand, p.Quantity, p.Price.InexactFloat64(),
	)
	if err != nil {
		return 0, fmt.Errorf("adding item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}
	return id, nil
}

// ListInventory returns every inventory row in insertion (id) order.
func ListInventory(ctx context.Context, db *sql.DB) ([]model.InventoryItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item, brand, quantity, price FROM inventory ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem returns a single inventory row.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.InventoryItem, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, item, brand, quantity, price FROM inventory WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("inventory item %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem overwrites quantity and price. Item name and brand are left alone.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, quantity int, price decimal.Decimal) error {
	p := updateItemParams{Quantity: quantity, Price: price}
	if err := validate.Struct(&p); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE inventory SET quantity = ?, price = ? WHERE id = ?`,
		p.Quantity, p.Price.InexactFloat64(), id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("inventory item %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// DeleteItem removes an inventory row. Deleting an unknown id is not an error.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// DecrementStock subtracts each line's quantity from its inventory row in one
// transaction. It is only called when the decrement-on-invoice policy is on.
func DecrementStock(ctx context.Context, db *sql.DB, lines []model.InvoiceLine) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, l := range lines {
		var available int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(quantity, 0) FROM inventory WHERE id = ?`, l.ItemID,
		).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			available = 0
		} else if err != nil {
			return fmt.Errorf("checking stock: %w", err)
		}

		if l.Quantity > available {
			return &model.QuantityOutOfRangeError{ItemID: l.ItemID, Requested: l.Quantity, Available: available}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE inventory SET quantity = quantity - ? WHERE id = ?`,
			l.Quantity, l.ItemID,
		); err != nil {
			return fmt.Errorf("decrementing stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing stock decrement: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads one inventory row. Columns are nullable in the schema, so
// NULLs come back as zero values.
func scanItem(row rowScanner) (model.InventoryItem, error) {
	var (
		item     model.InventoryItem
		name     sql.NullString
		brand    sql.NullString
		quantity sql.NullInt64
		price    decimal.NullDecimal
	)
	if err := row.Scan(&item.ID, &name, &brand, &quantity, &price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item, err
		}
		return item, fmt.Errorf("scanning inventory item: %w", err)
	}
	item.Item = name.String
	item.Brand = brand.String
	item.Quantity = int(quantity.Int64)
	item.Price = price.Decimal
	return item, nil
}
