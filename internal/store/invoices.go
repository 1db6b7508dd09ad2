package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/welwishers/weldshop/internal/model"
	"github.com/welwishers/weldshop/internal/validate"
)

type newInvoiceParams struct {
	CustomerName string          `json:"customer_name" validate:"required"`
	TotalBill    decimal.Decimal `json:"total_bill" validate:"gte=0"`
}

type newStructuredInvoiceParams struct {
	CustomerName string              `json:"customer_name" validate:"required"`
	Lines        []model.InvoiceLine `json:"lines" validate:"min=1"`
	TotalBill    decimal.Decimal     `json:"total_bill" validate:"gte=0"`
}

// AddInvoice stores an invoice whose items are given as a free-text summary.
func AddInvoice(ctx context.Context, db *sql.DB, customerName, itemsSummary string, totalBill decimal.Decimal) (int64, error) {
	p := newInvoiceParams{CustomerName: strings.TrimSpace(customerName), TotalBill: totalBill}
	if err := validate.Struct(&p); err != nil {
		return 0, err
	}
	return insertInvoice(ctx, db, p.CustomerName, itemsSummary, p.TotalBill)
}

// CreateInvoice stores an invoice with its lines serialized as a JSON array.
// The total must equal the sum of the line totals.
func CreateInvoice(ctx context.Context, db *sql.DB, customerName string, lines []model.InvoiceLine, totalBill decimal.Decimal) (int64, error) {
	p := newStructuredInvoiceParams{
		CustomerName: strings.TrimSpace(customerName),
		Lines:        lines,
		TotalBill:    totalBill,
	}
	if err := validate.Struct(&p); err != nil {
		return 0, err
	}

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total)
	}
	if !sum.Round(2).Equal(totalBill.Round(2)) {
		return 0, model.NewValidationError("total_bill",
			fmt.Sprintf("Must equal the sum of line totals (%s)", sum.StringFixed(2)))
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return 0, fmt.Errorf("encoding invoice lines: %w", err)
	}
	return insertInvoice(ctx, db, p.CustomerName, string(data), p.TotalBill)
}

func insertInvoice(ctx context.Context, db *sql.DB, customerName, items string, totalBill decimal.Decimal) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO invoices (customer_name, items, total_bill) VALUES (?, ?, ?)`,
		customerName, items, totalBill.InexactFloat64(),
	)
	if err != nil {
		return 0, fmt.Errorf("adding invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting invoice id: %w", err)
	}
	return id, nil
}

// ListInvoices returns every invoice in insertion (id) order.
func ListInvoices(ctx context.Context, db *sql.DB) ([]model.Invoice, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, customer_name, items, total_bill FROM invoices ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// GetInvoice returns a single invoice.
func GetInvoice(ctx context.Context, db *sql.DB, id int64) (*model.Invoice, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, customer_name, items, total_bill FROM invoices WHERE id = ?`, id,
	)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanInvoice(row rowScanner) (model.Invoice, error) {
	var (
		inv      model.Invoice
		customer sql.NullString
		items    sql.NullString
		total    decimal.NullDecimal
	)
	if err := row.Scan(&inv.ID, &customer, &items, &total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inv, err
		}
		return inv, fmt.Errorf("scanning invoice: %w", err)
	}
	inv.CustomerName = customer.String
	inv.TotalBill = total.Decimal
	inv.Items, inv.Lines = decodeItems(items.String)
	return inv, nil
}

// decodeItems returns the summary for an items column. Structured rows hold a
// JSON line array; anything else is a legacy summary and is returned as is.
func decodeItems(raw string) (string, []model.InvoiceLine) {
	if !strings.HasPrefix(strings.TrimSpace(raw), "[") {
		return raw, nil
	}
	var lines []model.InvoiceLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return raw, nil
	}
	return model.Summarize(lines), lines
}
