package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Invoice is a persisted bill. Items is always the human-readable summary;
// Lines is populated only for invoices stored with structured lines.
type Invoice struct {
	ID           int64           `json:"id"`
	CustomerName string          `json:"customer_name"`
	Items        string          `json:"items"`
	Lines        []InvoiceLine   `json:"lines,omitempty"`
	TotalBill    decimal.Decimal `json:"total_bill"`
}

// InvoiceLine is a selected inventory row with a requested quantity. It only
// exists while an invoice is being built.
type InvoiceLine struct {
	ItemID   int64           `json:"item_id"`
	ItemName string          `json:"item_name"`
	Brand    string          `json:"brand"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Summary formats the line as "<name> (<brand>) - <qty> pcs".
func (l InvoiceLine) Summary() string {
	return fmt.Sprintf("%s (%s) - %d pcs", l.ItemName, l.Brand, l.Quantity)
}

// Summarize joins the line summaries with ", ".
func Summarize(lines []InvoiceLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Summary()
	}
	return strings.Join(parts, ", ")
}
