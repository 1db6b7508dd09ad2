// Package invoicing runs the invoice workflow shared by the HTML pages and
// the JSON API: snapshot the inventory, price the selection, store the
// invoice and announce it.
package invoicing

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/welwishers/weldshop/internal/billing"
	"github.com/welwishers/weldshop/internal/events"
	"github.com/welwishers/weldshop/internal/metrics"
	"github.com/welwishers/weldshop/internal/model"
	"github.com/welwishers/weldshop/internal/store"
)

// Service holds the dependencies of the invoice workflow.
type Service struct {
	DB     *sql.DB
	Events events.InvoicePublisher
	// DecrementOnInvoice subtracts invoiced quantities from stock.
	DecrementOnInvoice bool
}

// New returns a Service. A nil publisher discards events.
func New(db *sql.DB, pub events.InvoicePublisher, decrement bool) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{DB: db, Events: pub, DecrementOnInvoice: decrement}
}

// Quote prices requested quantities against the current inventory.
func (s *Service) Quote(ctx context.Context, requested map[int64]int) (billing.Selection, error) {
	snapshot, err := store.ListInventory(ctx, s.DB)
	if err != nil {
		return billing.Selection{}, err
	}
	return billing.ComputeSelection(snapshot, requested)
}

// Create prices the selection and stores it as an invoice for customerName.
// An empty selection or customer name is rejected before anything is
// written. Publishing failures are logged and do not fail the call.
func (s *Service) Create(ctx context.Context, customerName string, requested map[int64]int) (*model.Invoice, error) {
	sel, err := s.Quote(ctx, requested)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(customerName)
	fields := map[string]string{}
	if name == "" {
		fields["customer_name"] = "This field is required"
	}
	if sel.Empty() {
		fields["lines"] = "Select at least one item"
	}
	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}

	if s.DecrementOnInvoice {
		if err := store.DecrementStock(ctx, s.DB, sel.Lines); err != nil {
			return nil, err
		}
		metrics.InventoryChanges.WithLabelValues("decrement").Inc()
	}

	id, err := store.CreateInvoice(ctx, s.DB, name, sel.Lines, sel.Total)
	if err != nil {
		return nil, fmt.Errorf("storing invoice: %w", err)
	}

	inv := &model.Invoice{
		ID:           id,
		CustomerName: name,
		Items:        model.Summarize(sel.Lines),
		Lines:        sel.Lines,
		TotalBill:    sel.Total,
	}

	metrics.InvoicesCreated.Inc()
	metrics.InvoiceAmount.Add(sel.Total.InexactFloat64())
	slog.Info("invoice created", "id", id, "customer", name, "lines", len(sel.Lines), "total", sel.Total.StringFixed(2))

	if err := s.Events.PublishInvoice(ctx, *inv); err != nil {
		slog.Warn("failed to publish invoice event", "id", id, "error", err)
	}
	return inv, nil
}
