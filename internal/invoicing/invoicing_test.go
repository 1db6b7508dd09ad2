package invoicing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/welwishers/weldshop/internal/db"
	"github.com/welwishers/weldshop/internal/model"
	"github.com/welwishers/weldshop/internal/store"
)

type recordingPublisher struct {
	published []model.Invoice
	err       error
}

func (p *recordingPublisher) PublishInvoice(_ context.Context, inv model.Invoice) error {
	p.published = append(p.published, inv)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func seed(t *testing.T, svc *Service) (rod, helmet int64) {
	t.Helper()
	ctx := context.Background()
	rod, err := store.AddItem(ctx, svc.DB, "Welding Rod", "BrandA", 10, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	helmet, err = store.AddItem(ctx, svc.DB, "Helmet", "BrandB", 5, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	return rod, helmet
}

func TestCreate(t *testing.T) {
	pub := &recordingPublisher{}
	svc := New(db.NewTestDB(t), pub, false)
	rod, helmet := seed(t, svc)
	ctx := context.Background()

	inv, err := svc.Create(ctx, "  Alice ", map[int64]int{rod: 2, helmet: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.CustomerName != "Alice" {
		t.Errorf("expected trimmed name, got %q", inv.CustomerName)
	}
	if !inv.TotalBill.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected total 300, got %s", inv.TotalBill)
	}
	if inv.Items != "Welding Rod (BrandA) - 2 pcs, Helmet (BrandB) - 1 pcs" {
		t.Errorf("unexpected summary %q", inv.Items)
	}

	stored, err := store.GetInvoice(ctx, svc.DB, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if stored.Items != inv.Items || len(stored.Lines) != 2 {
		t.Errorf("stored invoice differs: %+v", stored)
	}

	if len(pub.published) != 1 || pub.published[0].ID != inv.ID {
		t.Errorf("expected one published event for %d, got %+v", inv.ID, pub.published)
	}

	// Stock is untouched by default.
	item, _ := store.GetItem(ctx, svc.DB, rod)
	if item.Quantity != 10 {
		t.Errorf("expected quantity 10, got %d", item.Quantity)
	}
}

func TestCreateDecrementsWhenEnabled(t *testing.T) {
	svc := New(db.NewTestDB(t), nil, true)
	rod, _ := seed(t, svc)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Bob", map[int64]int{rod: 4}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	item, _ := store.GetItem(ctx, svc.DB, rod)
	if item.Quantity != 6 {
		t.Errorf("expected quantity 6, got %d", item.Quantity)
	}
}

func TestCreateRejects(t *testing.T) {
	svc := New(db.NewTestDB(t), nil, false)
	rod, _ := seed(t, svc)
	ctx := context.Background()

	tests := []struct {
		name      string
		customer  string
		requested map[int64]int
		want      error
	}{
		{"empty customer", "", map[int64]int{rod: 1}, model.ErrValidation},
		{"nothing selected", "Alice", map[int64]int{}, model.ErrValidation},
		{"too many", "Alice", map[int64]int{rod: 11}, model.ErrQuantityOutOfRange},
		{"unknown item", "Alice", map[int64]int{999: 1}, model.ErrQuantityOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.customer, tt.requested)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	invoices, _ := store.ListInvoices(ctx, svc.DB)
	if len(invoices) != 0 {
		t.Errorf("expected no invoices persisted, got %d", len(invoices))
	}
}

func TestCreatePublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := New(db.NewTestDB(t), pub, false)
	rod, _ := seed(t, svc)

	if _, err := svc.Create(context.Background(), "Alice", map[int64]int{rod: 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestQuote(t *testing.T) {
	svc := New(db.NewTestDB(t), nil, false)
	rod, helmet := seed(t, svc)

	sel, err := svc.Quote(context.Background(), map[int64]int{rod: 2, helmet: 1})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if len(sel.Lines) != 2 || !sel.Total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("unexpected selection %+v", sel)
	}
}
