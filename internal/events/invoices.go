package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/welwishers/weldshop/internal/model"
)

// InvoiceCreated is the payload published for every stored invoice. Its keys
// become the columns of the ingestion output.
type InvoiceCreated struct {
	ID           int64       `json:"id"`
	CustomerName string      `json:"customer_name"`
	Items        string      `json:"items"`
	TotalBill    json.Number `json:"total_bill"`
	CreatedAt    time.Time   `json:"created_at"`
}

// InvoicePublisher announces stored invoices.
type InvoicePublisher interface {
	PublishInvoice(ctx context.Context, inv model.Invoice) error
	Close() error
}

// Bus publishes invoice events to a single topic.
type Bus struct {
	pub   message.Publisher
	topic string
	now   func() time.Time
}

// NewBus returns a Bus publishing to topic through pub. Close closes pub.
func NewBus(pub message.Publisher, topic string) *Bus {
	return &Bus{pub: pub, topic: topic, now: time.Now}
}

// PublishInvoice marshals inv as an InvoiceCreated message.
func (b *Bus) PublishInvoice(ctx context.Context, inv model.Invoice) error {
	payload, err := json.Marshal(InvoiceCreated{
		ID:           inv.ID,
		CustomerName: inv.CustomerName,
		Items:        inv.Items,
		TotalBill:    json.Number(inv.TotalBill.StringFixed(2)),
		CreatedAt:    b.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("events: marshal invoice %d: %w", inv.ID, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	if err := b.pub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("events: publish to %s: %w", b.topic, err)
	}
	return nil
}

// Close closes the underlying publisher.
func (b *Bus) Close() error {
	return b.pub.Close()
}

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

func (Nop) PublishInvoice(context.Context, model.Invoice) error { return nil }
func (Nop) Close() error                                         { return nil }
