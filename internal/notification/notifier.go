package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventOrderConfirmed = "OrderConfirmed"

// Event is the envelope written to the event topic
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// OrderConfirmed carries everything the confirmation email needs,
// so consumers never read the database.
type OrderConfirmed struct {
	OrderID      string          `json:"order_id"`
	UserID       string          `json:"user_id"`
	Email        string          `json:"email"`
	CustomerName string          `json:"customer_name"`
	Items        []ConfirmedItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	ShipTo       string          `json:"ship_to,omitempty"`
}

type ConfirmedItem struct {
	Name     string          `json:"name"`
	Size     string          `json:"size,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// NewOrderConfirmed builds the event payload for a paid order
func NewOrderConfirmed(o *model.Order, u *model.User) OrderConfirmed {
	items := make([]ConfirmedItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = ConfirmedItem{Name: it.Name, Size: it.Size, Quantity: it.Quantity, Price: it.Price}
	}
	return OrderConfirmed{
		OrderID:      o.ID,
		UserID:       u.ID,
		Email:        u.Email,
		CustomerName: u.Name,
		Items:        items,
		Subtotal:     o.Subtotal,
		Discount:     o.Discount,
		Total:        o.Total,
		ShipTo:       formatAddress(o.ShippingAddress),
	}
}

func (e OrderConfirmed) confirmation() email.OrderConfirmation {
	items := make([]email.OrderItem, len(e.Items))
	for i, it := range e.Items {
		items[i] = email.OrderItem{Name: it.Name, Size: it.Size, Quantity: it.Quantity, Price: it.Price}
	}
	return email.OrderConfirmation{
		OrderID:      e.OrderID,
		CustomerName: e.CustomerName,
		Items:        items,
		Subtotal:     e.Subtotal,
		Discount:     e.Discount,
		Total:        e.Total,
		ShipTo:       e.ShipTo,
	}
}

func formatAddress(a *model.Address) string {
	if a == nil {
		return ""
	}
	parts := []string{a.FullName, a.Line1, a.Line2, a.City, a.State + " " + a.PostalCode, a.Country}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// Mailer sends the confirmation email
type Mailer interface {
	SendOrderConfirmation(to string, c email.OrderConfirmation) error
}

// EmailNotifier emails the customer directly from the API process
type EmailNotifier struct {
	mailer Mailer
}

func NewEmailNotifier(m Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: m}
}

func (n *EmailNotifier) OrderConfirmed(ctx context.Context, o *model.Order, u *model.User) error {
	return n.mailer.SendOrderConfirmation(u.Email, NewOrderConfirmed(o, u).confirmation())
}

// Publisher writes keyed events to the event stream
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// EventPublisher hands the confirmation to the notifier process via the event stream
type EventPublisher struct {
	publisher Publisher
}

func NewEventPublisher(p Publisher) *EventPublisher {
	return &EventPublisher{publisher: p}
}

func (p *EventPublisher) OrderConfirmed(ctx context.Context, o *model.Order, u *model.User) error {
	data, err := json.Marshal(NewOrderConfirmed(o, u))
	if err != nil {
		return err
	}
	event := Event{
		ID:         uuid.New().String(),
		Type:       EventOrderConfirmed,
		OccurredAt: time.Now(),
		Data:       data,
	}
	if err := p.publisher.Publish(ctx, o.ID, event); err != nil {
		return fmt.Errorf("publish %s: %w", EventOrderConfirmed, err)
	}
	return nil
}
