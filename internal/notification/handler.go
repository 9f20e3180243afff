package notification

import (
	"context"
	"encoding/json"
	"log"
)

// Handler processes events for sending notifications
type Handler struct {
	mailer Mailer
}

// NewHandler creates a new notification handler
func NewHandler(m Mailer) *Handler {
	return &Handler{mailer: m}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	// Only process OrderConfirmed events
	if event.Type == EventOrderConfirmed {
		return h.handleOrderConfirmed(event)
	}

	return nil
}

func (h *Handler) handleOrderConfirmed(event Event) error {
	var e OrderConfirmed
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderConfirmed event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing OrderConfirmed event for order %s, user %s", e.OrderID, e.UserID)

	if e.Email == "" {
		log.Printf("[Notifier] No email address on order %s, skipping", e.OrderID)
		return nil
	}

	if err := h.mailer.SendOrderConfirmation(e.Email, e.confirmation()); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", e.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", e.Email, e.OrderID)
	return nil
}
