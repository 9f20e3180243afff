package order

import (
	"fmt"
	"slices"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/model"
)

var (
	ErrInvalidStatus     = domain.Invalid("unknown order status")
	ErrInvalidTransition = domain.Rejected("invalid order status transition")
	ErrOrderUnpaid       = domain.Rejected("order has not been paid")
)

// validTransitions defines the fulfilment moves an admin may make.
// Pending leaves only through payment verification or Failed.
var validTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderPending:    {model.OrderFailed},
	model.OrderProcessing: {model.OrderShipping, model.OrderFailed},
	model.OrderShipping:   {model.OrderDelivered, model.OrderFailed},
	model.OrderDelivered:  {}, // terminal state
	model.OrderFailed:     {}, // terminal state
}

// ParseStatus validates a status string from a request
func ParseStatus(s string) (model.OrderStatus, error) {
	status := model.OrderStatus(s)
	if _, ok := validTransitions[status]; !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to model.OrderStatus) bool {
	return slices.Contains(validTransitions[from], to)
}

func transitionError(o *model.Order, target model.OrderStatus) error {
	if o.Status == model.OrderPending && target != model.OrderFailed {
		return ErrOrderUnpaid
	}
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, o.Status, target)
}
