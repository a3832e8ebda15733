package order

import (
	"errors"
	"fmt"

	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// ErrInvalidTransition is wrapped by errors for status changes the lifecycle forbids.
var ErrInvalidTransition = errors.New("invalid order status transition")

var transitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderStatusPending:  {entity.OrderStatusApproved, entity.OrderStatusCanceled},
	entity.OrderStatusApproved: {entity.OrderStatusCompleted, entity.OrderStatusCanceled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to entity.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func invalidTransition(number string, from, to entity.OrderStatus) *errorbank.AppError {
	return errorbank.Unprocessable(
		fmt.Sprintf("cannot move order from %s to %s", from, to),
		errorbank.WithCause(ErrInvalidTransition),
		errorbank.WithDetails(map[string]any{
			"orderNumber": number,
			"from":        string(from),
			"to":          string(to),
		}),
	)
}
