package order

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/messaging"
)

// Lifecycle event types, carried in the event-type message header.
const (
	EventOrderCreated         = "order.created"
	EventOrderStatusChanged   = "order.status_changed"
	EventOrderUpdated         = "order.updated"
	EventOrderDeleted         = "order.deleted"
	EventOrderPriorityChanged = "order.priority_changed"
)

// LifecycleEvent is published after every successful order mutation.
type LifecycleEvent struct {
	Type           string    `json:"type"`
	OrderID        int64     `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	UserID         int64     `json:"userId"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Priority       string    `json:"priority,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func newLifecycleEvent(eventType string, order *entity.Order, now time.Time) LifecycleEvent {
	return LifecycleEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      string(order.Status),
		Priority:    string(order.Priority),
		OccurredAt:  now.UTC(),
	}
}

func (s *Service) publish(ctx context.Context, event LifecycleEvent) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	headers := map[string]string{
		messaging.HeaderEventType: event.Type,
		"content-type":            "application/json",
	}
	if err := s.publisher.Publish(ctx, []byte(event.OrderNumber), payload, headers); err != nil {
		s.logger.Error("publish order event",
			zap.String("type", event.Type),
			zap.String("order_number", event.OrderNumber),
			zap.Error(err),
		)
	}
}
