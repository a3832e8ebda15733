package dto

import (
	"time"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// NotificationResponse represents a notification addressed to a user.
type NotificationResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewNotificationResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Message:   n.Message,
		Status:    string(n.Status),
		CreatedAt: n.CreatedAt,
	}
}

func NewNotificationList(items []entity.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for i := range items {
		out = append(out, NewNotificationResponse(&items[i]))
	}
	return out
}
