package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// NotificationStatus tracks whether the recipient has seen a notification.
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

// Notification is an in-app message addressed to a single user.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        int64              `bun:",pk,autoincrement"`
	UserID    int64              `bun:"user_id,notnull"`
	Type      string             `bun:"type,notnull"`
	Message   string             `bun:"message,notnull"`
	Status    NotificationStatus `bun:"status,notnull"`
	CreatedAt time.Time          `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
