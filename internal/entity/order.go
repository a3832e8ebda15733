package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch s := OrderStatus(raw); s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusCompleted, OrderStatusCanceled:
		return s, true
	default:
		return "", false
	}
}

// Terminal reports whether no further transitions leave the status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled
}

// Priority ranks how urgently an order should be handled.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a raw priority value.
func ParsePriority(raw string) (Priority, bool) {
	switch p := Priority(raw); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, true
	default:
		return "", false
	}
}

// Order is a customer's request for a catalog service.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID                     int64       `bun:",pk,autoincrement"`
	OrderNumber            string      `bun:"order_number,notnull,unique"`
	UserID                 int64       `bun:"user_id,notnull"`
	ServiceID              int64       `bun:"service_id,notnull"`
	ProjectName            string      `bun:"project_name"`
	ProjectDescription     string      `bun:"project_description"`
	AdditionalRequirements string      `bun:"additional_requirements"`
	Attachments            []string    `bun:"attachments"`
	Budget                 float64     `bun:"budget,notnull"`
	TotalAmount            float64     `bun:"total_amount"`
	Deadline               *time.Time  `bun:"deadline"`
	Status                 OrderStatus `bun:"status,notnull"`
	Priority               Priority    `bun:"priority,notnull"`
	CreatedAt              time.Time   `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time   `bun:"updated_at,nullzero"`

	User    *User           `bun:"rel:belongs-to,join:user_id=id"`
	Service *CatalogService `bun:"rel:belongs-to,join:service_id=id"`
}
