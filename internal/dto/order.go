package dto

import (
	"time"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID                     int64            `json:"id"`
	OrderNumber            string           `json:"orderNumber"`
	UserID                 int64            `json:"userId"`
	ServiceID              int64            `json:"serviceId"`
	ProjectName            string           `json:"projectName,omitempty"`
	ProjectDescription     string           `json:"projectDescription,omitempty"`
	AdditionalRequirements string           `json:"additionalRequirements,omitempty"`
	Attachments            []string         `json:"attachments"`
	Budget                 float64          `json:"budget"`
	TotalAmount            float64          `json:"totalAmount"`
	Deadline               *time.Time       `json:"deadline,omitempty"`
	Status                 string           `json:"status"`
	Priority               string           `json:"priority"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
	User                   *UserResponse    `json:"user,omitempty"`
	Service                *ServiceResponse `json:"service,omitempty"`
}

// ServiceResponse is the catalog service summary embedded in order listings.
type ServiceResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// NewOrderResponse maps an order entity, including any loaded relations.
func NewOrderResponse(o *entity.Order) OrderResponse {
	attachments := o.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	resp := OrderResponse{
		ID:                     o.ID,
		OrderNumber:            o.OrderNumber,
		UserID:                 o.UserID,
		ServiceID:              o.ServiceID,
		ProjectName:            o.ProjectName,
		ProjectDescription:     o.ProjectDescription,
		AdditionalRequirements: o.AdditionalRequirements,
		Attachments:            attachments,
		Budget:                 o.Budget,
		TotalAmount:            o.TotalAmount,
		Deadline:               o.Deadline,
		Status:                 string(o.Status),
		Priority:               string(o.Priority),
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
	if o.User != nil {
		u := NewUserResponse(o.User)
		resp.User = &u
	}
	if o.Service != nil {
		resp.Service = &ServiceResponse{
			ID:          o.Service.ID,
			Name:        o.Service.Name,
			Description: o.Service.Description,
			Price:       o.Service.Price,
		}
	}
	return resp
}

// NewOrderList maps a slice of orders.
func NewOrderList(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
