package order

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	service "github.com/Additional-Code/orderdesk/internal/service/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/orderdesk/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.GET("", h.list)
	g.POST("/create", h.create)
	g.PUT("/update/:orderNumber", h.update)
	g.DELETE("/delete/:orderNumber", h.delete)
	g.PUT("/status/:orderNumber", h.changeStatus)
	g.PUT("/priority", h.changePriority)
	g.GET("/status/:status", h.listByStatus)
	g.GET("/user/:userId", h.listByUser)
	g.GET("/:userId/:status", h.listByUserAndStatus)
	g.GET("/:orderNumber", h.get)
}

type createRequest struct {
	UserID                 int64    `json:"userId"`
	ServiceID              int64    `json:"serviceId"`
	ProjectName            string   `json:"projectName"`
	ProjectDescription     string   `json:"projectDescription"`
	AdditionalRequirements string   `json:"additionalRequirements"`
	Attachments            []string `json:"attachments"`
	Budget                 float64  `json:"budget"`
	Deadline               string   `json:"deadline"`
}

type updateRequest struct {
	UserID      *int64   `json:"userId"`
	OrderNumber *string  `json:"orderNumber"`
	TotalAmount *float64 `json:"totalAmount"`
}

type statusRequest struct {
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
}

type priorityRequest struct {
	OrderID  int64  `json:"orderId"`
	Priority string `json:"priority"`
}

func (h *Handler) list(c echo.Context) error {
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, service.ListQuery{})
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	return response.New(c).WithData(dto.NewOrderList(orders)).Build()
}

func (h *Handler) listByStatus(c echo.Context) error {
	status := c.Param("status")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listByStatus", trace.WithAttributes(attribute.String("order.status", status)))
	defer span.End()

	orders, err := h.svc.List(ctx, service.ListQuery{Status: status})
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	return response.New(c).WithData(dto.NewOrderList(orders)).Build()
}

func (h *Handler) listByUser(c echo.Context) error {
	b := response.New(c)
	userID, err := parseID(c.Param("userId"), "userId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listByUser", trace.WithAttributes(attribute.Int64("order.user_id", userID)))
	defer span.End()

	orders, err := h.svc.List(ctx, service.ListQuery{UserID: userID})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderList(orders)).Build()
}

func (h *Handler) listByUserAndStatus(c echo.Context) error {
	b := response.New(c)
	userID, err := parseID(c.Param("userId"), "userId")
	if err != nil {
		return b.WithError(err).Build()
	}
	status := c.Param("status")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listByUserAndStatus", trace.WithAttributes(
		attribute.Int64("order.user_id", userID),
		attribute.String("order.status", status),
	))
	defer span.End()

	orders, err := h.svc.List(ctx, service.ListQuery{UserID: userID, Status: status})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderList(orders)).Build()
}

func (h *Handler) get(c echo.Context) error {
	number := c.Param("orderNumber")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.get", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order, err := h.svc.Get(ctx, number)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	return response.New(c).WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	deadline, err := parseDeadline(payload.Deadline)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	defer span.End()

	order, err := h.svc.Create(ctx, service.CreateInput{
		UserID:                 payload.UserID,
		ServiceID:              payload.ServiceID,
		ProjectName:            payload.ProjectName,
		ProjectDescription:     payload.ProjectDescription,
		AdditionalRequirements: payload.AdditionalRequirements,
		Attachments:            payload.Attachments,
		Budget:                 payload.Budget,
		Deadline:               deadline,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))

	return b.WithStatus(http.StatusCreated).WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	var payload updateRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	key := c.Param("orderNumber")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update", trace.WithAttributes(attribute.String("order.key", key)))
	defer span.End()

	order, err := h.svc.Update(ctx, key, service.UpdateInput{
		UserID:      payload.UserID,
		OrderNumber: payload.OrderNumber,
		TotalAmount: payload.TotalAmount,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	number := c.Param("orderNumber")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order, err := h.svc.Delete(ctx, number)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	return response.New(c).WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) changeStatus(c echo.Context) error {
	b := response.New(c)

	var payload statusRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	// the body wins over the path
	number := strings.TrimSpace(payload.OrderNumber)
	if number == "" {
		number = c.Param("orderNumber")
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.changeStatus", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.String("order.status", payload.Status),
	))
	defer span.End()

	order, err := h.svc.ChangeStatus(ctx, number, payload.Status)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) changePriority(c echo.Context) error {
	b := response.New(c)

	var payload priorityRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.changePriority", trace.WithAttributes(attribute.Int64("order.id", payload.OrderID)))
	defer span.End()

	order, err := h.svc.ChangePriority(ctx, payload.OrderID, payload.Priority)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid "+name, errorbank.WithDetail(name, raw))
	}
	return id, nil
}

func parseDeadline(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errorbank.BadRequest("deadline must be YYYY-MM-DD or RFC 3339", errorbank.WithDetail("deadline", raw))
}
