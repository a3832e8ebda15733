package notification

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	service "github.com/Additional-Code/orderdesk/internal/service/notification"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/orderdesk/transport/http/notification")

// Handler exposes notification endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a notification Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/notifications")
	g.POST("", h.create)
	g.GET("/unread/:userId", h.listUnread)
	g.PUT("/read/:notificationId", h.markRead)
	g.GET("/:userId", h.list)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	userID, err := parseID(c.Param("userId"), "userId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.list", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	items, err := h.svc.ListByUser(ctx, userID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewNotificationList(items)).Build()
}

func (h *Handler) listUnread(c echo.Context) error {
	b := response.New(c)
	userID, err := parseID(c.Param("userId"), "userId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.listUnread", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	items, err := h.svc.ListUnread(ctx, userID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewNotificationList(items)).Build()
}

func (h *Handler) markRead(c echo.Context) error {
	b := response.New(c)
	id, err := parseID(c.Param("notificationId"), "notificationId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.markRead", trace.WithAttributes(attribute.Int64("notification.id", id)))
	defer span.End()

	n, err := h.svc.MarkRead(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewNotificationResponse(n)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		UserID  int64  `json:"userId"`
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.create", trace.WithAttributes(attribute.Int64("user.id", payload.UserID)))
	defer span.End()

	n, err := h.svc.Create(ctx, service.CreateInput{
		UserID:  payload.UserID,
		Type:    payload.Type,
		Message: payload.Message,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewNotificationResponse(n)).Build()
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid "+name, errorbank.WithDetail(name, raw))
	}
	return id, nil
}
