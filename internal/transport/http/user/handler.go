package user

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/auth"
	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	service "github.com/Additional-Code/orderdesk/internal/service/user"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/orderdesk/transport/http/user")

// Handler exposes user endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a user Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group. Account administration requires a session token.
func Register(e *echo.Echo, h *Handler, issuer *auth.Issuer) {
	g := e.Group("/users")
	g.POST("/register", h.register)
	g.POST("/login", h.login)

	protected := auth.Middleware(issuer)
	g.GET("", h.list, protected)
	g.GET("/profile/:id", h.get, protected)
	g.PUT("/status/:id", h.updateStatus, protected)
	g.GET("/notifications/:id", h.notifications, protected)
	g.GET("/:id", h.get)
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.register")
	defer span.End()

	u, err := h.svc.Register(ctx, service.RegisterInput{
		FullName: payload.FullName,
		Email:    payload.Email,
		Password: payload.Password,
		Phone:    payload.Phone,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewUserResponse(u)).Build()
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.login")
	defer span.End()

	session, err := h.svc.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.NewUserResponse(session.User),
	}).Build()
}

func (h *Handler) list(c echo.Context) error {
	ctx, span := httpTracer.Start(c.Request().Context(), "users.list")
	defer span.End()

	users, err := h.svc.List(ctx)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	return response.New(c).WithData(dto.NewUserList(users)).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.get", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	u, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewUserResponse(u)).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload struct {
		AccountStatus string `json:"accountStatus"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.updateStatus", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	u, err := h.svc.UpdateStatus(ctx, id, payload.AccountStatus)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewUserResponse(u)).Build()
}

func (h *Handler) notifications(c echo.Context) error {
	b := response.New(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.notifications", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	items, err := h.svc.Notifications(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewNotificationList(items)).Build()
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid user id", errorbank.WithDetail("id", raw))
	}
	return id, nil
}
