package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	applog "github.com/Additional-Code/orderdesk/internal/logger"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

const loggerKey = "orderdesk.logger"

// AttachLogger makes logger available to builders created for the request. Internal failures
// are logged through it with their cause.
func AttachLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(loggerKey, logger)
			return next(c)
		}
	}
}

// Builder helps construct consistent HTTP responses. Successful responses carry the payload
// itself; failures carry an error body.
type Builder struct {
	ctx    echo.Context
	status int
	data   any
	err    error
}

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind"`
	Details map[string]any `json:"details,omitempty"`
}

// New instantiates a Builder for the provided request context.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK}
}

// WithStatus overrides the response status code.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

// WithData attaches a success payload.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithError records an error to be rendered.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// Build finalises and emits the HTTP response.
func (b *Builder) Build() error {
	if b.err != nil {
		return b.buildError()
	}
	if b.data == nil {
		return b.ctx.NoContent(b.status)
	}
	return b.ctx.JSON(b.status, b.data)
}

func (b *Builder) buildError() error {
	appErr := errorbank.From(b.err)
	status := b.status
	if status < 400 {
		status = appErr.StatusCode()
	}

	body := ErrorBody{
		Error: appErr.Message(),
		Kind:  string(appErr.Kind()),
	}
	// internal failures never expose details gathered from lower layers
	if appErr.Kind() == errorbank.KindInternal {
		b.logFailure(appErr)
	} else {
		body.Details = appErr.Details()
	}
	return b.ctx.JSON(status, body)
}

func (b *Builder) logFailure(err *errorbank.AppError) {
	logger, ok := b.ctx.Get(loggerKey).(*zap.Logger)
	if !ok || logger == nil {
		return
	}
	req := b.ctx.Request()
	applog.WithTrace(req.Context(), logger).Error("http request failed",
		zap.String("method", req.Method),
		zap.String("path", b.ctx.Path()),
		zap.String("request_id", b.ctx.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err),
	)
}
