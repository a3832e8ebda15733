package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

type principalKey struct{}

const principalContextKey = "auth.principal"

// Middleware rejects requests without a valid Bearer token and exposes the principal to handlers.
func Middleware(issuer *Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return response.New(c).WithError(errorbank.Unauthorized("missing bearer token")).Build()
			}

			principal, err := issuer.Parse(strings.TrimSpace(raw))
			if err != nil {
				return response.New(c).WithError(errorbank.Unauthorized("invalid or expired token", errorbank.WithCause(err))).Build()
			}

			c.Set(principalContextKey, principal)
			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), principal)))
			return next(c)
		}
	}
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by Middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
