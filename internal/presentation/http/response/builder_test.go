package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBuildSuccessWritesPayload(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, New(c).WithStatus(http.StatusCreated).WithData(map[string]string{"orderNumber": "SR-2025-001"}).Build())

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"orderNumber":"SR-2025-001"}`, rec.Body.String())
}

func TestBuildErrorUsesKindStatus(t *testing.T) {
	c, rec := newContext()

	err := errorbank.NotFound("order not found", errorbank.WithDetail("order", "SR-2025-404"))
	require.NoError(t, New(c).WithError(err).Build())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "order not found", body.Error)
	assert.Equal(t, "not_found", body.Kind)
	assert.Equal(t, "SR-2025-404", body.Details["order"])
}

func TestBuildErrorHidesInternals(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, New(c).WithError(errors.New("pq: relation \"orders\" does not exist")).Build())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error","kind":"internal"}`, rec.Body.String())
}

func TestBuildWithoutData(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, New(c).WithStatus(http.StatusNoContent).Build())
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBuildErrorLogsInternalCause(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c, rec := newContext()
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	handler := AttachLogger(zap.New(core))(func(c echo.Context) error {
		cause := errors.New("pq: relation \"orders\" does not exist")
		return New(c).WithError(errorbank.Internal("failed to list orders", errorbank.WithCause(cause))).Build()
	})
	require.NoError(t, handler(c))

	assert.JSONEq(t, `{"error":"failed to list orders","kind":"internal"}`, rec.Body.String())
	entries := logs.FilterMessage("http request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Contains(t, fields["error"], "relation \"orders\" does not exist")
}

func TestBuildErrorSkipsLoggingClientErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c, _ := newContext()

	handler := AttachLogger(zap.New(core))(func(c echo.Context) error {
		return New(c).WithError(errorbank.NotFound("order not found")).Build()
	})
	require.NoError(t, handler(c))

	assert.Zero(t, logs.Len())
}
