package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/dto"
	notificationrepo "github.com/Additional-Code/orderdesk/internal/repository/notification"
	service "github.com/Additional-Code/orderdesk/internal/service/notification"
	"github.com/Additional-Code/orderdesk/internal/testutil"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	conns := testutil.NewConnections(t)
	e := echo.New()
	Register(e, NewHandler(service.NewService(notificationrepo.NewRepository(conns), nil)))
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNotificationEndpoints(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/notifications", `{"userId":4,"type":"system","message":"Maintenance tonight"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created dto.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "unread", created.Status)

	rec = do(e, http.MethodPost, "/notifications", `{"userId":4,"type":"system","message":"Second"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPut, "/notifications/read/"+jsonInt(created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"read"`)

	rec = do(e, http.MethodGet, "/notifications/unread/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var unread []dto.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
	require.Len(t, unread, 1)
	assert.Equal(t, "Second", unread[0].Message)

	rec = do(e, http.MethodGet, "/notifications/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []dto.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = do(e, http.MethodGet, "/notifications/77", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestNotificationErrors(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPut, "/notifications/read/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPut, "/notifications/read/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/notifications", `{"userId":4,"type":"system"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/notifications", `{"userId":"four"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
