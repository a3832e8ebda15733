package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func TestManagerWithStdoutMetrics(t *testing.T) {
	var cfg config.Config
	cfg.Observability = config.Observability{
		ServiceName:     "orderdesk",
		ServiceVersion:  "1.2.3",
		Environment:     "test",
		EnableMetrics:   true,
		MetricsExporter: "stdout",
		PrometheusPath:  "/metrics",
	}

	lc := fxtest.NewLifecycle(t)
	mgr, err := NewManager(lc, cfg, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mgr.TracingEnabled())
	assert.True(t, mgr.MetricsEnabled())
	assert.Nil(t, mgr.MetricsHandler())
	assert.Equal(t, "/metrics", mgr.PrometheusPath())

	counter, err := mgr.Meter("test").Int64Counter("orders.test")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	lc.RequireStart()
	lc.RequireStop()
}

func TestManagerUnsupportedExporters(t *testing.T) {
	var cfg config.Config
	cfg.Observability = config.Observability{
		ServiceName:     "orderdesk",
		EnableTracing:   true,
		TraceExporter:   "zipkin",
		EnableMetrics:   true,
		MetricsExporter: "statsd",
	}

	mgr, err := NewManager(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mgr.TracingEnabled())
	assert.False(t, mgr.MetricsEnabled())
	assert.NotNil(t, mgr.Meter("fallback"))
}

func TestManagerServesPrometheusMetrics(t *testing.T) {
	var cfg config.Config
	cfg.Observability = config.Observability{
		ServiceName:     "orderdesk",
		EnableMetrics:   true,
		MetricsExporter: "prometheus",
		PrometheusPath:  "/metrics",
	}

	mgr, err := NewManager(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, mgr.MetricsHandler())

	counter, err := mgr.Meter("test").Int64Counter("orders.created")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	mgr.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "orders_created_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(0).Description(), "root:AlwaysOffSampler")
	assert.Equal(t, sdktrace.ParentBased(sdktrace.NeverSample()).Description(), sampler(-0.5).Description())
	assert.Contains(t, sampler(1).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
	assert.Equal(t, sdktrace.ParentBased(sdktrace.AlwaysSample()).Description(), sampler(2).Description())
}
