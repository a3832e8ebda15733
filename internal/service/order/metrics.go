package order

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Additional-Code/orderdesk/service/order"

type metrics struct {
	created      metric.Int64Counter
	transitions  metric.Int64Counter
	dispatchFail metric.Int64Counter
}

func newMetrics(meter metric.Meter) *metrics {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	m := &metrics{}
	// instrument creation only fails on invalid names; a nil counter is skipped on record
	m.created, _ = meter.Int64Counter("orders.created",
		metric.WithDescription("Orders accepted"))
	m.transitions, _ = meter.Int64Counter("orders.status_transitions",
		metric.WithDescription("Order status changes by target status"))
	m.dispatchFail, _ = meter.Int64Counter("orders.notifications.failed",
		metric.WithDescription("Notifications that could not be stored"))
	return m
}

func (m *metrics) orderCreated(ctx context.Context) {
	if m.created != nil {
		m.created.Add(ctx, 1)
	}
}

func (m *metrics) statusChanged(ctx context.Context, from, to string) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		))
	}
}

func (m *metrics) notificationFailed(ctx context.Context, eventType string) {
	if m.dispatchFail != nil {
		m.dispatchFail.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
	}
}
