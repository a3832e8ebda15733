package order

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	applog "github.com/Additional-Code/orderdesk/internal/logger"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	ordersvc "github.com/Additional-Code/orderdesk/internal/service/order"
	"github.com/Additional-Code/orderdesk/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/orderdesk/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewLifecycleHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

var knownEvents = map[string]bool{
	ordersvc.EventOrderCreated:         true,
	ordersvc.EventOrderStatusChanged:   true,
	ordersvc.EventOrderUpdated:         true,
	ordersvc.EventOrderDeleted:         true,
	ordersvc.EventOrderPriorityChanged: true,
}

// LifecycleConsumer records order lifecycle events taken off the bus.
type LifecycleConsumer struct {
	logger *zap.Logger
	events metric.Int64Counter
}

// NewLifecycleConsumer builds a consumer that counts events on meter.
func NewLifecycleConsumer(logger *zap.Logger, meter metric.Meter) (*LifecycleConsumer, error) {
	if meter == nil {
		meter = otel.Meter("github.com/Additional-Code/orderdesk/worker/order")
	}
	counter, err := meter.Int64Counter("orders.lifecycle.consumed",
		metric.WithDescription("Order lifecycle events consumed by type"))
	if err != nil {
		return nil, fmt.Errorf("create lifecycle counter: %w", err)
	}
	return &LifecycleConsumer{logger: logger, events: counter}, nil
}

// Handle decodes one lifecycle message. Unknown event types are skipped.
func (l *LifecycleConsumer) Handle(ctx context.Context, msg messaging.Message) error {
	eventType := msg.Headers[messaging.HeaderEventType]
	ctx, span := workerTracer.Start(ctx, "worker.orders.lifecycle", trace.WithAttributes(
		attribute.String("messaging.topic", msg.Topic),
		attribute.String("order.event", eventType),
	))
	defer span.End()

	var event ordersvc.LifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		l.logger.Error("failed to decode order lifecycle event", zap.Int64("offset", msg.Offset), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode error")
		return err
	}
	if eventType == "" {
		eventType = event.Type
	}
	if !knownEvents[eventType] {
		l.logger.Warn("skipping unknown order event", zap.String("type", eventType), zap.Int64("offset", msg.Offset))
		return nil
	}

	l.events.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
	fields := []zap.Field{
		zap.String("type", eventType),
		zap.String("order_number", event.OrderNumber),
		zap.Int64("user_id", event.UserID),
		zap.String("status", event.Status),
	}
	if event.PreviousStatus != "" {
		fields = append(fields, zap.String("previous_status", event.PreviousStatus))
	}
	applog.WithTrace(ctx, l.logger).Info("order lifecycle event processed", fields...)
	return nil
}

// NewLifecycleHandler registers the lifecycle consumer on the configured topic.
func NewLifecycleHandler(logger *zap.Logger, cfg config.Config, meter metric.Meter) (worker.HandlerRegistration, error) {
	consumer, err := NewLifecycleConsumer(logger, meter)
	if err != nil {
		return worker.HandlerRegistration{}, err
	}
	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: consumer.Handle,
	}, nil
}
