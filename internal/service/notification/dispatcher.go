package notification

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/entity"
	applog "github.com/Additional-Code/orderdesk/internal/logger"
)

var dispatchTracer = otel.Tracer("github.com/Additional-Code/orderdesk/service/notification")

// Store persists notifications.
type Store interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]entity.Notification, error)
	MarkRead(ctx context.Context, id int64) (*entity.Notification, error)
}

// Result reports the outcome of a dispatch.
type Result struct {
	Recipient    int64
	Notification *entity.Notification
	Err          error
}

// Delivered reports whether the notification was stored.
func (r Result) Delivered() bool {
	return r.Err == nil && r.Notification != nil
}

// Dispatcher writes notifications chosen by the policy. Failures are logged and returned in
// the Result; they never surface as errors to the triggering operation.
type Dispatcher struct {
	policy *Policy
	store  Store
	logger *zap.Logger
}

// NewDispatcher builds a Dispatcher.
func NewDispatcher(store Store, users UserFinder, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		policy: NewPolicy(users),
		store:  store,
		logger: logger,
	}
}

// Dispatch resolves the recipient and stores exactly one notification for the trigger.
func (d *Dispatcher) Dispatch(ctx context.Context, t Trigger) Result {
	ctx, span := dispatchTracer.Start(ctx, "NotificationDispatcher.Dispatch", trace.WithAttributes(
		attribute.String("notification.type", string(t.Event)),
	))
	defer span.End()

	recipient, err := d.policy.Recipient(ctx, t)
	if err != nil {
		applog.WithTrace(ctx, d.logger).Warn("notification recipient not resolved",
			zap.String("type", string(t.Event)),
			zap.Int64("subject_user_id", t.SubjectUserID),
			zap.Error(err),
		)
		span.SetStatus(codes.Error, "no recipient")
		return Result{Err: err}
	}

	n := &entity.Notification{
		UserID:  recipient,
		Type:    string(t.Event),
		Message: t.Message,
		Status:  entity.NotificationUnread,
	}
	if err := d.store.Create(ctx, n); err != nil {
		applog.WithTrace(ctx, d.logger).Error("notification write failed",
			zap.String("type", string(t.Event)),
			zap.Int64("recipient", recipient),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return Result{Recipient: recipient, Err: err}
	}

	span.SetAttributes(attribute.Int64("notification.recipient", recipient))
	return Result{Recipient: recipient, Notification: n}
}
