package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/notification")

// ErrNotFound is returned when a notification is missing.
var ErrNotFound = errors.New("notification not found")

// Repository persists notifications.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create stores a new notification. Status defaults to unread.
func (r *Repository) Create(ctx context.Context, n *entity.Notification) error {
	if n == nil {
		return errors.New("nil notification")
	}
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.Create", trace.WithAttributes(
		attribute.Int64("notification.user_id", n.UserID),
		attribute.String("notification.type", n.Type),
	))
	defer span.End()

	if n.Status == "" {
		n.Status = entity.NotificationUnread
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if _, err := r.writer.NewInsert().Model(n).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]entity.Notification, error) {
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.ListByUser", trace.WithAttributes(
		attribute.Int64("notification.user_id", userID),
		attribute.Bool("notification.unread_only", unreadOnly),
	))
	defer span.End()

	notifications := make([]entity.Notification, 0)
	q := r.reader.NewSelect().
		Model(&notifications).
		Where("n.user_id = ?", userID).
		OrderExpr("n.created_at DESC, n.id DESC")
	if unreadOnly {
		q = q.Where("n.status = ?", entity.NotificationUnread)
	}

	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags a notification as read and returns it. Already read notifications are
// returned unchanged.
func (r *Repository) MarkRead(ctx context.Context, id int64) (*entity.Notification, error) {
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.MarkRead", trace.WithAttributes(attribute.Int64("notification.id", id)))
	defer span.End()

	if _, err := r.writer.NewUpdate().
		Model((*entity.Notification)(nil)).
		Set("status = ?", entity.NotificationRead).
		Where("id = ?", id).
		Where("status = ?", entity.NotificationUnread).
		Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}

	n := new(entity.Notification)
	err := r.writer.NewSelect().Model(n).Where("n.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return n, nil
}
