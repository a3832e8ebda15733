package notification

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/entity"
	notificationrepo "github.com/Additional-Code/orderdesk/internal/repository/notification"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// Service exposes notification queries and manual creation.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService builds a Service over store.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// ListByUser returns every notification addressed to userID.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]entity.Notification, error) {
	return s.list(ctx, userID, false)
}

// ListUnread returns the unread notifications addressed to userID.
func (s *Service) ListUnread(ctx context.Context, userID int64) ([]entity.Notification, error) {
	return s.list(ctx, userID, true)
}

func (s *Service) list(ctx context.Context, userID int64, unreadOnly bool) ([]entity.Notification, error) {
	if userID <= 0 {
		return nil, errorbank.BadRequest("user ID is required")
	}
	items, err := s.store.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, errorbank.Internal("failed to load notifications", errorbank.WithCause(err))
	}
	return items, nil
}

// MarkRead flags a notification as read.
func (s *Service) MarkRead(ctx context.Context, id int64) (*entity.Notification, error) {
	if id <= 0 {
		return nil, errorbank.BadRequest("notification ID is required")
	}
	n, err := s.store.MarkRead(ctx, id)
	if errors.Is(err, notificationrepo.ErrNotFound) {
		return nil, errorbank.NotFound("notification not found")
	}
	if err != nil {
		return nil, errorbank.Internal("failed to update notification", errorbank.WithCause(err))
	}
	return n, nil
}

// CreateInput carries a manually submitted notification.
type CreateInput struct {
	UserID  int64
	Type    string
	Message string
}

// Create stores a notification addressed directly to a user.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Notification, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.Message = strings.TrimSpace(in.Message)
	if in.UserID <= 0 || in.Type == "" || in.Message == "" {
		return nil, errorbank.BadRequest("userId, type and message are required")
	}

	n := &entity.Notification{
		UserID:  in.UserID,
		Type:    in.Type,
		Message: in.Message,
		Status:  entity.NotificationUnread,
	}
	if err := s.store.Create(ctx, n); err != nil {
		s.logger.Error("create notification", zap.Int64("user_id", in.UserID), zap.Error(err))
		return nil, errorbank.Internal("failed to create notification", errorbank.WithCause(err))
	}
	return n, nil
}
