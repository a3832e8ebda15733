package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	repo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/internal/service/notification"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/orderdesk/service/order")

// maxFillTTL bounds how long a read-side cache fill may live.
const maxFillTTL = 30 * time.Second

// Service encapsulates the order lifecycle.
type Service struct {
	repo       *repo.Repository
	dispatcher *notification.Dispatcher
	cache      cache.Store
	cacheTTL   time.Duration
	logger     *zap.Logger
	publisher  messaging.Client
	messaging  messagingConfig
	metrics    *metrics
	now        func() time.Time
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Dispatcher *notification.Dispatcher
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
	Meter      metric.Meter `optional:"true"`
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := p.Cache
	if store == nil {
		store = cache.NewNoop()
	}
	return &Service{
		repo:       p.Repository,
		dispatcher: p.Dispatcher,
		cache:      store,
		cacheTTL:   p.Config.Cache.DefaultTTL,
		logger:     logger,
		publisher:  p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		metrics: newMetrics(p.Meter),
		now:     time.Now,
	}
}

// CreateInput carries the fields a customer submits for a new order.
type CreateInput struct {
	UserID                 int64
	ServiceID              int64
	ProjectName            string
	ProjectDescription     string
	AdditionalRequirements string
	Attachments            []string
	Budget                 float64
	Deadline               *time.Time
}

// Create validates and stores a new pending order, then notifies an administrator.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	if in.UserID <= 0 || in.ServiceID <= 0 || in.Budget <= 0 {
		return nil, errorbank.BadRequest("userId, serviceId and budget are required")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.Int64("order.user_id", in.UserID),
		attribute.Int64("order.service_id", in.ServiceID),
	))
	defer span.End()

	order := &entity.Order{
		UserID:                 in.UserID,
		ServiceID:              in.ServiceID,
		ProjectName:            strings.TrimSpace(in.ProjectName),
		ProjectDescription:     strings.TrimSpace(in.ProjectDescription),
		AdditionalRequirements: strings.TrimSpace(in.AdditionalRequirements),
		Attachments:            in.Attachments,
		Budget:                 in.Budget,
		Deadline:               in.Deadline,
		Status:                 entity.OrderStatusPending,
		Priority:               entity.PriorityMedium,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		if errors.Is(err, repo.ErrConflict) {
			return nil, errorbank.Conflict("order number already taken, retry the request", errorbank.WithCause(err))
		}
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))

	s.metrics.orderCreated(ctx)
	s.storeInCache(ctx, order)
	s.publish(ctx, newLifecycleEvent(EventOrderCreated, order, s.now()))
	s.notify(ctx, notification.Trigger{
		Event:         notification.EventOrderCreated,
		SubjectUserID: order.UserID,
		Message:       fmt.Sprintf("New order with order number %s has been created", order.OrderNumber),
	})

	return order, nil
}

// Get retrieves an order by number, consulting cache when available.
func (s *Service) Get(ctx context.Context, number string) (*entity.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, errorbank.BadRequest("order number is required")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	if order, err := s.getFromCache(ctx, number); err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.String("order_number", number), zap.Error(err))
	}

	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, s.lookupError(span, err, number)
	}

	s.fillCache(ctx, order)
	return order, nil
}

// ListQuery narrows List. Status is the raw status name; empty means any.
type ListQuery struct {
	UserID int64
	Status string
}

// List returns orders with their owner and service, newest first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]entity.Order, error) {
	filter := repo.Filter{UserID: q.UserID, WithRelations: true}
	if q.Status != "" {
		status, ok := entity.ParseOrderStatus(q.Status)
		if !ok {
			return nil, errorbank.BadRequest("unknown order status", errorbank.WithDetail("status", q.Status))
		}
		filter.Status = status
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.List", trace.WithAttributes(
		attribute.Int64("order.user_id", q.UserID),
		attribute.String("order.status", q.Status),
	))
	defer span.End()

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// ChangeStatus moves an order to a new status and notifies its owner.
func (s *Service) ChangeStatus(ctx context.Context, number, rawStatus string) (*entity.Order, error) {
	number = strings.TrimSpace(number)
	rawStatus = strings.TrimSpace(rawStatus)
	if number == "" || rawStatus == "" {
		return nil, errorbank.BadRequest("orderNumber and status are required")
	}
	to, ok := entity.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, errorbank.BadRequest("unknown order status", errorbank.WithDetail("status", rawStatus))
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.ChangeStatus", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.String("order.status.to", string(to)),
	))
	defer span.End()

	current, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, s.lookupError(span, err, number)
	}
	if !CanTransition(current.Status, to) {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, invalidTransition(number, current.Status, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, number, current.Status, to)
	switch {
	case errors.Is(err, repo.ErrStaleStatus):
		span.SetStatus(codes.Error, "stale status")
		return nil, errorbank.Conflict("order status changed concurrently, reload and retry",
			errorbank.WithCause(err),
			errorbank.WithDetail("orderNumber", number),
		)
	case err != nil:
		return nil, s.lookupError(span, err, number)
	}

	s.metrics.statusChanged(ctx, string(current.Status), string(to))
	s.storeInCache(ctx, updated)
	event := newLifecycleEvent(EventOrderStatusChanged, updated, s.now())
	event.PreviousStatus = string(current.Status)
	s.publish(ctx, event)
	s.notify(ctx, notification.Trigger{
		Event:         notification.EventOrderUpdate,
		SubjectUserID: updated.UserID,
		Message:       fmt.Sprintf("Order with order number %s has been %s", number, to),
	})

	return updated, nil
}

// UpdateInput lists the order fields an administrator may change. Nil fields are left alone.
type UpdateInput struct {
	UserID      *int64
	OrderNumber *string
	TotalAmount *float64
}

func (in UpdateInput) empty() bool {
	return in.UserID == nil && in.OrderNumber == nil && in.TotalAmount == nil
}

// Update applies a partial update to the order identified by key, which is either the numeric
// id or the order number.
func (s *Service) Update(ctx context.Context, key string, in UpdateInput) (*entity.Order, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errorbank.BadRequest("order key is required")
	}
	if in.empty() {
		return nil, errorbank.BadRequest("at least one of userId, orderNumber or totalAmount is required")
	}
	if in.UserID != nil && *in.UserID <= 0 {
		return nil, errorbank.BadRequest("userId must be positive")
	}
	if in.TotalAmount != nil && *in.TotalAmount < 0 {
		return nil, errorbank.BadRequest("totalAmount must not be negative")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.String("order.key", key)))
	defer span.End()

	order, err := s.lookup(ctx, key)
	if err != nil {
		return nil, s.lookupError(span, err, key)
	}
	if in.OrderNumber != nil && strings.TrimSpace(*in.OrderNumber) != order.OrderNumber {
		return nil, errorbank.BadRequest("order number cannot be changed",
			errorbank.WithDetail("orderNumber", order.OrderNumber),
		)
	}

	columns := make([]string, 0, 2)
	if in.UserID != nil {
		order.UserID = *in.UserID
		columns = append(columns, "user_id")
	}
	if in.TotalAmount != nil {
		order.TotalAmount = *in.TotalAmount
		columns = append(columns, "total_amount")
	}

	if len(columns) == 0 {
		return nil, errorbank.BadRequest("nothing to update, orderNumber cannot be changed",
			errorbank.WithDetail("orderNumber", order.OrderNumber),
		)
	}
	if err := s.repo.UpdateFields(ctx, order, columns...); err != nil {
		return nil, s.lookupError(span, err, key)
	}

	s.storeInCache(ctx, order)
	s.publish(ctx, newLifecycleEvent(EventOrderUpdated, order, s.now()))
	s.notify(ctx, notification.Trigger{
		Event:         notification.EventOrderUpdate,
		SubjectUserID: order.UserID,
		Message:       fmt.Sprintf("Your order %s has been updated", order.OrderNumber),
	})

	return order, nil
}

// Delete hard-deletes an order and returns it as it was. No notification is sent.
func (s *Service) Delete(ctx context.Context, number string) (*entity.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, errorbank.BadRequest("order number is required")
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, s.lookupError(span, err, number)
	}
	if err := s.repo.DeleteByNumber(ctx, number); err != nil {
		return nil, s.lookupError(span, err, number)
	}

	s.invalidate(ctx, number)
	s.publish(ctx, newLifecycleEvent(EventOrderDeleted, order, s.now()))
	return order, nil
}

// ChangePriority sets the priority of the order with the given id.
func (s *Service) ChangePriority(ctx context.Context, id int64, rawPriority string) (*entity.Order, error) {
	if id <= 0 {
		return nil, errorbank.BadRequest("orderId is required")
	}
	priority, ok := entity.ParsePriority(strings.TrimSpace(rawPriority))
	if !ok {
		return nil, errorbank.BadRequest("priority must be one of low, medium, high, urgent",
			errorbank.WithDetail("priority", rawPriority),
		)
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.ChangePriority", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.priority", string(priority)),
	))
	defer span.End()

	order, err := s.repo.UpdatePriority(ctx, id, priority)
	if err != nil {
		return nil, s.lookupError(span, err, strconv.FormatInt(id, 10))
	}

	s.storeInCache(ctx, order)
	s.publish(ctx, newLifecycleEvent(EventOrderPriorityChanged, order, s.now()))
	return order, nil
}

func (s *Service) lookup(ctx context.Context, key string) (*entity.Order, error) {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.GetByNumber(ctx, key)
}

func (s *Service) lookupError(span trace.Span, err error, key string) error {
	if errors.Is(err, repo.ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return errorbank.NotFound("order not found", errorbank.WithDetail("order", key))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "repository error")
	return errorbank.Internal("failed to access order", errorbank.WithCause(err))
}

func (s *Service) notify(ctx context.Context, trigger notification.Trigger) {
	if s.dispatcher == nil {
		return
	}
	if res := s.dispatcher.Dispatch(ctx, trigger); res.Err != nil && !errors.Is(res.Err, notification.ErrNoRecipient) {
		s.metrics.notificationFailed(ctx, string(trigger.Event))
	}
}

func (s *Service) cacheKey(number string) string {
	return "orders:" + number
}

func (s *Service) getFromCache(ctx context.Context, number string) (*entity.Order, error) {
	return cache.GetJSON[entity.Order](ctx, s.cache, s.cacheKey(number))
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) {
	if err := cache.SetJSON(ctx, s.cache, s.cacheKey(order.OrderNumber), order, s.cacheTTL); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
}

// fillCache caches an order read from the database. It never overwrites an entry, so a fill
// racing a mutation cannot replace the fresher copy the mutation stored.
func (s *Service) fillCache(ctx context.Context, order *entity.Order) {
	ttl := s.cacheTTL
	if ttl <= 0 || ttl > maxFillTTL {
		ttl = maxFillTTL
	}
	if _, err := cache.AddJSON(ctx, s.cache, s.cacheKey(order.OrderNumber), order, ttl); err != nil {
		s.logger.Warn("orders cache fill failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, number string) {
	if err := s.cache.Delete(ctx, s.cacheKey(number)); err != nil {
		s.logger.Warn("orders cache invalidation failed", zap.String("order_number", number), zap.Error(err))
	}
}
