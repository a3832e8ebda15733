package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/order")

var (
	// ErrNotFound is returned when an order is missing.
	ErrNotFound = errors.New("order not found")
	// ErrConflict is returned when an order number is already taken.
	ErrConflict = errors.New("order number already exists")
	// ErrStaleStatus is returned when the stored status no longer matches the expected one.
	ErrStaleStatus = errors.New("order status changed concurrently")
)

// sequenceLockKey identifies the advisory lock guarding order-number generation.
const sequenceLockKey int64 = 0x5352_0001

// Filter narrows List results. Zero values match everything.
type Filter struct {
	UserID        int64
	Status        entity.OrderStatus
	WithRelations bool
}

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB

	// seqMu serializes number generation within the process.
	seqMu sync.Mutex
	now   func() time.Time
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
		now:    time.Now,
	}
}

// Create assigns the next order number and persists the order in a single transaction.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.Int64("order.user_id", order.UserID)))
	defer span.End()

	r.seqMu.Lock()
	defer r.seqMu.Unlock()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockSequence(ctx, tx); err != nil {
			return fmt.Errorf("lock order sequence: %w", err)
		}

		last, err := latestNumber(ctx, tx)
		if err != nil {
			return fmt.Errorf("read latest order number: %w", err)
		}
		now := r.now()
		order.OrderNumber = NextNumber(last, now)
		order.CreatedAt = now.UTC()
		order.UpdatedAt = order.CreatedAt

		exists, err := tx.NewSelect().Model((*entity.Order)(nil)).Where("order_number = ?", order.OrderNumber).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return ErrConflict
		}

		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}

	span.SetAttributes(attribute.String("order.number", order.OrderNumber))
	return nil
}

func lockSequence(ctx context.Context, tx bun.Tx) error {
	if tx.Dialect().Name() != dialect.PG {
		return nil
	}
	_, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(?)", sequenceLockKey)
	return err
}

func latestNumber(ctx context.Context, tx bun.Tx) (string, error) {
	var last string
	err := tx.NewSelect().
		Model((*entity.Order)(nil)).
		Column("order_number").
		OrderExpr("o.created_at DESC, o.id DESC").
		Limit(1).
		Scan(ctx, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return last, err
}

// GetByNumber fetches an order by its order number using the read replica when available.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByNumber", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	return r.getOne(ctx, span, r.reader, "o.order_number = ?", number)
}

// GetByID fetches an order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	return r.getOne(ctx, span, r.reader, "o.id = ?", id)
}

func (r *Repository) getOne(ctx context.Context, span trace.Span, db bun.IDB, where string, arg any) (*entity.Order, error) {
	order := new(entity.Order)
	err := db.NewSelect().Model(order).Where(where, arg).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns orders matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List", trace.WithAttributes(
		attribute.Int64("order.user_id", f.UserID),
		attribute.String("order.status", string(f.Status)),
	))
	defer span.End()

	orders := make([]entity.Order, 0)
	q := r.reader.NewSelect().Model(&orders).OrderExpr("o.created_at DESC, o.id DESC")
	if f.UserID > 0 {
		q = q.Where("o.user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("o.status = ?", f.Status)
	}
	if f.WithRelations {
		q = q.Relation("User").Relation("Service")
	}

	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// UpdateFields writes the named columns of order and bumps updated_at.
func (r *Repository) UpdateFields(ctx context.Context, order *entity.Order, columns ...string) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateFields", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	order.UpdatedAt = r.now().UTC()
	res, err := r.writer.NewUpdate().
		Model(order).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return requireAffected(res)
}

// UpdateStatus moves an order from one status to another. The write only applies while the
// stored status still equals from, so concurrent transitions cannot both succeed.
func (r *Repository) UpdateStatus(ctx context.Context, number string, from, to entity.OrderStatus) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateStatus", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.String("order.status.from", string(from)),
		attribute.String("order.status.to", string(to)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Order)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", r.now().UTC()).
		Where("order_number = ?", number).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}

	if err := requireAffected(res); err != nil {
		// distinguish a vanished order from a lost race
		if _, lookupErr := r.getOne(ctx, span, r.writer, "o.order_number = ?", number); errors.Is(lookupErr, ErrNotFound) {
			return nil, ErrNotFound
		}
		span.SetStatus(codes.Error, "stale status")
		return nil, ErrStaleStatus
	}

	return r.getOne(ctx, span, r.writer, "o.order_number = ?", number)
}

// UpdatePriority sets the priority of the order with the given id.
func (r *Repository) UpdatePriority(ctx context.Context, id int64, priority entity.Priority) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdatePriority", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Order)(nil)).
		Set("priority = ?", priority).
		Set("updated_at = ?", r.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}

	return r.getOne(ctx, span, r.writer, "o.id = ?", id)
}

// DeleteByNumber hard-deletes the order with the given number.
func (r *Repository) DeleteByNumber(ctx context.Context, number string) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.DeleteByNumber", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model((*entity.Order)(nil)).
		Where("order_number = ?", number).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
