package user

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

var repoTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/user")

var (
	// ErrNotFound is returned when a user is missing.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when the email is already registered.
	ErrConflict = errors.New("user already exists")
)

// Repository encapsulates read/write access for users.
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

// Create persists a new user.
func (r *Repository) Create(ctx context.Context, u *entity.User) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	if _, err := r.writer.NewInsert().Model(u).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// GetByID fetches a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByID", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	return r.first(ctx, span, r.reader.NewSelect().Where("u.id = ?", id))
}

// GetByEmail fetches a user by email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	return r.first(ctx, span, r.reader.NewSelect().Where("u.email = ?", email))
}

// FirstByRole returns the earliest registered user holding role.
func (r *Repository) FirstByRole(ctx context.Context, role string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.FirstByRole", trace.WithAttributes(attribute.String("user.role", role)))
	defer span.End()

	return r.first(ctx, span, r.reader.NewSelect().Where("u.role = ?", role).OrderExpr("u.id ASC").Limit(1))
}

func (r *Repository) first(ctx context.Context, span trace.Span, q *bun.SelectQuery) (*entity.User, error) {
	u := new(entity.User)
	err := q.Model(u).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return u, nil
}

// ListExcludingRole returns every user whose role differs from role.
func (r *Repository) ListExcludingRole(ctx context.Context, role string) ([]entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.ListExcludingRole")
	defer span.End()

	users := make([]entity.User, 0)
	if err := r.reader.NewSelect().Model(&users).Where("u.role <> ?", role).OrderExpr("u.id ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return users, nil
}

// UpdateAccountStatus sets the account status of a user.
func (r *Repository) UpdateAccountStatus(ctx context.Context, id int64, status string) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.UpdateAccountStatus", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	return r.update(ctx, span, id, "account_status = ?", status)
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.TouchLastLogin", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	return r.update(ctx, span, id, "last_login = ?", at.UTC())
}

func (r *Repository) update(ctx context.Context, span trace.Span, id int64, set string, value any) error {
	res, err := r.writer.NewUpdate().
		Model((*entity.User)(nil)).
		Set(set, value).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
