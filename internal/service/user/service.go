package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/orderdesk/internal/auth"
	"github.com/Additional-Code/orderdesk/internal/entity"
	userrepo "github.com/Additional-Code/orderdesk/internal/repository/user"
	"github.com/Additional-Code/orderdesk/internal/service/notification"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/orderdesk/service/user")

// Service handles registration, login and account administration.
type Service struct {
	repo          *userrepo.Repository
	dispatcher    *notification.Dispatcher
	notifications *notification.Service
	issuer        *auth.Issuer
	logger        *zap.Logger
	bcryptCost    int
	now           func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository    *userrepo.Repository
	Dispatcher    *notification.Dispatcher
	Notifications *notification.Service
	Issuer        *auth.Issuer
	Logger        *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:          p.Repository,
		dispatcher:    p.Dispatcher,
		notifications: p.Notifications,
		issuer:        p.Issuer,
		logger:        logger,
		bcryptCost:    bcrypt.DefaultCost,
		now:           time.Now,
	}
}

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Phone    string
}

// Register creates a regular user account and tells an administrator about it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.FullName == "" || in.Email == "" || in.Password == "" || in.Phone == "" {
		return nil, errorbank.BadRequest("fullName, email, password and phone are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, errorbank.BadRequest("email is not valid", errorbank.WithCause(err))
	}

	ctx, span := serviceTracer.Start(ctx, "UserService.Register")
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, errorbank.BadRequest("password cannot be used", errorbank.WithCause(err))
	}

	now := s.now().UTC()
	u := &entity.User{
		FullName:      in.FullName,
		Email:         in.Email,
		Password:      string(hash),
		Phone:         in.Phone,
		Role:          entity.RoleUser,
		AccountStatus: entity.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrConflict) {
			return nil, errorbank.BadRequest("user already exists", errorbank.WithDetail("email", in.Email))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to register user", errorbank.WithCause(err))
	}
	span.SetAttributes(attribute.Int64("user.id", u.ID))

	s.dispatch(ctx, notification.Trigger{
		Event:         notification.EventUserRegistered,
		SubjectUserID: u.ID,
		Message:       fmt.Sprintf("New user with email %s has been registered", u.Email),
	})
	return u, nil
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// Login checks credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errorbank.BadRequest("email and password are required")
	}

	ctx, span := serviceTracer.Start(ctx, "UserService.Login")
	defer span.End()

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, errorbank.BadRequest("invalid email or password")
	}
	if err != nil {
		return nil, s.internal(span, "failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, errorbank.BadRequest("invalid email or password")
	}
	if u.AccountStatus != entity.AccountStatusActive {
		return nil, errorbank.Unauthorized("account is not active", errorbank.WithDetail("accountStatus", u.AccountStatus))
	}

	token, expires, err := s.issuer.Issue(auth.Principal{UserID: u.ID, Role: u.Role})
	if err != nil {
		return nil, s.internal(span, "failed to issue token", err)
	}

	at := s.now().UTC()
	if err := s.repo.TouchLastLogin(ctx, u.ID, at); err != nil {
		s.logger.Warn("record last login", zap.Int64("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLogin = &at
	}

	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}

// List returns every non-admin user.
func (s *Service) List(ctx context.Context) ([]entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.List")
	defer span.End()

	users, err := s.repo.ListExcludingRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, s.internal(span, "failed to list users", err)
	}
	return users, nil
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	if id <= 0 {
		return nil, errorbank.BadRequest("user ID is required")
	}

	ctx, span := serviceTracer.Start(ctx, "UserService.Get", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, errorbank.NotFound("user not found")
	}
	if err != nil {
		return nil, s.internal(span, "failed to load user", err)
	}
	return u, nil
}

// UpdateStatus changes the account status and notifies the account holder.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*entity.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if id <= 0 || status == "" {
		return nil, errorbank.BadRequest("user ID and accountStatus are required")
	}

	ctx, span := serviceTracer.Start(ctx, "UserService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("user.id", id),
		attribute.String("user.account_status", status),
	))
	defer span.End()

	err := s.repo.UpdateAccountStatus(ctx, id, status)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, errorbank.NotFound("user not found")
	}
	if err != nil {
		return nil, s.internal(span, "failed to update user", err)
	}

	s.dispatch(ctx, notification.Trigger{
		Event:         notification.EventSystem,
		SubjectUserID: id,
		Message:       "Your account status has been updated",
	})
	return s.Get(ctx, id)
}

// Notifications returns the notifications addressed to an existing user.
func (s *Service) Notifications(ctx context.Context, id int64) ([]entity.Notification, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.notifications.ListByUser(ctx, id)
}

func (s *Service) dispatch(ctx context.Context, trigger notification.Trigger) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, trigger)
}

func (s *Service) internal(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return errorbank.Internal(msg, errorbank.WithCause(err))
}
