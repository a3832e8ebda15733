package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/orderdesk/internal/auth"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
	notificationrepo "github.com/Additional-Code/orderdesk/internal/repository/notification"
	userrepo "github.com/Additional-Code/orderdesk/internal/repository/user"
	"github.com/Additional-Code/orderdesk/internal/service/notification"
	"github.com/Additional-Code/orderdesk/internal/testutil"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func newTestService(t *testing.T) (*Service, *database.Connections, *auth.Issuer) {
	t.Helper()

	conns := testutil.NewConnections(t)
	users := userrepo.NewRepository(conns)
	store := notificationrepo.NewRepository(conns)

	var cfg config.Config
	cfg.Auth = config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour, Issuer: "orderdesk"}
	issuer := auth.NewIssuer(cfg)

	svc := NewService(Params{
		Repository:    users,
		Dispatcher:    notification.NewDispatcher(store, users, nil),
		Notifications: notification.NewService(store, nil),
		Issuer:        issuer,
	})
	svc.bcryptCost = bcrypt.MinCost
	return svc, conns, issuer
}

func register(t *testing.T, svc *Service, email string) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Jane Doe",
		Email:    email,
		Password: "pa55word",
		Phone:    "+15550100",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterHashesPasswordAndNotifiesAdmin(t *testing.T) {
	svc, conns, _ := newTestService(t)
	ctx := context.Background()
	admin := testutil.InsertUser(t, conns, "admin@example.com", entity.RoleAdmin)

	u := register(t, svc, "Jane@Example.com")
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NotEqual(t, "pa55word", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pa55word")))

	inbox, err := svc.notifications.ListByUser(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, string(notification.EventUserRegistered), inbox[0].Type)
	assert.Equal(t, "New user with email jane@example.com has been registered", inbox[0].Message)
}

func TestRegisterWithoutAdminSkipsNotification(t *testing.T) {
	svc, conns, _ := newTestService(t)

	u := register(t, svc, "solo@example.com")

	n, err := conns.Reader.NewSelect().Model((*entity.Notification)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Greater(t, u.ID, int64(0))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "x", Phone: "1"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	_, err = svc.Register(ctx, RegisterInput{FullName: "A", Email: "not-an-email", Password: "x", Phone: "1"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	register(t, svc, "dup@example.com")
	_, err = svc.Register(ctx, RegisterInput{FullName: "B", Email: "dup@example.com", Password: "y", Phone: "2"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestLogin(t *testing.T) {
	svc, _, issuer := newTestService(t)
	ctx := context.Background()
	u := register(t, svc, "jane@example.com")

	session, err := svc.Login(ctx, "jane@example.com", "pa55word")
	require.NoError(t, err)
	require.NotNil(t, session.User.LastLogin)

	p, err := issuer.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, entity.RoleUser, p.Role)

	_, err = svc.Login(ctx, "jane@example.com", "wrong")
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
	_, err = svc.Login(ctx, "nobody@example.com", "pa55word")
	assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	_, err = svc.UpdateStatus(ctx, u.ID, "suspended")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "jane@example.com", "pa55word")
	assert.True(t, errorbank.IsKind(err, errorbank.KindUnauthorized))
}

func TestUpdateStatusNotifiesAffectedUser(t *testing.T) {
	svc, conns, _ := newTestService(t)
	ctx := context.Background()
	testutil.InsertUser(t, conns, "first@example.com", entity.RoleUser)
	u := register(t, svc, "jane@example.com")

	updated, err := svc.UpdateStatus(ctx, u.ID, "Suspended")
	require.NoError(t, err)
	assert.Equal(t, "suspended", updated.AccountStatus)

	inbox, err := svc.Notifications(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, string(notification.EventSystem), inbox[0].Type)

	_, err = svc.UpdateStatus(ctx, 999, "active")
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
	_, err = svc.Notifications(ctx, 999)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestListExcludesAdmins(t *testing.T) {
	svc, conns, _ := newTestService(t)
	testutil.InsertUser(t, conns, "admin@example.com", entity.RoleAdmin)
	register(t, svc, "jane@example.com")

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "jane@example.com", users[0].Email)
}
