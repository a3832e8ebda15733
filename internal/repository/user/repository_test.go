package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/testutil"
)

func TestFirstByRole(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	_, err := repo.FirstByRole(ctx, entity.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)

	testutil.InsertUser(t, conns, "u1@example.com", entity.RoleUser)
	first := testutil.InsertUser(t, conns, "a1@example.com", entity.RoleAdmin)
	testutil.InsertUser(t, conns, "a2@example.com", entity.RoleAdmin)

	admin, err := repo.FirstByRole(ctx, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, first.ID, admin.ID)
}

func TestCreateDuplicateEmail(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	u := &entity.User{FullName: "A", Email: "a@example.com", Password: "h", Role: entity.RoleUser, AccountStatus: entity.AccountStatusActive}
	require.NoError(t, repo.Create(ctx, u))

	dup := &entity.User{FullName: "B", Email: "a@example.com", Password: "h", Role: entity.RoleUser, AccountStatus: entity.AccountStatusActive}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrConflict)

	byEmail, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestListAndUpdates(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	testutil.InsertUser(t, conns, "admin@example.com", entity.RoleAdmin)
	customer := testutil.InsertUser(t, conns, "c@example.com", entity.RoleUser)

	users, err := repo.ListExcludingRole(ctx, entity.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, customer.ID, users[0].ID)

	require.NoError(t, repo.UpdateAccountStatus(ctx, customer.ID, "suspended"))
	require.NoError(t, repo.TouchLastLogin(ctx, customer.ID, time.Now()))

	reloaded, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "suspended", reloaded.AccountStatus)
	assert.NotNil(t, reloaded.LastLogin)

	assert.ErrorIs(t, repo.UpdateAccountStatus(ctx, 9999, "active"), ErrNotFound)
}
