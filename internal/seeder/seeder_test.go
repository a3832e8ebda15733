package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/orderdesk/internal/entity"
	orderrepo "github.com/Additional-Code/orderdesk/internal/repository/order"
	userrepo "github.com/Additional-Code/orderdesk/internal/repository/user"
	"github.com/Additional-Code/orderdesk/internal/testutil"
)

func TestRunSeedsDataset(t *testing.T) {
	conns := testutil.NewConnections(t)
	users := userrepo.NewRepository(conns)
	s := New(conns, users, orderrepo.NewRepository(conns), zap.NewNop())
	s.bcryptCost = bcrypt.MinCost
	ctx := context.Background()

	opts := DefaultOptions()
	opts.Seed = 42
	summary, err := s.Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, len(catalog), summary.Services)
	assert.Equal(t, opts.Orders, summary.Orders)
	assert.GreaterOrEqual(t, summary.Users, 2)

	admin, err := users.FirstByRole(ctx, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, opts.AdminEmail, admin.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(opts.AdminPassword)))

	orders, err := orderrepo.NewRepository(conns).List(ctx, orderrepo.Filter{})
	require.NoError(t, err)
	require.Len(t, orders, opts.Orders)
	for _, o := range orders {
		assert.Regexp(t, `^SR-\d{4}-\d{3}$`, o.OrderNumber)
		assert.Equal(t, entity.OrderStatusPending, o.Status)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	conns := testutil.NewConnections(t)
	s := New(conns, userrepo.NewRepository(conns), orderrepo.NewRepository(conns), zap.NewNop())
	s.bcryptCost = bcrypt.MinCost
	ctx := context.Background()

	opts := Options{AdminEmail: "root@example.com", AdminPassword: "secret", Users: 1, Orders: 1, Seed: 1}
	_, err := s.Run(ctx, opts)
	require.NoError(t, err)

	opts.Seed = 2
	second, err := s.Run(ctx, opts)
	require.NoError(t, err)
	assert.Zero(t, second.Services)
	assert.Equal(t, 1, second.Users)
	assert.Equal(t, 1, second.Orders)
}
