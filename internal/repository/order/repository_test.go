package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/testutil"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.March, 10, 9, 0, 0, 0, time.UTC)
	}
}

var seededAt = time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)

func newOrder(userID, serviceID int64) *entity.Order {
	return &entity.Order{
		UserID:    userID,
		ServiceID: serviceID,
		Budget:    100,
		Status:    entity.OrderStatusPending,
		Priority:  entity.PriorityMedium,
	}
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	repo.now = fixedClock(2025)
	ctx := context.Background()

	first := newOrder(1, 1)
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, "SR-2025-001", first.OrderNumber)
	assert.Greater(t, first.ID, int64(0))

	second := newOrder(1, 1)
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, "SR-2025-002", second.OrderNumber)
}

func TestCreateContinuesFromLatestOrder(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-007", UserID: 1, ServiceID: 1, Budget: 10, CreatedAt: seededAt})

	repo.now = fixedClock(2025)
	next := newOrder(1, 1)
	require.NoError(t, repo.Create(ctx, next))
	assert.Equal(t, "SR-2025-008", next.OrderNumber)

	repo.now = fixedClock(2026)
	rollover := newOrder(1, 1)
	require.NoError(t, repo.Create(ctx, rollover))
	assert.Equal(t, "SR-2026-009", rollover.OrderNumber)
}

func TestCreateRejectsDuplicateNumber(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	repo.now = fixedClock(2025)
	ctx := context.Background()

	// the newest row carries an older number, so the generated number collides
	testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-002", UserID: 1, ServiceID: 1, Budget: 10, CreatedAt: seededAt})
	testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-001", UserID: 1, ServiceID: 1, Budget: 10, CreatedAt: seededAt.Add(time.Hour)})

	err := repo.Create(ctx, newOrder(1, 1))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateConcurrentNumbersAreUnique(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	repo.now = fixedClock(2025)
	ctx := context.Background()

	testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-001", UserID: 1, ServiceID: 1, Budget: 10, CreatedAt: seededAt})

	const workers = 8
	numbers := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := newOrder(1, 1)
			errs[i] = repo.Create(ctx, o)
			numbers[i] = o.OrderNumber
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, workers)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[numbers[i]], "duplicate number %s", numbers[i])
		seen[numbers[i]] = true
	}
	assert.True(t, seen["SR-2025-002"])
	assert.True(t, seen["SR-2025-009"])
}

func TestGetByNumberAndID(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	stored := testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-010", UserID: 3, ServiceID: 2, Budget: 50, Attachments: []string{"brief.pdf"}})

	byNumber, err := repo.GetByNumber(ctx, "SR-2025-010")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, byNumber.ID)
	assert.Equal(t, []string{"brief.pdf"}, byNumber.Attachments)

	byID, err := repo.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "SR-2025-010", byID.OrderNumber)

	_, err = repo.GetByNumber(ctx, "SR-2025-999")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFilters(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	alice := testutil.InsertUser(t, conns, "alice@example.com", entity.RoleUser)
	bob := testutil.InsertUser(t, conns, "bob@example.com", entity.RoleUser)
	design := testutil.InsertService(t, conns, "Design", 300)

	testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-001", UserID: alice.ID, ServiceID: design.ID, Budget: 1})
	testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-002", UserID: alice.ID, ServiceID: design.ID, Budget: 1, Status: entity.OrderStatusApproved})
	testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-003", UserID: bob.ID, ServiceID: design.ID, Budget: 1})

	all, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := repo.List(ctx, Filter{Status: entity.OrderStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	alices, err := repo.List(ctx, Filter{UserID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, alices, 2)

	approved, err := repo.List(ctx, Filter{UserID: alice.ID, Status: entity.OrderStatusApproved, WithRelations: true})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "SR-2025-002", approved[0].OrderNumber)
	require.NotNil(t, approved[0].User)
	assert.Equal(t, alice.FullName, approved[0].User.FullName)
	require.NotNil(t, approved[0].Service)
	assert.Equal(t, "Design", approved[0].Service.Name)

	none, err := repo.List(ctx, Filter{UserID: bob.ID, Status: entity.OrderStatusApproved})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateStatusGuardsExpectedStatus(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-001", UserID: 1, ServiceID: 1, Budget: 1})

	updated, err := repo.UpdateStatus(ctx, "SR-2025-001", entity.OrderStatusPending, entity.OrderStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusApproved, updated.Status)

	_, err = repo.UpdateStatus(ctx, "SR-2025-001", entity.OrderStatusPending, entity.OrderStatusCanceled)
	assert.ErrorIs(t, err, ErrStaleStatus)

	_, err = repo.UpdateStatus(ctx, "SR-2025-404", entity.OrderStatusPending, entity.OrderStatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFieldsAndPriority(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	stored := testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-001", UserID: 1, ServiceID: 1, Budget: 1})

	stored.TotalAmount = 420
	require.NoError(t, repo.UpdateFields(ctx, stored, "total_amount"))

	reloaded, err := repo.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.InDelta(t, 420, reloaded.TotalAmount, 0.001)

	prioritized, err := repo.UpdatePriority(ctx, stored.ID, entity.PriorityUrgent)
	require.NoError(t, err)
	assert.Equal(t, entity.PriorityUrgent, prioritized.Priority)

	_, err = repo.UpdatePriority(ctx, 9999, entity.PriorityHigh)
	assert.ErrorIs(t, err, ErrNotFound)

	missing := &entity.Order{ID: 9999}
	assert.ErrorIs(t, repo.UpdateFields(ctx, missing, "total_amount"), ErrNotFound)
}

func TestDeleteByNumber(t *testing.T) {
	conns := testutil.NewConnections(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	testutil.InsertOrder(t, conns, &entity.Order{OrderNumber: "SR-2025-001", UserID: 1, ServiceID: 1, Budget: 1})

	require.NoError(t, repo.DeleteByNumber(ctx, "SR-2025-001"))

	_, err := repo.GetByNumber(ctx, "SR-2025-001")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteByNumber(ctx, "SR-2025-001"), ErrNotFound)
}
