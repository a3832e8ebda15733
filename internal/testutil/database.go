package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

// NewConnections opens an isolated in-memory sqlite database with the full schema applied.
// The database lives until the test finishes.
func NewConnections(t *testing.T) *database.Connections {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, database.CreateSchema(context.Background(), db))
	return database.NewConnections(db)
}

// InsertUser stores a user with the given role and returns it.
func InsertUser(t *testing.T, conns *database.Connections, email, role string) *entity.User {
	t.Helper()

	now := time.Now().UTC()
	user := &entity.User{
		FullName:      "Test " + role,
		Email:         email,
		Password:      "x",
		Role:          role,
		AccountStatus: entity.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := conns.Writer.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)
	return user
}

// InsertService stores a catalog service and returns it.
func InsertService(t *testing.T, conns *database.Connections, name string, price float64) *entity.CatalogService {
	t.Helper()

	svc := &entity.CatalogService{Name: name, Price: price}
	_, err := conns.Writer.NewInsert().Model(svc).Exec(context.Background())
	require.NoError(t, err)
	return svc
}

// InsertOrder stores an order verbatim, bypassing number generation.
func InsertOrder(t *testing.T, conns *database.Connections, order *entity.Order) *entity.Order {
	t.Helper()

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	if order.Status == "" {
		order.Status = entity.OrderStatusPending
	}
	if order.Priority == "" {
		order.Priority = entity.PriorityMedium
	}
	_, err := conns.Writer.NewInsert().Model(order).Exec(context.Background())
	require.NoError(t, err)
	return order
}
