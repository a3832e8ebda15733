package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// Models lists every table-backed entity in dependency order.
func Models() []any {
	return []any{
		(*entity.User)(nil),
		(*entity.CatalogService)(nil),
		(*entity.Order)(nil),
		(*entity.Notification)(nil),
	}
}

// CreateSchema creates missing tables straight from the bun models. Production databases
// are migrated with goose; this path serves sqlite development and test databases.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		name    string
		model   any
		columns []string
	}{
		{"idx_users_role", (*entity.User)(nil), []string{"role", "id"}},
		{"idx_orders_user_status", (*entity.Order)(nil), []string{"user_id", "status"}},
		{"idx_orders_created_at", (*entity.Order)(nil), []string{"created_at", "id"}},
		{"idx_notifications_user_status", (*entity.Notification)(nil), []string{"user_id", "status"}},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
