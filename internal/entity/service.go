package entity

import "github.com/uptrace/bun"

// CatalogService is an offering customers can order.
type CatalogService struct {
	bun.BaseModel `bun:"table:services,alias:s"`

	ID          int64   `bun:",pk,autoincrement"`
	Name        string  `bun:"name,notnull"`
	Description string  `bun:"description"`
	Price       float64 `bun:"price"`
}
