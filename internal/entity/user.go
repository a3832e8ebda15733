package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Role names recognised by the notification dispatch policy.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AccountStatusActive is assigned to freshly registered users.
const AccountStatusActive = "active"

// User is an account that places or administers orders.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            int64      `bun:",pk,autoincrement"`
	FullName      string     `bun:"full_name,notnull"`
	Email         string     `bun:"email,notnull,unique"`
	Password      string     `bun:"password,notnull"`
	Phone         string     `bun:"phone"`
	Role          string     `bun:"role,notnull"`
	AccountStatus string     `bun:"account_status,notnull"`
	LastLogin     *time.Time `bun:"last_login"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero"`
}
