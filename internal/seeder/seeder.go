package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
	orderrepo "github.com/Additional-Code/orderdesk/internal/repository/order"
	userrepo "github.com/Additional-Code/orderdesk/internal/repository/user"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Options controls how much fake data a run produces.
type Options struct {
	AdminEmail    string
	AdminPassword string
	Users         int
	Orders        int
	Seed          uint64
}

// DefaultOptions seeds a small but usable local dataset.
func DefaultOptions() Options {
	return Options{
		AdminEmail:    "admin@orderdesk.local",
		AdminPassword: "admin123",
		Users:         5,
		Orders:        10,
	}
}

// Summary counts the rows a run inserted.
type Summary struct {
	Users    int
	Services int
	Orders   int
}

var catalog = []struct {
	name  string
	price float64
}{
	{"Web Development", 2500},
	{"Mobile App", 4000},
	{"UI/UX Design", 1200},
	{"SEO Audit", 600},
	{"Cloud Migration", 3500},
}

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	users  *userrepo.Repository
	orders *orderrepo.Repository
	logger *zap.Logger

	bcryptCost int
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, users *userrepo.Repository, orders *orderrepo.Repository, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:         conns.Writer,
		users:      users,
		orders:     orders,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Run seeds an admin, customers, the service catalog and orders. Existing admin and catalog
// rows are left untouched so the command can be re-run.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary
	faker := gofakeit.New(opts.Seed)

	created, err := s.admin(ctx, opts)
	if err != nil {
		return summary, err
	}
	if created {
		summary.Users++
	}

	customers := make([]*entity.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := s.customer(ctx, faker)
		if errors.Is(err, userrepo.ErrConflict) {
			continue
		}
		if err != nil {
			return summary, err
		}
		customers = append(customers, u)
	}
	summary.Users += len(customers)

	services, inserted, err := s.catalog(ctx)
	if err != nil {
		return summary, err
	}
	summary.Services = inserted

	if len(customers) > 0 && len(services) > 0 {
		for i := 0; i < opts.Orders; i++ {
			customer := customers[faker.Number(0, len(customers)-1)]
			service := services[faker.Number(0, len(services)-1)]
			if err := s.orders.Create(ctx, fakeOrder(faker, customer, service)); err != nil {
				return summary, fmt.Errorf("seed order: %w", err)
			}
			summary.Orders++
		}
	}

	if s.logger != nil {
		s.logger.Info("seed data applied",
			zap.Int("users", summary.Users),
			zap.Int("services", summary.Services),
			zap.Int("orders", summary.Orders),
		)
	}
	return summary, nil
}

func (s *Seeder) admin(ctx context.Context, opts Options) (bool, error) {
	if _, err := s.users.GetByEmail(ctx, opts.AdminEmail); err == nil {
		return false, nil
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), s.bcryptCost)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	admin := &entity.User{
		FullName:      "Administrator",
		Email:         opts.AdminEmail,
		Password:      string(hash),
		Role:          entity.RoleAdmin,
		AccountStatus: entity.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}

func (s *Seeder) customer(ctx context.Context, faker *gofakeit.Faker) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &entity.User{
		FullName:      faker.Name(),
		Email:         faker.Email(),
		Password:      string(hash),
		Phone:         faker.Phone(),
		Role:          entity.RoleUser,
		AccountStatus: entity.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Seeder) catalog(ctx context.Context) ([]entity.CatalogService, int, error) {
	var services []entity.CatalogService
	if err := s.db.NewSelect().Model(&services).OrderExpr("s.id ASC").Scan(ctx); err != nil {
		return nil, 0, err
	}
	if len(services) > 0 {
		return services, 0, nil
	}

	for _, item := range catalog {
		services = append(services, entity.CatalogService{
			Name:        item.name,
			Description: item.name + " delivered end to end",
			Price:       item.price,
		})
	}
	if _, err := s.db.NewInsert().Model(&services).Exec(ctx); err != nil {
		return nil, 0, fmt.Errorf("seed services: %w", err)
	}

	// reload so every row carries its generated id on all dialects
	inserted := len(services)
	services = services[:0]
	if err := s.db.NewSelect().Model(&services).OrderExpr("s.id ASC").Scan(ctx); err != nil {
		return nil, 0, err
	}
	return services, inserted, nil
}

func fakeOrder(faker *gofakeit.Faker, customer *entity.User, service entity.CatalogService) *entity.Order {
	deadline := time.Now().UTC().AddDate(0, 0, faker.Number(7, 90)).Truncate(24 * time.Hour)
	budget := faker.Price(service.Price/2, service.Price*2)
	return &entity.Order{
		UserID:                 customer.ID,
		ServiceID:              service.ID,
		ProjectName:            faker.AppName(),
		ProjectDescription:     faker.Sentence(12),
		AdditionalRequirements: faker.Sentence(6),
		Attachments:            []string{},
		Budget:                 budget,
		TotalAmount:            budget,
		Deadline:               &deadline,
		Status:                 entity.OrderStatusPending,
		Priority:               entity.Priority(faker.RandomString([]string{"low", "medium", "high", "urgent"})),
	}
}
