package repository

import (
	"context"
	"time"

	"github.com/penzflow/penzflow-sales-service/internal/models"
)

// OrderRepository persists sales orders with their lines.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error)
	UpdateStatus(ctx context.Context, id string, change *StatusChange) (*models.Order, error)
}

// StatusChange is applied by UpdateStatus. From guards against a concurrent
// transition: the update only matches while the stored status equals From.
type StatusChange struct {
	From       models.OrderStatus
	To         models.OrderStatus
	Notes      string
	ApprovedBy string
	At         time.Time
}

// ProductRepository reads the product catalog.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, filter *models.ProductListFilter) ([]*models.Product, error)
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
}

type UserRepository interface {
	FindByCredentials(ctx context.Context, username, password string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// ProductCache stores catalog entries. Get returns (nil, nil) on a miss.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
}

var (
	_ OrderRepository    = (*PostgresOrderRepository)(nil)
	_ ProductRepository  = (*PostgresProductRepository)(nil)
	_ ProductRepository  = (*CachedProductCatalog)(nil)
	_ CustomerRepository = (*PostgresCustomerRepository)(nil)
	_ UserRepository     = (*PostgresUserRepository)(nil)
	_ ProductCache       = (*RedisProductCache)(nil)
)
