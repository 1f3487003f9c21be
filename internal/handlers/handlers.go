package handlers

import (
	"context"

	"github.com/penzflow/penzflow-sales-service/internal/config"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
	"github.com/penzflow/penzflow-sales-service/internal/pricing"
	"github.com/penzflow/penzflow-sales-service/internal/repository"
	"github.com/penzflow/penzflow-sales-service/internal/service"
)

// OrderService is the order workflow the HTTP API drives.
type OrderService interface {
	Quote(ctx context.Context, req *models.QuoteRequest) (*service.PricedOrder, error)
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id string, req *models.UpdateOrderStatusRequest) (*models.Order, error)
	SubmitOrder(ctx context.Context, id string) (*models.Order, error)
	DecideOrder(ctx context.Context, id string, decision *models.ApprovalDecision) (*models.Order, error)
	Tiers() pricing.Tiers
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
}

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handlers holds all HTTP handlers for the sales service.
type Handlers struct {
	orderService OrderService
	authService  AuthService
	products     repository.ProductRepository
	customers    repository.CustomerRepository
	checks       []ReadinessCheck
	config       *config.Config
	logger       *logging.Logger
}

func NewHandlers(
	orderService OrderService,
	authService AuthService,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	cfg *config.Config,
	checks ...ReadinessCheck,
) *Handlers {
	return &Handlers{
		orderService: orderService,
		authService:  authService,
		products:     products,
		customers:    customers,
		checks:       checks,
		config:       cfg,
		logger:       logging.NewLogger("handlers"),
	}
}

func (h *Handlers) currency() string {
	if h.config == nil || h.config.Pricing.Currency == "" {
		return "IDR"
	}
	return h.config.Pricing.Currency
}
