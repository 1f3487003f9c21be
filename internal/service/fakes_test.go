package service

import (
	"context"
	"sync"
	"time"

	"github.com/penzflow/penzflow-sales-service/internal/config"
	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/models"
	"github.com/penzflow/penzflow-sales-service/internal/pricing"
	"github.com/penzflow/penzflow-sales-service/internal/repository"
)

type memoryOrders struct {
	mu        sync.Mutex
	orders    map[string]*models.Order
	conflicts int
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{orders: make(map[string]*models.Order)}
}

func (m *memoryOrders) Create(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return errors.ErrConflict
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *memoryOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memoryOrders) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == orderNumber {
			cp := *o
			return &cp, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (m *memoryOrders) List(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Order, 0)
	for _, o := range m.orders {
		if filter.CustomerID != 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	total := len(out)
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (m *memoryOrders) UpdateStatus(ctx context.Context, id string, change *repository.StatusChange) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	if o.Status != change.From {
		return nil, errors.ErrConflict
	}
	o.Status = change.To
	if change.Notes != "" {
		o.Notes = change.Notes
	}
	if change.ApprovedBy != "" {
		o.ApprovedBy = change.ApprovedBy
	}
	o.UpdatedAt = change.At
	cp := *o
	return &cp, nil
}

type memoryProducts map[int64]*models.Product

func (m memoryProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return p, nil
}

func (m memoryProducts) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	for _, p := range m {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (m memoryProducts) List(ctx context.Context, filter *models.ProductListFilter) ([]*models.Product, error) {
	out := make([]*models.Product, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	return out, nil
}

type memoryCustomers map[int64]*models.Customer

func (m memoryCustomers) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	c, ok := m[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return c, nil
}

type memoryUsers map[string]*models.User

func (m memoryUsers) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	if u, ok := m[username]; ok && password == "secret" {
		return u, nil
	}
	return nil, errors.ErrUnauthorized
}

func (m memoryUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := m[username]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return u, nil
}

func (m memoryUsers) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []string
	changed []string
	err     error
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, order.ID)
	return p.err
}

func (p *recordingPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, string(previous)+"->"+string(order.Status))
	return p.err
}

type countingRecorder struct {
	quotes    map[string]int
	rejected  map[string]int
	created   map[string]int
	statusChg int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		quotes:   map[string]int{},
		rejected: map[string]int{},
		created:  map[string]int{},
	}
}

func (r *countingRecorder) QuoteComputed(outcome string)  { r.quotes[outcome]++ }
func (r *countingRecorder) PricingRejected(kind string)   { r.rejected[kind]++ }
func (r *countingRecorder) OrderCreated(channel string)   { r.created[channel]++ }
func (r *countingRecorder) StatusChanged(from, to string) { r.statusChg++ }

type fixture struct {
	svc       *OrderService
	orders    *memoryOrders
	publisher *recordingPublisher
	recorder  *countingRecorder
}

func newFixture(t interface{ Fatalf(string, ...interface{}) }) *fixture {
	cfg := config.DefaultPricing()
	tiers, err := cfg.TierTable()
	if err != nil {
		t.Fatalf("tiers: %v", err)
	}
	policy, err := NewApprovalPolicy(cfg.ApprovalRule)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}

	products := memoryProducts{
		1:  {ID: 1, SKU: "PRD001", Name: "Laptop Pro", Price: 14999000},
		3:  {ID: 3, SKU: "PRD003", Name: "USB Cable", Price: 3000},
		4:  {ID: 4, SKU: "PRD004", Name: "Monitor Stand", Price: 5000},
		10: {ID: 10, SKU: "PRD010", Name: "Paper Ream", Price: 15000},
	}
	customers := memoryCustomers{
		1: {ID: 1, Name: "Budi Santoso", Company: "PT Teknologi Maju"},
	}

	users := memoryUsers{
		"budi":  {ID: 2, Username: "budi", Role: RoleSalesman},
		"sari":  {ID: 3, Username: "sari", Role: RoleSalesManager},
		"admin": {ID: 1, Username: "admin", Role: RoleAdministrator},
	}

	f := &fixture{
		orders:    newMemoryOrders(),
		publisher: &recordingPublisher{},
		recorder:  newCountingRecorder(),
	}
	f.svc = NewOrderService(f.orders, products, customers, users, pricing.NewCalculator(tiers), policy, f.publisher, f.recorder, cfg)
	f.svc.now = func() time.Time { return time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC) }
	return f
}
