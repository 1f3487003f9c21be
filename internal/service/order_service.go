package service

import (
	"context"
	"fmt"
	"time"

	"github.com/penzflow/penzflow-sales-service/internal/config"
	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
	"github.com/penzflow/penzflow-sales-service/internal/pricing"
	"github.com/penzflow/penzflow-sales-service/internal/repository"
)

const orderNumberAttempts = 3

// EventPublisher announces order changes.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
}

// Recorder receives business metrics.
type Recorder interface {
	QuoteComputed(outcome string)
	PricingRejected(kind string)
	OrderCreated(channel string)
	StatusChanged(from, to string)
}

type nopRecorder struct{}

func (nopRecorder) QuoteComputed(string)         {}
func (nopRecorder) PricingRejected(string)       {}
func (nopRecorder) OrderCreated(string)          {}
func (nopRecorder) StatusChanged(string, string) {}

// PricedOrder is a quote together with the catalog entries it was built from.
type PricedOrder struct {
	Quote            *pricing.Quote
	Products         []*models.Product
	Currency         string
	RequiresApproval bool
}

// OrderService runs the sales order workflow on top of the pricing
// calculator.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	calc      *pricing.Calculator
	policy    *ApprovalPolicy
	publisher EventPublisher
	recorder  Recorder
	pricing   config.PricingConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	users repository.UserRepository,
	calc *pricing.Calculator,
	policy *ApprovalPolicy,
	publisher EventPublisher,
	recorder Recorder,
	pricingCfg config.PricingConfig,
) *OrderService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &OrderService{
		orders:    orders,
		products:  products,
		customers: customers,
		users:     users,
		calc:      calc,
		policy:    policy,
		publisher: publisher,
		recorder:  recorder,
		pricing:   pricingCfg,
		logger:    logging.NewLogger("order-service"),
		now:       time.Now,
	}
}

// Tiers returns the canonical tier table.
func (s *OrderService) Tiers() pricing.Tiers {
	return s.calc.Tiers()
}

// Quote prices the request against current catalog prices. Nothing is
// persisted.
func (s *OrderService) Quote(ctx context.Context, req *models.QuoteRequest) (*PricedOrder, error) {
	if err := ValidateQuoteRequest(req); err != nil {
		return nil, err
	}

	priced, err := s.price(ctx, req.Items, req.DiscountPercent, req.TaxPercent)
	if err != nil {
		return nil, err
	}

	facts := ApprovalFacts{
		DiscountPercent: req.DiscountPercent,
		TaxPercent:      priced.Quote.Adjustments.TaxPercent.InexactFloat64(),
		Subtotal:        priced.Quote.Totals.Subtotal,
		GrandTotal:      priced.Quote.Totals.GrandTotal,
		ItemCount:       len(priced.Quote.Lines),
		Channel:         channelOrDefault(req.Channel),
	}
	if priced.RequiresApproval, err = s.policy.RequiresApproval(facts); err != nil {
		return nil, err
	}

	return priced, nil
}

func (s *OrderService) price(ctx context.Context, items []models.OrderItemRequest, discount float64, tax *float64) (*PricedOrder, error) {
	products := make([]*models.Product, len(items))
	lines := make([]pricing.LineItem, len(items))
	for i, item := range items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "product not found")
		}
		if err != nil {
			return nil, err
		}
		products[i] = product
		lines[i] = pricing.LineItem{
			ProductRef:      product.SKU,
			Quantity:        item.Quantity,
			UnitPrice:       product.Price,
			DiscountPercent: pricing.Percent(item.DiscountPercent),
		}
	}

	taxPercent := s.pricing.DefaultTaxPercent
	if tax != nil {
		taxPercent = *tax
	}
	adj := pricing.Adjustments{
		DiscountPercent: pricing.Percent(discount),
		TaxPercent:      pricing.Percent(taxPercent),
	}

	quote, err := s.calc.Quote(lines, adj)
	if err != nil {
		s.recorder.QuoteComputed("rejected")
		s.recorder.PricingRejected(pricing.Code(err))
		s.logger.Debug("Quote rejected", logging.Fields{
			"code":  pricing.Code(err),
			"error": err.Error(),
		})
		return nil, err
	}
	s.recorder.QuoteComputed("ok")

	return &PricedOrder{Quote: quote, Products: products, Currency: s.pricing.Currency}, nil
}

// CreateOrder prices and stores a new order. A submitted order goes
// straight through the approval policy; otherwise it stays a draft.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	s.logger.Info("Creating order", logging.Fields{
		"customer_id": req.CustomerID,
		"channel":     req.Channel,
		"item_count":  len(req.Items),
	})

	if err := ValidateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewValidationError("customer_id", "customer not found")
		}
		return nil, err
	}

	priced, err := s.price(ctx, req.Items, req.DiscountPercent, req.TaxPercent)
	if err != nil {
		return nil, err
	}

	now := s.now()
	orderDate := now
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order := buildOrder(priced, req, orderDate, now)

	requiresApproval, err := s.policy.RequiresApproval(factsFor(order))
	if err != nil {
		return nil, err
	}
	order.RequiresApproval = requiresApproval
	if req.Submit {
		order.Status = submittedStatus(requiresApproval)
	}

	if err := s.insert(ctx, order); err != nil {
		s.logger.Error("Failed to create order", logging.Fields{
			"customer_id": req.CustomerID,
			"error":       err.Error(),
		})
		return nil, err
	}

	s.recorder.OrderCreated(string(order.Channel))

	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Error("Failed to publish order created event", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}

	s.logger.Info("Order created successfully", logging.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"total":        order.TotalAmount,
	})

	return order, nil
}

// insert retries with a fresh order number when the generated one collides.
func (s *OrderService) insert(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = repository.GenerateOrderNumber(order.Channel, order.OrderDate)
		err = s.orders.Create(ctx, order)
		if !errors.Is(err, errors.ErrConflict) {
			return err
		}
		s.logger.Warn("Order number collision", logging.Fields{
			"order_number": order.OrderNumber,
			"attempt":      attempt + 1,
		})
	}
	return err
}

func buildOrder(priced *PricedOrder, req *models.CreateOrderRequest, orderDate, now time.Time) *models.Order {
	q := priced.Quote
	lines := make([]models.OrderLine, len(q.Lines))
	for i, l := range q.Lines {
		p := priced.Products[i]
		lines[i] = models.OrderLine{
			ProductID:       p.ID,
			SKU:             p.SKU,
			ProductName:     p.Name,
			Quantity:        l.Quantity,
			BasePrice:       l.BasePrice,
			UnitPrice:       l.EffectivePrice,
			TierMinQuantity: l.Tier.MinQuantity,
			DiscountPercent: l.DiscountPercent.InexactFloat64(),
			DiscountAmount:  l.DiscountAmount,
			TotalPrice:      l.NetTotal,
		}
	}

	return &models.Order{
		ID:              repository.NewOrderID(),
		CustomerID:      req.CustomerID,
		Channel:         channelOrDefault(req.Channel),
		Status:          models.OrderStatusDraft,
		OrderDate:       orderDate,
		Currency:        priced.Currency,
		Lines:           lines,
		DiscountPercent: q.Adjustments.DiscountPercent.InexactFloat64(),
		TaxPercent:      q.Adjustments.TaxPercent.InexactFloat64(),
		Subtotal:        q.Totals.Subtotal,
		DiscountAmount:  q.Totals.DiscountAmount,
		TaxableAmount:   q.Totals.TaxableAmount,
		TaxAmount:       q.Totals.TaxAmount,
		TotalAmount:     q.Totals.GrandTotal,
		PaymentMethod:   req.PaymentMethod,
		PaymentTerms:    req.PaymentTerms,
		SalesRep:        req.SalesRep,
		VisitRef:        req.VisitRef,
		Notes:           SanitizeOrderNotes(req.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func channelOrDefault(c models.Channel) models.Channel {
	if c == "" {
		return models.ChannelSales
	}
	return c
}

func submittedStatus(requiresApproval bool) models.OrderStatus {
	if requiresApproval {
		return models.OrderStatusPendingApproval
	}
	return models.OrderStatusApproved
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.logger.Debug("Getting order", logging.Fields{"order_id": id})
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.orders.GetByNumber(ctx, orderNumber)
}

// ListOrders returns one page of orders and the total match count.
func (s *OrderService) ListOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error) {
	if err := ValidateOrderListFilter(filter); err != nil {
		return nil, 0, err
	}
	return s.orders.List(ctx, filter)
}

// UpdateOrderStatus moves an order through fulfilment or cancels it.
// Approval states are reached only through SubmitOrder and DecideOrder.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	s.logger.Info("Updating order status", logging.Fields{
		"order_id":   id,
		"new_status": req.Status,
	})

	if err := ValidateUpdateOrderStatusRequest(req); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == models.OrderStatusCancelled && !order.CanCancel() {
		return nil, errors.NewValidationError("status", fmt.Sprintf("order in status %s can no longer be cancelled", order.Status))
	}

	return s.transition(ctx, order, req.Status, SanitizeOrderNotes(req.Notes), "")
}

// SubmitOrder sends a draft through the approval policy: it becomes
// pending_approval when the rule matches and approved otherwise.
func (s *OrderService) SubmitOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsEditable() {
		return nil, errors.NewValidationError("status", fmt.Sprintf("only draft orders can be submitted, order is %s", order.Status))
	}

	requiresApproval, err := s.policy.RequiresApproval(factsFor(order))
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, order, submittedStatus(requiresApproval), "", "")
}

// DecideOrder applies a manager's approval or rejection to an order awaiting
// approval. The approver must be a known user whose stored role is at least
// sales_manager.
func (s *OrderService) DecideOrder(ctx context.Context, id string, decision *models.ApprovalDecision) (*models.Order, error) {
	s.logger.Info("Applying approval decision", logging.Fields{
		"order_id": id,
		"approve":  decision.Approve,
		"approver": decision.Approver,
	})

	if decision.Approver == "" {
		return nil, errors.NewValidationError("approver", "approver is required")
	}

	approver, err := s.users.GetByUsername(ctx, decision.Approver)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, fmt.Errorf("approver %q is not a user: %w", decision.Approver, errors.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	if !HasPermission(approver.Role, RoleSalesManager) {
		return nil, fmt.Errorf("role %q cannot decide approvals: %w", approver.Role, errors.ErrForbidden)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPendingApproval {
		return nil, errors.NewValidationError("status", fmt.Sprintf("order is %s, not pending approval", order.Status))
	}

	to := models.OrderStatusRejected
	if decision.Approve {
		to = models.OrderStatusApproved
	}
	return s.transition(ctx, order, to, SanitizeOrderNotes(decision.Notes), approver.Username)
}

func (s *OrderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus, notes, approvedBy string) (*models.Order, error) {
	previous := order.Status
	if !isValidStatusTransition(previous, to) {
		return nil, errors.NewValidationError("status", fmt.Sprintf(
			"invalid status transition from %s to %s",
			previous,
			to,
		))
	}

	updated, err := s.orders.UpdateStatus(ctx, order.ID, &repository.StatusChange{
		From:       previous,
		To:         to,
		Notes:      notes,
		ApprovedBy: approvedBy,
		At:         s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.recorder.StatusChanged(string(previous), string(to))

	if err := s.publisher.PublishOrderStatusChanged(ctx, updated, previous); err != nil {
		s.logger.Error("Failed to publish status change event", logging.Fields{
			"order_id": updated.ID,
			"error":    err.Error(),
		})
	}

	return updated, nil
}
