package models

import "time"

// OrderStatus is the lifecycle state of a sales order.
type OrderStatus string

const (
	OrderStatusDraft           OrderStatus = "draft"
	OrderStatusPendingApproval OrderStatus = "pending_approval"
	OrderStatusApproved        OrderStatus = "approved"
	OrderStatusRejected        OrderStatus = "rejected"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Channel is where the order was captured.
type Channel string

const (
	ChannelSales  Channel = "sales"
	ChannelMobile Channel = "mobile"
)

// Order is a persisted sales order header with its lines.
type Order struct {
	ID               string      `json:"id"`
	OrderNumber      string      `json:"order_number"`
	CustomerID       int64       `json:"customer_id"`
	Channel          Channel     `json:"channel"`
	Status           OrderStatus `json:"status"`
	OrderDate        time.Time   `json:"order_date"`
	Currency         string      `json:"currency"`
	Lines            []OrderLine `json:"lines"`
	DiscountPercent  float64     `json:"discount_percent"`
	TaxPercent       float64     `json:"tax_percent"`
	Subtotal         int64       `json:"subtotal"`
	DiscountAmount   int64       `json:"discount_amount"`
	TaxableAmount    int64       `json:"taxable_amount"`
	TaxAmount        int64       `json:"tax_amount"`
	TotalAmount      int64       `json:"total_amount"`
	PaymentMethod    string      `json:"payment_method,omitempty"`
	PaymentTerms     string      `json:"payment_terms,omitempty"`
	SalesRep         string      `json:"sales_rep,omitempty"`
	VisitRef         string      `json:"visit_ref,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	RequiresApproval bool        `json:"requires_approval"`
	ApprovedBy       string      `json:"approved_by,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// OrderLine is one persisted order item.
type OrderLine struct {
	ProductID       int64   `json:"product_id"`
	SKU             string  `json:"sku"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	BasePrice       int64   `json:"base_price"`
	UnitPrice       int64   `json:"unit_price"`
	TierMinQuantity int     `json:"tier_min_quantity"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  int64   `json:"discount_amount"`
	TotalPrice      int64   `json:"total_price"`
}

// CanCancel reports whether the order may still be cancelled.
func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusDraft, OrderStatusPendingApproval, OrderStatusApproved, OrderStatusProcessing:
		return true
	default:
		return false
	}
}

// IsEditable reports whether lines and adjustments may still change.
func (o *Order) IsEditable() bool {
	return o.Status == OrderStatusDraft
}

// OrderItemRequest is one requested line. Prices come from the catalog.
type OrderItemRequest struct {
	ProductID       int64   `json:"product_id"`
	Quantity        int     `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

// QuoteRequest prices items without persisting anything.
type QuoteRequest struct {
	Channel         Channel            `json:"channel"`
	Items           []OrderItemRequest `json:"items"`
	DiscountPercent float64            `json:"discount_percent"`
	TaxPercent      *float64           `json:"tax_percent"`
}

// CreateOrderRequest creates a sales or mobile order.
type CreateOrderRequest struct {
	CustomerID      int64              `json:"customer_id"`
	Channel         Channel            `json:"channel"`
	OrderDate       *time.Time         `json:"order_date"`
	Items           []OrderItemRequest `json:"items"`
	DiscountPercent float64            `json:"discount_percent"`
	TaxPercent      *float64           `json:"tax_percent"`
	PaymentMethod   string             `json:"payment_method"`
	PaymentTerms    string             `json:"payment_terms"`
	SalesRep        string             `json:"sales_rep"`
	VisitRef        string             `json:"visit_ref"`
	Notes           string             `json:"notes"`
	Submit          bool               `json:"submit"`
}

// UpdateOrderStatusRequest moves an order to a new status.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
	Notes  string      `json:"notes"`
}

// ApprovalDecision approves or rejects an order awaiting approval. Approver
// is a username; the approver's role is read from the users table.
type ApprovalDecision struct {
	Approve  bool   `json:"approve"`
	Approver string `json:"approver"`
	Notes    string `json:"notes"`
}

// OrderListFilter narrows ListOrders.
type OrderListFilter struct {
	CustomerID int64
	Status     *OrderStatus
	Channel    *Channel
	SalesRep   string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}
