package handlers

import (
	"github.com/penzflow/penzflow-sales-service/internal/format"
	"github.com/penzflow/penzflow-sales-service/internal/models"
	"github.com/penzflow/penzflow-sales-service/internal/pricing"
	"github.com/penzflow/penzflow-sales-service/internal/service"
)

type formattedTotals struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discount_amount"`
	TaxableAmount  string `json:"taxable_amount"`
	TaxAmount      string `json:"tax_amount"`
	GrandTotal     string `json:"grand_total"`
	OrderDate      string `json:"order_date,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

func formatTotals(t pricing.Totals, currency string) formattedTotals {
	return formattedTotals{
		Subtotal:       format.Currency(t.Subtotal, currency),
		DiscountAmount: format.Currency(t.DiscountAmount, currency),
		TaxableAmount:  format.Currency(t.TaxableAmount, currency),
		TaxAmount:      format.Currency(t.TaxAmount, currency),
		GrandTotal:     format.Currency(t.GrandTotal, currency),
	}
}

type orderResponse struct {
	*models.Order
	Formatted formattedTotals `json:"formatted"`
}

func newOrderResponse(order *models.Order) orderResponse {
	f := formatTotals(pricing.Totals{
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		TaxableAmount:  order.TaxableAmount,
		TaxAmount:      order.TaxAmount,
		GrandTotal:     order.TotalAmount,
	}, order.Currency)
	f.OrderDate = format.Date(order.OrderDate)
	if !order.CreatedAt.IsZero() {
		f.CreatedAt = format.DateTime(order.CreatedAt)
	}
	return orderResponse{Order: order, Formatted: f}
}

type quoteLine struct {
	ProductID       int64   `json:"product_id"`
	SKU             string  `json:"sku"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	BasePrice       int64   `json:"base_price"`
	TierMinQuantity int     `json:"tier_min_quantity"`
	TierDiscount    float64 `json:"tier_discount_percent"`
	UnitPrice       int64   `json:"unit_price"`
	LineTotal       int64   `json:"line_total"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  int64   `json:"discount_amount"`
	NetTotal        int64   `json:"net_total"`
}

type quoteResponse struct {
	Currency         string          `json:"currency"`
	Lines            []quoteLine     `json:"lines"`
	DiscountPercent  float64         `json:"discount_percent"`
	TaxPercent       float64         `json:"tax_percent"`
	Totals           pricing.Totals  `json:"totals"`
	RequiresApproval bool            `json:"requires_approval"`
	Formatted        formattedTotals `json:"formatted"`
}

func newQuoteResponse(p *service.PricedOrder) quoteResponse {
	q := p.Quote
	lines := make([]quoteLine, len(q.Lines))
	for i, l := range q.Lines {
		product := p.Products[i]
		lines[i] = quoteLine{
			ProductID:       product.ID,
			SKU:             product.SKU,
			ProductName:     product.Name,
			Quantity:        l.Quantity,
			BasePrice:       l.BasePrice,
			TierMinQuantity: l.Tier.MinQuantity,
			TierDiscount:    tierPercent(l.Tier),
			UnitPrice:       l.EffectivePrice,
			LineTotal:       l.LineTotal,
			DiscountPercent: l.DiscountPercent.InexactFloat64(),
			DiscountAmount:  l.DiscountAmount,
			NetTotal:        l.NetTotal,
		}
	}

	return quoteResponse{
		Currency:         p.Currency,
		Lines:            lines,
		DiscountPercent:  q.Adjustments.DiscountPercent.InexactFloat64(),
		TaxPercent:       q.Adjustments.TaxPercent.InexactFloat64(),
		Totals:           q.Totals,
		RequiresApproval: p.RequiresApproval,
		Formatted:        formatTotals(q.Totals, p.Currency),
	}
}

type productResponse struct {
	*models.Product
	StockStatus    string `json:"stock_status"`
	FormattedPrice string `json:"formatted_price"`
}

func newProductResponse(p *models.Product, currency string) productResponse {
	return productResponse{
		Product:        p,
		StockStatus:    p.StockStatus(),
		FormattedPrice: format.Currency(p.Price, currency),
	}
}

type customerResponse struct {
	*models.Customer
	FormattedPhone string `json:"formatted_phone,omitempty"`
}

func newCustomerResponse(c *models.Customer) customerResponse {
	resp := customerResponse{Customer: c}
	if c.Phone != "" {
		resp.FormattedPhone = format.Phone(c.Phone)
	}
	return resp
}

func tierPercent(t pricing.Tier) float64 {
	return t.Discount.Shift(2).InexactFloat64()
}
