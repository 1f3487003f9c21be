// Package pricing computes order totals from line items, bulk pricing tiers
// and order-level discount and tax. Amounts are whole Rupiah; every rounding
// step is round-half-up so repeated computation is stable.
package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent converts a float percentage (e.g. 11 for 11%) to a decimal.
func Percent(p float64) decimal.Decimal {
	return decimal.NewFromFloat(p)
}

// LineItem is one product/quantity/price entry of an order being built.
// UnitPrice is the base catalog price; DiscountPercent is an optional
// per-line discount applied after the tier price.
type LineItem struct {
	ProductRef      string          `json:"product_ref"`
	Quantity        int             `json:"quantity"`
	UnitPrice       int64           `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// Adjustments are the order-level percentages supplied by the user.
type Adjustments struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
}

// Totals is the computed breakdown of an order.
type Totals struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	TaxableAmount  int64 `json:"taxable_amount"`
	TaxAmount      int64 `json:"tax_amount"`
	GrandTotal     int64 `json:"grand_total"`
}

// PricedLine is a LineItem after tier resolution.
type PricedLine struct {
	ProductRef      string          `json:"product_ref"`
	Quantity        int             `json:"quantity"`
	BasePrice       int64           `json:"base_price"`
	Tier            Tier            `json:"tier"`
	EffectivePrice  int64           `json:"effective_price"`
	LineTotal       int64           `json:"line_total"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  int64           `json:"discount_amount"`
	NetTotal        int64           `json:"net_total"`
}

// Quote is a fully priced order.
type Quote struct {
	Lines       []PricedLine `json:"lines"`
	Adjustments Adjustments  `json:"adjustments"`
	Totals      Totals       `json:"totals"`
}

// ResolveUnitPrice applies the tier matching quantity to baseUnitPrice.
func ResolveUnitPrice(baseUnitPrice int64, quantity int, tiers Tiers) (int64, error) {
	price, _, err := resolve(baseUnitPrice, quantity, tiers, -1)
	return price, err
}

func resolve(base int64, quantity int, tiers Tiers, line int) (int64, Tier, error) {
	if quantity < 1 {
		return 0, Tier{}, lineError(ErrInvalidQuantity, line, "quantity", quantity)
	}
	if base < 0 {
		return 0, Tier{}, lineError(ErrInvalidPrice, line, "unit_price", base)
	}

	tier := tiers.For(quantity)
	factor := decimal.NewFromInt(1).Sub(tier.Discount)
	price := decimal.NewFromInt(base).Mul(factor).Round(0).IntPart()
	return price, tier, nil
}

// ComputeLineTotal is effectivePrice × quantity. Callers pricing untrusted
// input go through checkedLineTotal, which rejects products beyond int64.
func ComputeLineTotal(effectivePrice int64, quantity int) int64 {
	return effectivePrice * int64(quantity)
}

func checkedLineTotal(effectivePrice int64, quantity int, line int) (int64, error) {
	if quantity > 0 && effectivePrice > math.MaxInt64/int64(quantity) {
		return 0, lineError(ErrAmountOverflow, line, "line_total", fmt.Sprintf("%d*%d", effectivePrice, quantity))
	}
	return ComputeLineTotal(effectivePrice, quantity), nil
}

// addAmounts sums two non-negative amounts, failing instead of wrapping.
func addAmounts(a, b int64, line int, field string) (int64, error) {
	if b > math.MaxInt64-a {
		return 0, lineError(ErrAmountOverflow, line, field, fmt.Sprintf("%d+%d", a, b))
	}
	return a + b, nil
}

// ComputeOrderTotals sums lines whose UnitPrice is already tier-resolved and
// applies the order discount, then tax on the discounted amount. Any invalid
// input fails the whole computation.
func ComputeOrderTotals(items []LineItem, adj Adjustments) (Totals, error) {
	if err := adj.validate(); err != nil {
		return Totals{}, err
	}

	var subtotal int64
	for i, item := range items {
		if item.Quantity < 1 {
			return Totals{}, lineError(ErrInvalidQuantity, i, "quantity", item.Quantity)
		}
		if item.UnitPrice < 0 {
			return Totals{}, lineError(ErrInvalidPrice, i, "unit_price", item.UnitPrice)
		}
		if !validPercent(item.DiscountPercent) {
			return Totals{}, lineError(ErrInvalidAdjustment, i, "discount_percent", item.DiscountPercent)
		}
		gross, err := checkedLineTotal(item.UnitPrice, item.Quantity, i)
		if err != nil {
			return Totals{}, err
		}
		if subtotal, err = addAmounts(subtotal, gross-percentOf(gross, item.DiscountPercent), i, "subtotal"); err != nil {
			return Totals{}, err
		}
	}

	discount := percentOf(subtotal, adj.DiscountPercent)
	taxable := subtotal - discount
	tax := percentOf(taxable, adj.TaxPercent)
	grand, err := addAmounts(taxable, tax, -1, "grand_total")
	if err != nil {
		return Totals{}, err
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		GrandTotal:     grand,
	}, nil
}

// Calculator prices orders against a fixed tier table. It holds no mutable
// state and may be shared between goroutines.
type Calculator struct {
	tiers Tiers
}

func NewCalculator(tiers Tiers) *Calculator {
	return &Calculator{tiers: tiers}
}

func (c *Calculator) Tiers() Tiers {
	return c.tiers
}

// PriceLines resolves the tier price of every item.
func (c *Calculator) PriceLines(items []LineItem) ([]PricedLine, error) {
	lines := make([]PricedLine, 0, len(items))
	for i, item := range items {
		price, tier, err := resolve(item.UnitPrice, item.Quantity, c.tiers, i)
		if err != nil {
			return nil, err
		}
		if !validPercent(item.DiscountPercent) {
			return nil, lineError(ErrInvalidAdjustment, i, "discount_percent", item.DiscountPercent)
		}
		gross, err := checkedLineTotal(price, item.Quantity, i)
		if err != nil {
			return nil, err
		}
		lineDiscount := percentOf(gross, item.DiscountPercent)
		lines = append(lines, PricedLine{
			ProductRef:      item.ProductRef,
			Quantity:        item.Quantity,
			BasePrice:       item.UnitPrice,
			Tier:            tier,
			EffectivePrice:  price,
			LineTotal:       gross,
			DiscountPercent: item.DiscountPercent,
			DiscountAmount:  lineDiscount,
			NetTotal:        gross - lineDiscount,
		})
	}
	return lines, nil
}

// Quote prices items and computes the order totals.
func (c *Calculator) Quote(items []LineItem, adj Adjustments) (*Quote, error) {
	if err := adj.validate(); err != nil {
		return nil, err
	}

	lines, err := c.PriceLines(items)
	if err != nil {
		return nil, err
	}

	resolved := make([]LineItem, len(lines))
	for i, l := range lines {
		resolved[i] = LineItem{
			ProductRef:      l.ProductRef,
			Quantity:        l.Quantity,
			UnitPrice:       l.EffectivePrice,
			DiscountPercent: l.DiscountPercent,
		}
	}

	totals, err := ComputeOrderTotals(resolved, adj)
	if err != nil {
		return nil, err
	}

	return &Quote{Lines: lines, Adjustments: adj, Totals: totals}, nil
}

func (a Adjustments) validate() error {
	if !validPercent(a.DiscountPercent) {
		return lineError(ErrInvalidAdjustment, -1, "discount_percent", a.DiscountPercent)
	}
	if !validPercent(a.TaxPercent) {
		return lineError(ErrInvalidAdjustment, -1, "tax_percent", a.TaxPercent)
	}
	return nil
}

// validPercent accepts 0 to 100 with at most two decimal places, the
// precision orders are stored with.
func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && !p.GreaterThan(hundred) && p.Equal(p.Truncate(2))
}

// percentOf never exceeds amount since percent is at most 100.
func percentOf(amount int64, percent decimal.Decimal) int64 {
	if percent.IsZero() || amount == 0 {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(percent).Div(hundred).Round(0).IntPart()
}
