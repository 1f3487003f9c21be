package pricing_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"

	"github.com/penzflow/penzflow-sales-service/internal/pricing"
)

type pricingContext struct {
	tiers pricing.Tiers
	items []pricing.LineItem
	quote *pricing.Quote
	err   error
}

func (pc *pricingContext) thePricingTiers(table *godog.Table) error {
	tiers := make([]pricing.Tier, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		minQty, err := strconv.Atoi(row.Cells[0].Value)
		if err != nil {
			return err
		}
		pct, err := strconv.ParseFloat(row.Cells[1].Value, 64)
		if err != nil {
			return err
		}
		tiers = append(tiers, pricing.TierPercent(minQty, pct))
	}

	t, err := pricing.NewTiers(tiers...)
	if err != nil {
		return err
	}
	pc.tiers = t
	return nil
}

func (pc *pricingContext) theDefaultPricingTiers() error {
	pc.tiers = pricing.DefaultTiers()
	return nil
}

func (pc *pricingContext) aLineOfUnitsAt(quantity int, price int64) error {
	pc.items = append(pc.items, pricing.LineItem{
		ProductRef: fmt.Sprintf("line-%d", len(pc.items)+1),
		Quantity:   quantity,
		UnitPrice:  price,
	})
	return nil
}

func (pc *pricingContext) theOrderIsPriced(discount, tax float64) error {
	calc := pricing.NewCalculator(pc.tiers)
	pc.quote, pc.err = calc.Quote(pc.items, pricing.Adjustments{
		DiscountPercent: pricing.Percent(discount),
		TaxPercent:      pricing.Percent(tax),
	})
	return nil
}

func (pc *pricingContext) totals() (pricing.Totals, error) {
	if pc.err != nil {
		return pricing.Totals{}, fmt.Errorf("pricing failed: %w", pc.err)
	}
	return pc.quote.Totals, nil
}

func expectAmount(name string, got, want int64) error {
	if got != want {
		return fmt.Errorf("expected %s %d, got %d", name, want, got)
	}
	return nil
}

func (pc *pricingContext) lineHasEffectivePrice(line int, price int64) error {
	if pc.err != nil {
		return fmt.Errorf("pricing failed: %w", pc.err)
	}
	if line < 1 || line > len(pc.quote.Lines) {
		return fmt.Errorf("no line %d", line)
	}
	return expectAmount("effective price", pc.quote.Lines[line-1].EffectivePrice, price)
}

func (pc *pricingContext) amountStep(name string, pick func(pricing.Totals) int64) func(int64) error {
	return func(want int64) error {
		totals, err := pc.totals()
		if err != nil {
			return err
		}
		return expectAmount(name, pick(totals), want)
	}
}

func (pc *pricingContext) pricingFailsWith(code string) error {
	if pc.err == nil {
		return fmt.Errorf("expected pricing to fail with %s", code)
	}
	if pc.quote != nil {
		return fmt.Errorf("expected no quote on failure")
	}
	if got := pricing.Code(pc.err); got != code {
		return fmt.Errorf("expected error code %s, got %s", code, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	pc := &pricingContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*pc = pricingContext{}
		return ctx, nil
	})

	ctx.Step(`^the pricing tiers:$`, pc.thePricingTiers)
	ctx.Step(`^the default pricing tiers$`, pc.theDefaultPricingTiers)
	ctx.Step(`^a line of (-?\d+) units at (\d+)$`, pc.aLineOfUnitsAt)
	ctx.Step(`^the order is priced with (\d+(?:\.\d+)?)% discount and (\d+(?:\.\d+)?)% tax$`, pc.theOrderIsPriced)
	ctx.Step(`^line (\d+) has effective price (\d+)$`, pc.lineHasEffectivePrice)
	ctx.Step(`^the subtotal is (\d+)$`, pc.amountStep("subtotal", func(t pricing.Totals) int64 { return t.Subtotal }))
	ctx.Step(`^the discount amount is (\d+)$`, pc.amountStep("discount amount", func(t pricing.Totals) int64 { return t.DiscountAmount }))
	ctx.Step(`^the taxable amount is (\d+)$`, pc.amountStep("taxable amount", func(t pricing.Totals) int64 { return t.TaxableAmount }))
	ctx.Step(`^the tax amount is (\d+)$`, pc.amountStep("tax amount", func(t pricing.Totals) int64 { return t.TaxAmount }))
	ctx.Step(`^the grand total is (\d+)$`, pc.amountStep("grand total", func(t pricing.Totals) int64 { return t.GrandTotal }))
	ctx.Step(`^pricing fails with "([^"]*)"$`, pc.pricingFailsWith)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
