package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/penzflow/penzflow-sales-service/internal/pricing"
)

// PricingConfig holds the canonical pricing table and order policy. It is
// read once at startup and never reloaded.
type PricingConfig struct {
	Currency          string                 `yaml:"currency"`
	DefaultTaxPercent float64                `yaml:"default_tax_percent"`
	Tiers             []TierConfig           `yaml:"tiers"`
	ApprovalRule      map[string]interface{} `yaml:"approval_rule"`
}

type TierConfig struct {
	Name            string  `yaml:"name"`
	MinQuantity     int     `yaml:"min_quantity"`
	DiscountPercent float64 `yaml:"discount_percent"`
}

// DefaultPricing mirrors the product pricing page: unit, bulk and wholesale
// tiers, 11% VAT, and manual approval above 10% order discount or
// Rp 100,000,000.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		Currency:          "IDR",
		DefaultTaxPercent: 11,
		Tiers: []TierConfig{
			{Name: "Unit Price", MinQuantity: 1, DiscountPercent: 0},
			{Name: "Bulk Price", MinQuantity: 50, DiscountPercent: 10},
			{Name: "Wholesale Price", MinQuantity: 100, DiscountPercent: 20},
		},
		ApprovalRule: map[string]interface{}{
			"or": []interface{}{
				map[string]interface{}{">": []interface{}{map[string]interface{}{"var": "discount_percent"}, 10}},
				map[string]interface{}{">": []interface{}{map[string]interface{}{"var": "grand_total"}, 100000000}},
			},
		},
	}
}

// LoadPricing reads a YAML pricing file. A missing file yields
// DefaultPricing; fields left out of the file keep their defaults.
func LoadPricing(path string) (PricingConfig, error) {
	cfg := DefaultPricing()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return PricingConfig{}, fmt.Errorf("failed to read pricing config: %w", err)
	}

	// Decode over the defaults; the rule map is cleared first so a rule in
	// the file replaces the default instead of merging into it.
	defaultRule := cfg.ApprovalRule
	cfg.ApprovalRule = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PricingConfig{}, fmt.Errorf("failed to parse pricing config: %w", err)
	}
	if cfg.ApprovalRule == nil {
		cfg.ApprovalRule = defaultRule
	}

	if err := cfg.Validate(); err != nil {
		return PricingConfig{}, fmt.Errorf("invalid pricing config: %w", err)
	}
	return cfg, nil
}

func (p PricingConfig) Validate() error {
	if p.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if p.DefaultTaxPercent < 0 || p.DefaultTaxPercent > 100 {
		return fmt.Errorf("default_tax_percent %v out of range", p.DefaultTaxPercent)
	}
	_, err := p.TierTable()
	return err
}

// TierTable converts the configured tiers into a pricing table.
func (p PricingConfig) TierTable() (pricing.Tiers, error) {
	tiers := make([]pricing.Tier, len(p.Tiers))
	for i, t := range p.Tiers {
		tiers[i] = pricing.TierPercent(t.MinQuantity, t.DiscountPercent)
	}
	return pricing.NewTiers(tiers...)
}
