package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Tier unlocks a bulk discount once a line reaches MinQuantity units.
// Discount is a fraction in [0, 1).
type Tier struct {
	MinQuantity int             `json:"min_quantity"`
	Discount    decimal.Decimal `json:"discount"`
}

// TierPercent builds a tier from a percentage, e.g. TierPercent(50, 10).
func TierPercent(minQuantity int, percent float64) Tier {
	return Tier{
		MinQuantity: minQuantity,
		Discount:    decimal.NewFromFloat(percent).Div(hundred),
	}
}

// Tiers is an immutable table ordered ascending by MinQuantity.
type Tiers struct {
	tiers []Tier
}

var baseTier = Tier{MinQuantity: 1, Discount: decimal.Zero}

// NewTiers validates and sorts the given tiers.
func NewTiers(tiers ...Tier) (Tiers, error) {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinQuantity < sorted[j].MinQuantity
	})

	for i, t := range sorted {
		if t.MinQuantity < 1 {
			return Tiers{}, fmt.Errorf("%w: min_quantity %d must be at least 1", ErrInvalidTier, t.MinQuantity)
		}
		if t.Discount.IsNegative() || t.Discount.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return Tiers{}, fmt.Errorf("%w: discount %s must be in [0, 1)", ErrInvalidTier, t.Discount)
		}
		if i > 0 && sorted[i-1].MinQuantity == t.MinQuantity {
			return Tiers{}, fmt.Errorf("%w: duplicate min_quantity %d", ErrInvalidTier, t.MinQuantity)
		}
	}

	return Tiers{tiers: sorted}, nil
}

// MustTiers is NewTiers for static tables; it panics on invalid input.
func MustTiers(tiers ...Tier) Tiers {
	t, err := NewTiers(tiers...)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTiers is the canonical table shown on the product pricing page:
// unit price, bulk (50+, 10%) and wholesale (100+, 20%).
func DefaultTiers() Tiers {
	return MustTiers(
		TierPercent(1, 0),
		TierPercent(50, 10),
		TierPercent(100, 20),
	)
}

// For returns the tier that applies to quantity: the one with the highest
// MinQuantity not above quantity. Below the first threshold the first tier
// applies.
func (t Tiers) For(quantity int) Tier {
	if len(t.tiers) == 0 {
		return baseTier
	}
	selected := t.tiers[0]
	for _, tier := range t.tiers[1:] {
		if tier.MinQuantity > quantity {
			break
		}
		selected = tier
	}
	return selected
}

// List returns a copy of the table.
func (t Tiers) List() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

func (t Tiers) Len() int {
	return len(t.tiers)
}
