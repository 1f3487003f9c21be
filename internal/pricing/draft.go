package pricing

import "fmt"

// OrderDraft is a caller-owned list of line items plus adjustments. It stores
// inputs only; Totals recomputes from scratch on every call.
type OrderDraft struct {
	items       []LineItem
	adjustments Adjustments
}

func NewOrderDraft(adj Adjustments) *OrderDraft {
	return &OrderDraft{adjustments: adj}
}

func (d *OrderDraft) Add(item LineItem) {
	d.items = append(d.items, item)
}

// Remove drops the item at index.
func (d *OrderDraft) Remove(index int) error {
	if index < 0 || index >= len(d.items) {
		return fmt.Errorf("draft: no item at index %d", index)
	}
	d.items = append(d.items[:index], d.items[index+1:]...)
	return nil
}

// SetQuantity replaces the quantity of the item at index. The value is
// checked when totals are computed.
func (d *OrderDraft) SetQuantity(index, quantity int) error {
	if index < 0 || index >= len(d.items) {
		return fmt.Errorf("draft: no item at index %d", index)
	}
	d.items[index].Quantity = quantity
	return nil
}

func (d *OrderDraft) SetAdjustments(adj Adjustments) {
	d.adjustments = adj
}

func (d *OrderDraft) Adjustments() Adjustments {
	return d.adjustments
}

// Items returns a copy of the current items.
func (d *OrderDraft) Items() []LineItem {
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

func (d *OrderDraft) Len() int {
	return len(d.items)
}

func (d *OrderDraft) Clear() {
	d.items = nil
}

// Totals prices the draft with calc.
func (d *OrderDraft) Totals(calc *Calculator) (*Quote, error) {
	return calc.Quote(d.items, d.adjustments)
}
