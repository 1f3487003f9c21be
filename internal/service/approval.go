package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diegoholiveira/jsonlogic/v3"

	"github.com/penzflow/penzflow-sales-service/internal/models"
)

// ApprovalFacts are the values an approval rule may reference with
// {"var": "<name>"}.
type ApprovalFacts struct {
	DiscountPercent float64        `json:"discount_percent"`
	TaxPercent      float64        `json:"tax_percent"`
	Subtotal        int64          `json:"subtotal"`
	GrandTotal      int64          `json:"grand_total"`
	ItemCount       int            `json:"item_count"`
	Channel         models.Channel `json:"channel"`
}

// ApprovalPolicy decides whether a submitted order needs a manager's
// approval. The rule is JSONLogic; a truthy result means approval required.
type ApprovalPolicy struct {
	rule []byte
}

// NewApprovalPolicy compiles rule. A nil or empty rule never requires
// approval.
func NewApprovalPolicy(rule map[string]interface{}) (*ApprovalPolicy, error) {
	if len(rule) == 0 {
		return &ApprovalPolicy{}, nil
	}

	data, err := json.Marshal(rule)
	if err != nil {
		return nil, fmt.Errorf("approval rule: %w", err)
	}
	if !jsonlogic.IsValid(bytes.NewReader(data)) {
		return nil, fmt.Errorf("approval rule is not valid JSONLogic")
	}
	return &ApprovalPolicy{rule: data}, nil
}

// RequiresApproval evaluates the rule against facts.
func (p *ApprovalPolicy) RequiresApproval(facts ApprovalFacts) (bool, error) {
	if p == nil || len(p.rule) == 0 {
		return false, nil
	}

	data, err := json.Marshal(facts)
	if err != nil {
		return false, err
	}

	var result bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(p.rule), bytes.NewReader(data), &result); err != nil {
		return false, fmt.Errorf("evaluate approval rule: %w", err)
	}

	var value interface{}
	decoder := json.NewDecoder(strings.NewReader(result.String()))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return false, fmt.Errorf("decode approval result: %w", err)
	}
	return truthy(value), nil
}

// truthy follows JSONLogic truthiness.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	default:
		return true
	}
}

func factsFor(order *models.Order) ApprovalFacts {
	return ApprovalFacts{
		DiscountPercent: order.DiscountPercent,
		TaxPercent:      order.TaxPercent,
		Subtotal:        order.Subtotal,
		GrandTotal:      order.TotalAmount,
		ItemCount:       len(order.Lines),
		Channel:         order.Channel,
	}
}
