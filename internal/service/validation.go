package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxNotesLength   = 1000
)

// ValidateCreateOrderRequest checks the request shape. Quantities, prices
// and percentages are left to the calculator so they fail with its error
// kinds.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if req.CustomerID <= 0 {
		return errors.NewValidationError("customer_id", "customer ID is required")
	}

	if len(req.Items) == 0 {
		return errors.NewValidationError("items", "at least one item is required")
	}

	switch req.Channel {
	case "", models.ChannelSales, models.ChannelMobile:
	default:
		return errors.NewValidationError("channel", "channel must be sales or mobile")
	}

	return validateItems(req.Items)
}

func ValidateQuoteRequest(req *models.QuoteRequest) error {
	switch req.Channel {
	case "", models.ChannelSales, models.ChannelMobile:
	default:
		return errors.NewValidationError("channel", "channel must be sales or mobile")
	}
	return validateItems(req.Items)
}

func validateItems(items []models.OrderItemRequest) error {
	for i, item := range items {
		if item.ProductID <= 0 {
			return errors.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "product ID is required for item")
		}
	}
	return nil
}

// ValidateOrderListFilter rejects negative paging and clamps the limit.
func ValidateOrderListFilter(filter *models.OrderListFilter) error {
	if filter.Limit < 0 {
		return errors.NewValidationError("limit", "limit cannot be negative")
	}

	if filter.Offset < 0 {
		return errors.NewValidationError("offset", "offset cannot be negative")
	}

	if filter.Limit == 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	if filter.StartDate != nil && filter.EndDate != nil {
		if filter.StartDate.After(*filter.EndDate) {
			return errors.NewValidationError("start_date", "start date cannot be after end date")
		}
	}

	return nil
}

func ValidateUpdateOrderStatusRequest(req *models.UpdateOrderStatusRequest) error {
	if req.Status == "" {
		return errors.NewValidationError("status", "status is required")
	}

	switch req.Status {
	case models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusCompleted,
		models.OrderStatusCancelled:
	case models.OrderStatusPendingApproval,
		models.OrderStatusApproved,
		models.OrderStatusRejected:
		return errors.NewValidationError("status", "use submit, approve or reject for approval decisions")
	default:
		return errors.NewValidationError("status", "invalid order status")
	}

	return nil
}

// SanitizeOrderNotes escapes markup and caps the length in characters.
func SanitizeOrderNotes(notes string) string {
	notes = strings.ReplaceAll(notes, "<", "&lt;")
	notes = strings.ReplaceAll(notes, ">", "&gt;")
	notes = strings.ReplaceAll(notes, "\"", "&quot;")
	notes = strings.TrimSpace(notes)

	if utf8.RuneCountInString(notes) > maxNotesLength {
		notes = string([]rune(notes)[:maxNotesLength])
	}

	return notes
}

var validTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusDraft:           {models.OrderStatusPendingApproval, models.OrderStatusApproved, models.OrderStatusCancelled},
	models.OrderStatusPendingApproval: {models.OrderStatusApproved, models.OrderStatusRejected, models.OrderStatusCancelled},
	models.OrderStatusApproved:        {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing:      {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:         {models.OrderStatusCompleted},
}

func isValidStatusTransition(from, to models.OrderStatus) bool {
	for _, status := range validTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}
