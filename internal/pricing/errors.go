package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInvalidAdjustment = errors.New("invalid adjustment")
	ErrInvalidTier       = errors.New("invalid pricing tier")
	ErrAmountOverflow    = errors.New("amount out of range")
)

// Error reports which input was rejected. Line is the zero-based line index,
// or -1 when the error concerns order-level input.
type Error struct {
	Kind  error
	Line  int
	Field string
	Value string
}

func (e *Error) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("%v: line %d %s=%s", e.Kind, e.Line, e.Field, e.Value)
	}
	return fmt.Sprintf("%v: %s=%s", e.Kind, e.Field, e.Value)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Code returns a stable machine-readable identifier for the error kind.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, ErrInvalidAdjustment):
		return "invalid_adjustment"
	case errors.Is(err, ErrInvalidTier):
		return "invalid_tier"
	case errors.Is(err, ErrAmountOverflow):
		return "amount_overflow"
	default:
		return ""
	}
}

func lineError(kind error, line int, field string, value interface{}) *Error {
	return &Error{Kind: kind, Line: line, Field: field, Value: fmt.Sprint(value)}
}
