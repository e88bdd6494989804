package coupon

import (
	"github.com/shopspring/decimal"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
)

// Type enumerates the supported discount policies. The set is closed: every
// coupon carries exactly one of these tags and dispatch is exhaustive.
type Type string

const (
	// TypeRate discounts a percentage of the subtotal.
	TypeRate Type = "rate"
	// TypeFixed discounts a fixed amount, capped at the subtotal.
	TypeFixed Type = "fixed"
	// TypeNone grants no discount.
	TypeNone Type = "none"
)

var hundred = decimal.NewFromInt(100)

// Valid reports whether value is an acceptable discount value for the type:
// rate requires a percentage in (0, 100], fixed requires a positive amount,
// none requires zero.
func (t Type) Valid(value decimal.Decimal) bool {
	switch t {
	case TypeRate:
		return value.IsPositive() && value.LessThanOrEqual(hundred)
	case TypeFixed:
		return value.IsPositive()
	case TypeNone:
		return value.IsZero()
	default:
		return false
	}
}

// Discount computes the discount for the given subtotal. The result is never
// negative and never exceeds the subtotal. Callers must validate value with
// Valid first; an unknown type discounts nothing.
func (t Type) Discount(subtotal money.Money, value decimal.Decimal) money.Money {
	switch t {
	case TypeRate:
		amount := subtotal.Decimal().Mul(value).Div(hundred).Round(2)
		return clamp(amount, subtotal)
	case TypeFixed:
		return clamp(value.Round(2), subtotal)
	default:
		return money.Zero
	}
}

// clamp bounds amount to [0, subtotal].
func clamp(amount decimal.Decimal, subtotal money.Money) money.Money {
	if amount.IsNegative() {
		return money.Zero
	}
	return money.MustNew(decimal.Min(amount, subtotal.Decimal()))
}
