// Package money provides a non-negative monetary value used for all pricing
// arithmetic in the service.
package money

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeAmount is returned when constructing or deriving a money
	// value with a negative amount.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrInvalidQuantity is returned when multiplying by a negative quantity.
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// Money is an immutable non-negative monetary amount. The zero value is a
// valid zero amount.
type Money struct {
	amount decimal.Decimal
}

// Zero is the zero monetary amount.
var Zero = Money{}

// New creates a Money from a decimal amount.
// Returns ErrNegativeAmount when amount < 0.
func New(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: amount}, nil
}

// FromInt creates a Money from a non-negative integer amount.
func FromInt(amount int64) (Money, error) {
	return New(decimal.NewFromInt(amount))
}

// Parse creates a Money from a decimal string such as "1000" or "12.50".
func Parse(s string) (Money, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errors.Wrap(err, "parse amount")
	}
	return New(amount)
}

// MustNew creates a Money and panics when amount < 0. Intended for constants
// and test fixtures.
func MustNew(amount decimal.Decimal) Money {
	m, err := New(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m - other.
// Returns ErrNegativeAmount when the result would be negative.
func (m Money) Sub(other Money) (Money, error) {
	return New(m.amount.Sub(other.amount))
}

// MulQuantity returns m * quantity.
// Returns ErrInvalidQuantity when quantity < 0.
func (m Money) MulQuantity(quantity int) (Money, error) {
	if quantity < 0 {
		return Money{}, ErrInvalidQuantity
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}, nil
}

// Equal reports whether m and other represent the same amount.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Cmp compares m and other: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Decimal returns the underlying decimal amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) String() string {
	return m.amount.String()
}
