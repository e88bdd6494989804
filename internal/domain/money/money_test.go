package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
	}{
		{name: "zero amount", amount: decimal.Zero},
		{name: "positive amount", amount: decimal.NewFromInt(12000)},
		{name: "fractional amount", amount: decimal.RequireFromString("99.99")},
		{name: "negative amount", amount: decimal.NewFromInt(-1), wantErr: ErrNegativeAmount},
		{name: "small negative amount", amount: decimal.RequireFromString("-0.01"), wantErr: ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.amount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, m.Decimal().Equal(tt.amount))
		})
	}
}

func TestMoney_Add(t *testing.T) {
	a := MustNew(decimal.NewFromInt(1000))
	b := MustNew(decimal.RequireFromString("2500.50"))

	sum := a.Add(b)

	assert.True(t, sum.Equal(MustNew(decimal.RequireFromString("3500.50"))))
	// Operands are unchanged.
	assert.True(t, a.Equal(MustNew(decimal.NewFromInt(1000))))
}

func TestMoney_Sub(t *testing.T) {
	a := MustNew(decimal.NewFromInt(1000))
	b := MustNew(decimal.NewFromInt(300))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Equal(MustNew(decimal.NewFromInt(700))))

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestMoney_MulQuantity(t *testing.T) {
	price := MustNew(decimal.NewFromInt(12000))

	tests := []struct {
		name     string
		quantity int
		want     Money
		wantErr  error
	}{
		{name: "multiply by ten", quantity: 10, want: MustNew(decimal.NewFromInt(120000))},
		{name: "multiply by one", quantity: 1, want: price},
		{name: "multiply by zero", quantity: 0, want: Zero},
		{name: "negative quantity", quantity: -1, wantErr: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := price.MulQuantity(tt.quantity)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want))
		})
	}
}

func TestMoney_Compare(t *testing.T) {
	low := MustNew(decimal.NewFromInt(100))
	high := MustNew(decimal.NewFromInt(200))

	assert.True(t, low.LessThan(high))
	assert.False(t, high.LessThan(low))
	assert.Equal(t, -1, low.Cmp(high))
	assert.Equal(t, 1, high.Cmp(low))
	assert.Equal(t, 0, low.Cmp(MustNew(decimal.NewFromInt(100))))

	// Equality is exact on the amount, independent of representation.
	assert.True(t, low.Equal(MustNew(decimal.RequireFromString("100.00"))))
	assert.True(t, Zero.IsZero())
}
