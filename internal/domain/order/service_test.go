package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/cart"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/coupon"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/product"
)

// --- Mock implementations ---

type mockCartRepo struct {
	byID   map[int64]cart.Item
	getErr error
}

func (m *mockCartRepo) FindByID(_ context.Context, id int64) (*cart.Item, error) {
	item, ok := m.byID[id]
	if !ok {
		return nil, &cart.NotFoundError{ID: id}
	}
	return &item, nil
}

func (m *mockCartRepo) FindByIDs(_ context.Context, ids []int64) ([]cart.Item, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var items []cart.Item
	for _, id := range ids {
		if item, ok := m.byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *mockCartRepo) FindAllByMember(_ context.Context, _ int64) ([]cart.Item, error) {
	return nil, nil
}
func (m *mockCartRepo) Save(_ context.Context, _ *cart.Item) error { return nil }

func (m *mockCartRepo) UpdateQuantity(_ context.Context, _ *cart.Item) error { return nil }

func (m *mockCartRepo) DeleteByID(_ context.Context, _ int64) error { return nil }

type mockMemberCouponRepo struct {
	byID map[int64]coupon.MemberCoupon
}

func (m *mockMemberCouponRepo) FindByID(_ context.Context, id int64) (*coupon.MemberCoupon, error) {
	mc, ok := m.byID[id]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return &mc, nil
}

func (m *mockMemberCouponRepo) FindNotExpiredByMember(_ context.Context, _ int64, _ time.Time) ([]coupon.MemberCoupon, error) {
	return nil, nil
}
func (m *mockMemberCouponRepo) Save(_ context.Context, _ *coupon.MemberCoupon) error { return nil }

func (m *mockMemberCouponRepo) SaveAll(_ context.Context, _ []coupon.MemberCoupon) error { return nil }

type mockOrderRepo struct {
	lastPlacement *Placement
	placeCalls    int
	nextID        int64
	placeErr      error
	byID          map[int64]Order
}

func (m *mockOrderRepo) Place(_ context.Context, p Placement) (int64, error) {
	m.placeCalls++
	if m.placeErr != nil {
		return 0, m.placeErr
	}
	m.lastPlacement = &p
	if m.nextID == 0 {
		m.nextID = 1
	}
	return m.nextID, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *mockOrderRepo) ListByMember(_ context.Context, _ int64) ([]Order, error) {
	return nil, nil
}

// --- Helpers ---

func amount(v string) money.Money {
	return money.MustNew(decimal.RequireFromString(v))
}

func newTestProduct(id int64, name, price string) product.Product {
	return product.Product{ID: id, Name: name, Price: amount(price), ImageURL: name + ".png"}
}

func newCartItem(id, memberID int64, p product.Product, qty int) cart.Item {
	return cart.Item{ID: id, MemberID: memberID, Product: p, Quantity: qty}
}

func newService(carts *mockCartRepo, coupons *mockMemberCouponRepo, orders *mockOrderRepo, now time.Time) *Service {
	s := NewService(carts, coupons, orders)
	s.now = func() time.Time { return now }
	return s
}

func TestService_Place(t *testing.T) {
	fixedNow := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)

	chicken := newTestProduct(1, "chicken", "12000")
	pizza := newTestProduct(2, "pizza", "3000")

	// Member 1 carts: 10 chickens (120000) and 1 pizza (3000).
	carts := func() *mockCartRepo {
		return &mockCartRepo{byID: map[int64]cart.Item{
			1: newCartItem(1, 1, chicken, 10),
			2: newCartItem(2, 1, pizza, 1),
		}}
	}

	tenPercent := coupon.Coupon{ID: 1, Name: "10% off", Type: coupon.TypeRate, Value: decimal.NewFromInt(10)}

	coupons := &mockMemberCouponRepo{byID: map[int64]coupon.MemberCoupon{
		10: {ID: 10, MemberID: 1, Coupon: tenPercent, ExpiresAt: fixedNow.Add(24 * time.Hour)},
		11: {ID: 11, MemberID: 1, Coupon: tenPercent, ExpiresAt: fixedNow.Add(-24 * time.Hour)},
		12: {ID: 12, MemberID: 2, Coupon: tenPercent, ExpiresAt: fixedNow.Add(24 * time.Hour)},
	}}

	couponID := func(id int64) *int64 { return &id }

	tests := []struct {
		name    string
		req     PlaceRequest
		wantErr error
	}{
		{
			name: "no coupon, matching total",
			req: PlaceRequest{
				MemberID:    1,
				CartItemIDs: []int64{1, 2},
				ShippingFee: amount("3000"),
				TotalPrice:  amount("126000"),
			},
		},
		{
			name: "valid coupon, matching total",
			req: PlaceRequest{
				MemberID:       1,
				CartItemIDs:    []int64{1, 2},
				ShippingFee:    amount("3000"),
				TotalPrice:     amount("113700"), // 123000 - 12300 + 3000
				MemberCouponID: couponID(10),
			},
		},
		{
			name: "claimed total off by one",
			req: PlaceRequest{
				MemberID:    1,
				CartItemIDs: []int64{1, 2},
				ShippingFee: amount("3000"),
				TotalPrice:  amount("126001"),
			},
			wantErr: ErrIncorrectPrice,
		},
		{
			name: "expired coupon",
			req: PlaceRequest{
				MemberID:       1,
				CartItemIDs:    []int64{1, 2},
				ShippingFee:    amount("3000"),
				TotalPrice:     amount("113700"),
				MemberCouponID: couponID(11),
			},
			wantErr: coupon.ErrExpired,
		},
		{
			name: "coupon owned by another member",
			req: PlaceRequest{
				MemberID:       1,
				CartItemIDs:    []int64{1, 2},
				ShippingFee:    amount("3000"),
				TotalPrice:     amount("113700"),
				MemberCouponID: couponID(12),
			},
			wantErr: coupon.ErrExpired,
		},
		{
			name: "unknown coupon",
			req: PlaceRequest{
				MemberID:       1,
				CartItemIDs:    []int64{1, 2},
				ShippingFee:    amount("3000"),
				TotalPrice:     amount("113700"),
				MemberCouponID: couponID(99),
			},
			wantErr: coupon.ErrNotFound,
		},
		{
			name: "empty cart item ids",
			req: PlaceRequest{
				MemberID:   1,
				TotalPrice: amount("3000"),
			},
			wantErr: ErrEmptyCartItems,
		},
		{
			name: "duplicate cart item ids",
			req: PlaceRequest{
				MemberID:    1,
				CartItemIDs: []int64{1, 1},
				ShippingFee: amount("3000"),
				TotalPrice:  amount("243000"),
			},
			wantErr: ErrDuplicateCartItems,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &mockOrderRepo{nextID: 42}
			svc := newService(carts(), coupons, orders, fixedNow)

			id, err := svc.Place(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				// No order persisted, no cart items consumed.
				assert.Zero(t, orders.placeCalls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(42), id)
			require.NotNil(t, orders.lastPlacement)
			assert.Equal(t, tt.req.CartItemIDs, orders.lastPlacement.CartItemIDs)
			assert.True(t, orders.lastPlacement.Order.TotalPrice.Equal(tt.req.TotalPrice))
			assert.Equal(t, fixedNow, orders.lastPlacement.Order.OrderedAt)
		})
	}
}

func TestService_Place_LineSnapshots(t *testing.T) {
	fixedNow := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)
	chicken := newTestProduct(1, "chicken", "12000")
	carts := &mockCartRepo{byID: map[int64]cart.Item{
		1: newCartItem(1, 1, chicken, 2),
	}}
	orders := &mockOrderRepo{}
	svc := newService(carts, &mockMemberCouponRepo{}, orders, fixedNow)

	_, err := svc.Place(context.Background(), PlaceRequest{
		MemberID:    1,
		CartItemIDs: []int64{1},
		ShippingFee: amount("0"),
		TotalPrice:  amount("24000"),
	})
	require.NoError(t, err)

	require.Len(t, orders.lastPlacement.Order.Lines, 1)
	line := orders.lastPlacement.Order.Lines[0]
	assert.Equal(t, int64(1), line.ProductID)
	assert.Equal(t, "chicken", line.Name)
	assert.Equal(t, "chicken.png", line.ImageURL)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.Price.Equal(amount("12000")))
}

func TestService_Place_MissingAndForeignCartItems(t *testing.T) {
	fixedNow := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)
	chicken := newTestProduct(1, "chicken", "12000")
	carts := &mockCartRepo{byID: map[int64]cart.Item{
		1: newCartItem(1, 1, chicken, 1),
		2: newCartItem(2, 2, chicken, 1), // owned by member 2
	}}
	orders := &mockOrderRepo{}
	svc := newService(carts, &mockMemberCouponRepo{}, orders, fixedNow)

	// Unresolved ID.
	_, err := svc.Place(context.Background(), PlaceRequest{
		MemberID:    1,
		CartItemIDs: []int64{1, 99},
		ShippingFee: amount("3000"),
		TotalPrice:  amount("15000"),
	})
	var nf *cart.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(99), nf.ID)

	// Another member's cart item is indistinguishable from a missing one.
	_, err = svc.Place(context.Background(), PlaceRequest{
		MemberID:    1,
		CartItemIDs: []int64{2},
		ShippingFee: amount("3000"),
		TotalPrice:  amount("15000"),
	})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(2), nf.ID)

	// Neither attempt reached the order store.
	assert.Zero(t, orders.placeCalls)
}

func TestService_Place_RepositoryFailure(t *testing.T) {
	fixedNow := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)
	carts := &mockCartRepo{byID: map[int64]cart.Item{
		1: newCartItem(1, 1, newTestProduct(1, "chicken", "12000"), 1),
	}}
	orders := &mockOrderRepo{placeErr: errors.New("connection reset")}
	svc := newService(carts, &mockMemberCouponRepo{}, orders, fixedNow)

	_, err := svc.Place(context.Background(), PlaceRequest{
		MemberID:    1,
		CartItemIDs: []int64{1},
		ShippingFee: amount("3000"),
		TotalPrice:  amount("15000"),
	})
	require.Error(t, err)
	assert.Nil(t, orders.lastPlacement)
}

func TestService_GetByID(t *testing.T) {
	stored := Order{
		ID:          5,
		MemberID:    1,
		ShippingFee: amount("3000"),
		TotalPrice:  amount("126000"),
		OrderedAt:   time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC),
	}
	orders := &mockOrderRepo{byID: map[int64]Order{5: stored}}
	svc := NewService(&mockCartRepo{}, &mockMemberCouponRepo{}, orders)

	t.Run("owner reads the order", func(t *testing.T) {
		got, err := svc.GetByID(context.Background(), 5, 1)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, got.ID)

		// Retrieval is idempotent: a second read returns an equal snapshot.
		again, err := svc.GetByID(context.Background(), 5, 1)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 404, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("foreign order is forbidden", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 5, 2)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
