package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/cart"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/coupon"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
)

// PlaceRequest holds the input for placing an order. ShippingFee and
// TotalPrice are client-claimed; the total is verified against the server
// computation, the shipping fee is trusted once non-negative.
type PlaceRequest struct {
	MemberID       int64
	CartItemIDs    []int64
	ShippingFee    money.Money
	TotalPrice     money.Money
	MemberCouponID *int64
}

// Service encapsulates order placement and retrieval.
type Service struct {
	carts   cart.Repository
	coupons coupon.MemberCouponRepository
	orders  Repository
	now     func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	carts cart.Repository,
	coupons coupon.MemberCouponRepository,
	orders Repository,
) *Service {
	return &Service{
		carts:   carts,
		coupons: coupons,
		orders:  orders,
		now:     time.Now,
	}
}

// Place validates the claimed totals against server-held prices and, on an
// exact match, commits the order together with coupon consumption and cart
// cleanup in one transaction. Any failure leaves the store untouched.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (int64, error) {
	if len(req.CartItemIDs) == 0 {
		return 0, ErrEmptyCartItems
	}
	if hasDuplicates(req.CartItemIDs) {
		return 0, ErrDuplicateCartItems
	}

	items, err := s.fetchOwnedItems(ctx, req.MemberID, req.CartItemIDs)
	if err != nil {
		return 0, err
	}

	subtotal := money.Zero
	for _, item := range items {
		line, err := item.Subtotal()
		if err != nil {
			return 0, errors.Wrapf(err, "subtotal of cart item %d", item.ID)
		}
		subtotal = subtotal.Add(line)
	}

	discount := money.Zero
	if req.MemberCouponID != nil {
		discount, err = s.couponDiscount(ctx, req.MemberID, *req.MemberCouponID, subtotal)
		if err != nil {
			return 0, err
		}
	}

	// The discount never exceeds the subtotal, so this cannot go negative.
	discounted, err := subtotal.Sub(discount)
	if err != nil {
		return 0, errors.Wrap(err, "apply discount")
	}
	total := discounted.Add(req.ShippingFee)

	// Exact match is a tamper check: the client computed and displayed this
	// total before submitting, so any difference means stale or forged
	// client state, not a rounding disagreement to paper over.
	if !total.Equal(req.TotalPrice) {
		return 0, errors.Wrapf(ErrIncorrectPrice, "claimed %s, computed %s", req.TotalPrice, total)
	}

	lines := make([]Line, len(items))
	for i, item := range items {
		lines[i] = LineFromCartItem(item)
	}

	id, err := s.orders.Place(ctx, Placement{
		Order: &Order{
			MemberID:    req.MemberID,
			ShippingFee: req.ShippingFee,
			TotalPrice:  total,
			OrderedAt:   s.now(),
			Lines:       lines,
		},
		CartItemIDs:    req.CartItemIDs,
		MemberCouponID: req.MemberCouponID,
	})
	if err != nil {
		return 0, errors.Wrap(err, "place order")
	}
	return id, nil
}

// GetByID returns the member's order.
// Returns ErrNotFound for missing orders and ErrForbidden for orders owned
// by another member.
func (s *Service) GetByID(ctx context.Context, orderID, memberID int64) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(memberID) {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListByMember returns all orders of the member, newest first.
func (s *Service) ListByMember(ctx context.Context, memberID int64) ([]Order, error) {
	orders, err := s.orders.ListByMember(ctx, memberID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// fetchOwnedItems resolves every cart item ID and checks ownership. A miss
// and a foreign owner are both reported as not-found so a member cannot
// probe other members' carts.
func (s *Service) fetchOwnedItems(ctx context.Context, memberID int64, ids []int64) ([]cart.Item, error) {
	fetched, err := s.carts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get cart items")
	}

	byID := make(map[int64]cart.Item, len(fetched))
	for _, item := range fetched {
		byID[item.ID] = item
	}

	items := make([]cart.Item, len(ids))
	for i, id := range ids {
		item, ok := byID[id]
		if !ok || !item.OwnedBy(memberID) {
			return nil, &cart.NotFoundError{ID: id}
		}
		items[i] = item
	}
	return items, nil
}

// couponDiscount resolves the member coupon and computes its discount on the
// subtotal. A coupon owned by another member is reported as expired, the
// same outcome as one past its date.
func (s *Service) couponDiscount(ctx context.Context, memberID, memberCouponID int64, subtotal money.Money) (money.Money, error) {
	mc, err := s.coupons.FindByID(ctx, memberCouponID)
	if err != nil {
		return money.Zero, err
	}
	if !mc.OwnedBy(memberID) || mc.Expired(s.now()) {
		return money.Zero, coupon.ErrExpired
	}
	return mc.Coupon.Discount(subtotal), nil
}

func hasDuplicates(ids []int64) bool {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
