// Package coupon holds coupon definitions, the discount policies they carry,
// and member-coupon grants with expiry.
package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
)

var (
	// ErrNotFound is returned when a referenced coupon or member coupon
	// does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrExpired is returned when a member coupon is past its expiry date
	// or is used by someone other than its owner.
	ErrExpired = errors.New("coupon expired")
	// ErrInvalidDiscountValue is returned when a coupon is created with a
	// discount value its type does not accept.
	ErrInvalidDiscountValue = errors.New("invalid discount value")
)

// Coupon is a coupon definition: a discount type plus its value.
type Coupon struct {
	ID    int64
	Name  string
	Type  Type
	Value decimal.Decimal
}

// New creates a Coupon, validating the discount value against the type.
func New(name string, typ Type, value decimal.Decimal) (*Coupon, error) {
	if !typ.Valid(value) {
		return nil, errors.Wrapf(ErrInvalidDiscountValue, "%s coupon with value %s", typ, value)
	}
	return &Coupon{Name: name, Type: typ, Value: value}, nil
}

// Discount computes the discount this coupon grants on the given subtotal.
func (c *Coupon) Discount(subtotal money.Money) money.Money {
	return c.Type.Discount(subtotal, c.Value)
}

// MemberCoupon is a coupon granted to a member, usable until it expires.
// Consuming it during order placement deletes the grant.
type MemberCoupon struct {
	ID        int64
	MemberID  int64
	Coupon    Coupon
	ExpiresAt time.Time
}

// Expired reports whether the grant is past its expiry at the given instant.
func (mc *MemberCoupon) Expired(now time.Time) bool {
	return mc.ExpiresAt.Before(now)
}

// OwnedBy reports whether the grant belongs to the given member.
func (mc *MemberCoupon) OwnedBy(memberID int64) bool {
	return mc.MemberID == memberID
}

// Repository provides lookup and creation of coupon definitions.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Coupon, error)
	FindByName(ctx context.Context, name string) (*Coupon, error)
	Save(ctx context.Context, c *Coupon) error
}

// MemberCouponRepository provides lookup and granting of member coupons.
// Consumption happens inside the order placement unit of work, not here.
type MemberCouponRepository interface {
	FindByID(ctx context.Context, id int64) (*MemberCoupon, error)
	FindNotExpiredByMember(ctx context.Context, memberID int64, now time.Time) ([]MemberCoupon, error)
	Save(ctx context.Context, mc *MemberCoupon) error
	SaveAll(ctx context.Context, mcs []MemberCoupon) error
}
