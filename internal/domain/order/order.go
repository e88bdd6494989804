// Package order holds the order aggregate and the placement use case: the
// server recomputes the price a client claims, and commits the order, the
// coupon consumption, and the cart cleanup as one unit of work.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/cart"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrForbidden is returned when a member reads an order owned by
	// someone else.
	ErrForbidden = errors.New("order belongs to another member")
	// ErrIncorrectPrice is returned when the client-claimed total does not
	// match the server-computed total. The client should re-fetch pricing.
	ErrIncorrectPrice = errors.New("claimed total price does not match")
	// ErrDuplicateCartItems is returned when the same cart item is listed
	// twice in one placement request.
	ErrDuplicateCartItems = errors.New("duplicate cart item ids")
	// ErrEmptyCartItems is returned when a placement request lists no
	// cart items.
	ErrEmptyCartItems = errors.New("cart item ids required")
)

// Line is a frozen snapshot of one purchased product. It copies the product
// attributes at placement time so later catalog edits never change an order.
type Line struct {
	ProductID int64
	Name      string
	Price     money.Money
	ImageURL  string
	Quantity  int
}

// LineFromCartItem snapshots a cart item into an order line.
func LineFromCartItem(item cart.Item) Line {
	return Line{
		ProductID: item.Product.ID,
		Name:      item.Product.Name,
		Price:     item.Product.Price,
		ImageURL:  item.Product.ImageURL,
		Quantity:  item.Quantity,
	}
}

// Subtotal returns price times quantity for the line.
func (l Line) Subtotal() (money.Money, error) {
	return l.Price.MulQuantity(l.Quantity)
}

// Order is an immutable record of a successful placement. It is created
// exactly once and never updated or deleted.
type Order struct {
	ID          int64
	MemberID    int64
	ShippingFee money.Money
	TotalPrice  money.Money
	OrderedAt   time.Time
	Lines       []Line
}

// OwnedBy reports whether the order belongs to the given member.
func (o *Order) OwnedBy(memberID int64) bool {
	return o.MemberID == memberID
}

// Placement is the unit of work committed on a successful placement: the new
// order, the cart items it consumes, and optionally the member coupon spent
// on it. Implementations must apply all writes atomically.
type Placement struct {
	Order          *Order
	CartItemIDs    []int64
	MemberCouponID *int64
}

// Repository defines order persistence. Place commits a Placement in a single
// transaction and returns the assigned order ID; a failure of any write in
// the unit of work leaves the store untouched.
type Repository interface {
	Place(ctx context.Context, p Placement) (int64, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByMember(ctx context.Context, memberID int64) ([]Order, error)
}
