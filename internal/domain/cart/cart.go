// Package cart holds a member's pending product selections.
package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/product"
)

var (
	// ErrInvalidQuantity is returned when a cart item would hold a
	// quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNotOwner is returned when a member touches a cart item that
	// belongs to someone else.
	ErrNotOwner = errors.New("cart item belongs to another member")
)

// NotFoundError indicates a referenced cart item does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cart item %d not found", e.ID)
}

// Item is one member's pending selection of a product at a quantity.
// Only the quantity is mutable.
type Item struct {
	ID       int64
	MemberID int64
	Product  product.Product
	Quantity int
}

// NewItem creates a cart item for the member.
// Returns ErrInvalidQuantity when quantity < 1.
func NewItem(memberID int64, p product.Product, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return &Item{MemberID: memberID, Product: p, Quantity: quantity}, nil
}

// OwnedBy reports whether the item belongs to the given member.
func (i *Item) OwnedBy(memberID int64) bool {
	return i.MemberID == memberID
}

// ChangeQuantity updates the quantity.
// Returns ErrInvalidQuantity when quantity < 1; removal is a separate
// operation, not a zero quantity.
func (i *Item) ChangeQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	i.Quantity = quantity
	return nil
}

// Subtotal returns product price times quantity.
func (i *Item) Subtotal() (money.Money, error) {
	return i.Product.Price.MulQuantity(i.Quantity)
}

// Repository defines cart persistence operations.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Item, error)
	FindByIDs(ctx context.Context, ids []int64) ([]Item, error)
	FindAllByMember(ctx context.Context, memberID int64) ([]Item, error)
	Save(ctx context.Context, item *Item) error
	UpdateQuantity(ctx context.Context, item *Item) error
	DeleteByID(ctx context.Context, id int64) error
}
