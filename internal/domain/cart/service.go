package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/product"
)

// Service implements cart use cases on top of the cart and product stores.
type Service struct {
	carts    Repository
	products product.Repository
}

// NewService creates a cart Service.
func NewService(carts Repository, products product.Repository) *Service {
	return &Service{carts: carts, products: products}
}

// List returns all cart items of the member.
func (s *Service) List(ctx context.Context, memberID int64) ([]Item, error) {
	items, err := s.carts.FindAllByMember(ctx, memberID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}
	return items, nil
}

// Add puts a product into the member's cart and returns the new item.
func (s *Service) Add(ctx context.Context, memberID, productID int64, quantity int) (*Item, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %d", productID)
	}

	item, err := NewItem(memberID, *p, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, item); err != nil {
		return nil, errors.Wrap(err, "save cart item")
	}
	return item, nil
}

// ChangeQuantity sets the quantity of the member's cart item. A quantity of
// zero removes the item.
func (s *Service) ChangeQuantity(ctx context.Context, memberID, itemID int64, quantity int) error {
	item, err := s.findOwned(ctx, memberID, itemID)
	if err != nil {
		return err
	}

	if quantity == 0 {
		if err := s.carts.DeleteByID(ctx, item.ID); err != nil {
			return errors.Wrap(err, "delete cart item")
		}
		return nil
	}

	if err := item.ChangeQuantity(quantity); err != nil {
		return err
	}
	if err := s.carts.UpdateQuantity(ctx, item); err != nil {
		return errors.Wrap(err, "update cart item quantity")
	}
	return nil
}

// Remove deletes the member's cart item.
func (s *Service) Remove(ctx context.Context, memberID, itemID int64) error {
	item, err := s.findOwned(ctx, memberID, itemID)
	if err != nil {
		return err
	}
	if err := s.carts.DeleteByID(ctx, item.ID); err != nil {
		return errors.Wrap(err, "delete cart item")
	}
	return nil
}

func (s *Service) findOwned(ctx context.Context, memberID, itemID int64) (*Item, error) {
	item, err := s.carts.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.OwnedBy(memberID) {
		return nil, ErrNotOwner
	}
	return item, nil
}
