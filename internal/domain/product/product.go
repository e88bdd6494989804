// Package product holds the catalog aggregate and its persistence interface.
package product

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item available for purchase. Orders snapshot its
// attributes at placement time, so later catalog edits never touch past
// orders.
type Product struct {
	ID       int64
	Name     string
	Price    money.Money
	ImageURL string
}

// New creates a Product.
func New(name string, price money.Money, imageURL string) *Product {
	return &Product{Name: name, Price: price, ImageURL: imageURL}
}

// Repository defines catalog persistence operations.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
