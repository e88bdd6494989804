package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/cart"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
)

const (
	cartItemColumns = `ci.id, ci.member_id, ci.quantity, p.id, p.name, p.price, p.image_url`

	getCartItemByIDSQL = `SELECT ` + cartItemColumns + `
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.id = $1`

	getCartItemsByIDsSQL = `SELECT ` + cartItemColumns + `
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.id = ANY($1)`

	getCartItemsByMemberSQL = `SELECT ` + cartItemColumns + `
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.member_id = $1 ORDER BY ci.id`

	createCartItemSQL = `INSERT INTO cart_items (member_id, product_id, quantity)
		VALUES ($1, $2, $3) RETURNING id`

	updateCartItemQuantitySQL = `UPDATE cart_items SET quantity = $2 WHERE id = $1`

	deleteCartItemSQL = `DELETE FROM cart_items WHERE id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Cart items
// are loaded with their product joined in, so pricing always sees the
// current catalog state.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// FindByID returns a single cart item with its product.
func (r *CartRepository) FindByID(ctx context.Context, id int64) (*cart.Item, error) {
	rows, err := r.pool.Query(ctx, getCartItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting cart item %d: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &cart.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting cart item %d: %w", id, err)
	}
	return &item, nil
}

// FindByIDs returns cart items matching any of the given IDs, in one query.
// Missing IDs are simply absent from the result.
func (r *CartRepository) FindByIDs(ctx context.Context, ids []int64) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, getCartItemsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting cart items by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// FindAllByMember returns all cart items of the member ordered by ID.
func (r *CartRepository) FindAllByMember(ctx context.Context, memberID int64) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, getCartItemsByMemberSQL, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items of member %d: %w", memberID, err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// Save inserts a new cart item and assigns its ID.
func (r *CartRepository) Save(ctx context.Context, item *cart.Item) error {
	err := r.pool.QueryRow(ctx, createCartItemSQL, item.MemberID, item.Product.ID, item.Quantity).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("creating cart item: %w", err)
	}
	return nil
}

// UpdateQuantity persists the item's quantity.
func (r *CartRepository) UpdateQuantity(ctx context.Context, item *cart.Item) error {
	ct, err := r.pool.Exec(ctx, updateCartItemQuantitySQL, item.ID, item.Quantity)
	if err != nil {
		return fmt.Errorf("updating cart item %d: %w", item.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return &cart.NotFoundError{ID: item.ID}
	}
	return nil
}

// DeleteByID removes the cart item.
func (r *CartRepository) DeleteByID(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, deleteCartItemSQL, id)
	if err != nil {
		return fmt.Errorf("deleting cart item %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return &cart.NotFoundError{ID: id}
	}
	return nil
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var (
		item  cart.Item
		price decimal.Decimal
	)
	err := row.Scan(
		&item.ID, &item.MemberID, &item.Quantity,
		&item.Product.ID, &item.Product.Name, &price, &item.Product.ImageURL,
	)
	if err != nil {
		return cart.Item{}, err
	}

	m, err := money.New(price)
	if err != nil {
		return cart.Item{}, fmt.Errorf("cart item %d price: %w", item.ID, err)
	}
	item.Product.Price = m
	return item, nil
}
