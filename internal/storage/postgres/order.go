package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/cart"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/coupon"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (member_id, shipping_fee, total_price, ordered_at)
		VALUES ($1, $2, $3, $4) RETURNING id`

	createOrderLineSQL = `INSERT INTO order_lines (order_id, product_id, name, price, image_url, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	consumeMemberCouponSQL = `DELETE FROM member_coupons WHERE id = $1`

	consumeCartItemsSQL = `DELETE FROM cart_items WHERE id = ANY($1)`

	getOrderByIDSQL = `SELECT id, member_id, shipping_fee, total_price, ordered_at
		FROM orders WHERE id = $1`

	getOrderLinesSQL = `SELECT product_id, name, price, image_url, quantity
		FROM order_lines WHERE order_id = $1 ORDER BY id`

	listOrdersByMemberSQL = `SELECT id, member_id, shipping_fee, total_price, ordered_at
		FROM orders WHERE member_id = $1 ORDER BY id DESC`

	listOrderLinesByMemberSQL = `SELECT ol.order_id, ol.product_id, ol.name, ol.price, ol.image_url, ol.quantity
		FROM order_lines ol JOIN orders o ON o.id = ol.order_id
		WHERE o.member_id = $1 ORDER BY ol.order_id DESC, ol.id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Place commits the placement in a single transaction: order insert, line
// inserts, coupon consumption, and cart-item deletion either all land or
// none do. The deletes assert their affected-row counts, so when a
// concurrent placement already consumed a row this one rolls back instead of
// double-spending it.
func (r *OrderRepository) Place(ctx context.Context, p order.Placement) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin placement: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	o := p.Order

	var id int64
	err = tx.QueryRow(ctx, createOrderSQL,
		o.MemberID, o.ShippingFee.Decimal(), o.TotalPrice.Decimal(), o.OrderedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, line := range o.Lines {
		batch.Queue(createOrderLineSQL,
			id, line.ProductID, line.Name, line.Price.Decimal(), line.ImageURL, line.Quantity,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("inserting order lines: %w", err)
	}

	if p.MemberCouponID != nil {
		ct, err := tx.Exec(ctx, consumeMemberCouponSQL, *p.MemberCouponID)
		if err != nil {
			return 0, fmt.Errorf("consuming member coupon %d: %w", *p.MemberCouponID, err)
		}
		if ct.RowsAffected() != 1 {
			return 0, coupon.ErrNotFound
		}
	}

	ct, err := tx.Exec(ctx, consumeCartItemsSQL, p.CartItemIDs)
	if err != nil {
		return 0, fmt.Errorf("consuming cart items: %w", err)
	}
	if ct.RowsAffected() != int64(len(p.CartItemIDs)) {
		// Another placement got to (at least) one of the rows first.
		return 0, &cart.NotFoundError{ID: p.CartItemIDs[0]}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit placement: %w", err)
	}
	return id, nil
}

// GetByID returns the order with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	lineRows, err := r.pool.Query(ctx, getOrderLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting lines of order %d: %w", id, err)
	}
	o.Lines, err = pgx.CollectRows(lineRows, scanOrderLine)
	if err != nil {
		return nil, fmt.Errorf("getting lines of order %d: %w", id, err)
	}
	return &o, nil
}

// ListByMember returns the member's orders with lines, newest first.
func (r *OrderRepository) ListByMember(ctx context.Context, memberID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByMemberSQL, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of member %d: %w", memberID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders of member %d: %w", memberID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	index := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		index[orders[i].ID] = &orders[i]
	}

	lineRows, err := r.pool.Query(ctx, listOrderLinesByMemberSQL, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing order lines of member %d: %w", memberID, err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var orderID int64
		var (
			line  order.Line
			price decimal.Decimal
		)
		if err := lineRows.Scan(&orderID, &line.ProductID, &line.Name, &price, &line.ImageURL, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order line: %w", err)
		}
		m, err := money.New(price)
		if err != nil {
			return nil, fmt.Errorf("order %d line price: %w", orderID, err)
		}
		line.Price = m
		if o, ok := index[orderID]; ok {
			o.Lines = append(o.Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("listing order lines of member %d: %w", memberID, err)
	}
	return orders, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                  order.Order
		shippingFee, total decimal.Decimal
		orderedAt          time.Time
	)
	if err := row.Scan(&o.ID, &o.MemberID, &shippingFee, &total, &orderedAt); err != nil {
		return order.Order{}, err
	}

	fee, err := money.New(shippingFee)
	if err != nil {
		return order.Order{}, fmt.Errorf("order %d shipping fee: %w", o.ID, err)
	}
	tp, err := money.New(total)
	if err != nil {
		return order.Order{}, fmt.Errorf("order %d total price: %w", o.ID, err)
	}
	o.ShippingFee = fee
	o.TotalPrice = tp
	o.OrderedAt = orderedAt
	return o, nil
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var (
		line  order.Line
		price decimal.Decimal
	)
	if err := row.Scan(&line.ProductID, &line.Name, &price, &line.ImageURL, &line.Quantity); err != nil {
		return order.Line{}, err
	}

	m, err := money.New(price)
	if err != nil {
		return order.Line{}, fmt.Errorf("order line price: %w", err)
	}
	line.Price = m
	return line, nil
}
