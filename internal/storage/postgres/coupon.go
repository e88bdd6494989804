package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/coupon"
)

const (
	getCouponByIDSQL   = `SELECT id, name, discount_type, discount_value FROM coupons WHERE id = $1`
	getCouponByNameSQL = `SELECT id, name, discount_type, discount_value FROM coupons WHERE name = $1`
	createCouponSQL    = `INSERT INTO coupons (name, discount_type, discount_value)
		VALUES ($1, $2, $3) RETURNING id`

	memberCouponColumns = `mc.id, mc.member_id, mc.expires_at, c.id, c.name, c.discount_type, c.discount_value`

	getMemberCouponByIDSQL = `SELECT ` + memberCouponColumns + `
		FROM member_coupons mc JOIN coupons c ON c.id = mc.coupon_id
		WHERE mc.id = $1`

	getNotExpiredByMemberSQL = `SELECT ` + memberCouponColumns + `
		FROM member_coupons mc JOIN coupons c ON c.id = mc.coupon_id
		WHERE mc.member_id = $1 AND mc.expires_at >= $2 ORDER BY mc.id`

	createMemberCouponSQL = `INSERT INTO member_coupons (member_id, coupon_id, expires_at)
		VALUES ($1, $2, $3) RETURNING id`
)

var (
	_ coupon.Repository             = (*CouponRepository)(nil)
	_ coupon.MemberCouponRepository = (*MemberCouponRepository)(nil)
)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByID returns a coupon definition by ID.
func (r *CouponRepository) FindByID(ctx context.Context, id int64) (*coupon.Coupon, error) {
	return r.findOne(ctx, getCouponByIDSQL, id)
}

// FindByName returns a coupon definition by its unique name.
func (r *CouponRepository) FindByName(ctx context.Context, name string) (*coupon.Coupon, error) {
	return r.findOne(ctx, getCouponByNameSQL, name)
}

// Save inserts a coupon definition and assigns its ID.
func (r *CouponRepository) Save(ctx context.Context, c *coupon.Coupon) error {
	err := r.pool.QueryRow(ctx, createCouponSQL, c.Name, string(c.Type), c.Value).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating coupon %q: %w", c.Name, err)
	}
	return nil
}

func (r *CouponRepository) findOne(ctx context.Context, sql string, arg any) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("finding coupon: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon: %w", err)
	}
	return &c, nil
}

// MemberCouponRepository implements coupon.MemberCouponRepository backed by
// PostgreSQL. Consumption of a grant happens inside the order placement
// transaction in OrderRepository, not here.
type MemberCouponRepository struct {
	pool *pgxpool.Pool
}

// NewMemberCouponRepository returns a MemberCouponRepository that uses the
// given pool.
func NewMemberCouponRepository(pool *pgxpool.Pool) *MemberCouponRepository {
	return &MemberCouponRepository{pool: pool}
}

// FindByID returns a member coupon with its coupon definition joined in.
func (r *MemberCouponRepository) FindByID(ctx context.Context, id int64) (*coupon.MemberCoupon, error) {
	rows, err := r.pool.Query(ctx, getMemberCouponByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting member coupon %d: %w", id, err)
	}

	mc, err := pgx.CollectExactlyOneRow(rows, scanMemberCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("getting member coupon %d: %w", id, err)
	}
	return &mc, nil
}

// FindNotExpiredByMember returns the member's grants whose expiry is at or
// after now, in storage order.
func (r *MemberCouponRepository) FindNotExpiredByMember(ctx context.Context, memberID int64, now time.Time) ([]coupon.MemberCoupon, error) {
	rows, err := r.pool.Query(ctx, getNotExpiredByMemberSQL, memberID, now)
	if err != nil {
		return nil, fmt.Errorf("listing coupons of member %d: %w", memberID, err)
	}
	return pgx.CollectRows(rows, scanMemberCoupon)
}

// Save grants a coupon to a member and assigns the grant's ID.
func (r *MemberCouponRepository) Save(ctx context.Context, mc *coupon.MemberCoupon) error {
	err := r.pool.QueryRow(ctx, createMemberCouponSQL, mc.MemberID, mc.Coupon.ID, mc.ExpiresAt).Scan(&mc.ID)
	if err != nil {
		return fmt.Errorf("granting coupon %d to member %d: %w", mc.Coupon.ID, mc.MemberID, err)
	}
	return nil
}

// SaveAll grants coupons in bulk using a single batch round trip.
func (r *MemberCouponRepository) SaveAll(ctx context.Context, mcs []coupon.MemberCoupon) error {
	batch := &pgx.Batch{}
	for i := range mcs {
		mc := &mcs[i]
		batch.Queue(createMemberCouponSQL, mc.MemberID, mc.Coupon.ID, mc.ExpiresAt).QueryRow(func(row pgx.Row) error {
			return row.Scan(&mc.ID)
		})
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("granting %d coupons: %w", len(mcs), err)
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c   coupon.Coupon
		typ string
	)
	if err := row.Scan(&c.ID, &c.Name, &typ, &c.Value); err != nil {
		return coupon.Coupon{}, err
	}
	c.Type = coupon.Type(typ)
	return c, nil
}

func scanMemberCoupon(row pgx.CollectableRow) (coupon.MemberCoupon, error) {
	var (
		mc    coupon.MemberCoupon
		typ   string
		value decimal.Decimal
	)
	err := row.Scan(
		&mc.ID, &mc.MemberID, &mc.ExpiresAt,
		&mc.Coupon.ID, &mc.Coupon.Name, &typ, &value,
	)
	if err != nil {
		return coupon.MemberCoupon{}, err
	}
	mc.Coupon.Type = coupon.Type(typ)
	mc.Coupon.Value = value
	return mc, nil
}
