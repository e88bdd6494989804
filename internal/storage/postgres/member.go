package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/member"
)

const (
	getMemberByIDSQL    = `SELECT id, email, password FROM members WHERE id = $1`
	getMemberByEmailSQL = `SELECT id, email, password FROM members WHERE email = $1`
)

var _ member.Repository = (*MemberRepository)(nil)

// MemberRepository implements member.Repository backed by PostgreSQL.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a MemberRepository that uses the given pool.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// FindByID returns the member with the given ID.
func (r *MemberRepository) FindByID(ctx context.Context, id int64) (*member.Member, error) {
	return r.findOne(ctx, getMemberByIDSQL, id)
}

// FindByEmail returns the member with the given email.
func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	return r.findOne(ctx, getMemberByEmailSQL, email)
}

func (r *MemberRepository) findOne(ctx context.Context, sql string, arg any) (*member.Member, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("finding member: %w", err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, scanMember)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrNotFound
		}
		return nil, fmt.Errorf("finding member: %w", err)
	}
	return m, nil
}

func scanMember(row pgx.CollectableRow) (*member.Member, error) {
	var (
		id              int64
		email, password string
	)
	if err := row.Scan(&id, &email, &password); err != nil {
		return nil, err
	}
	return member.New(id, email, password), nil
}
