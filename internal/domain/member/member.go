// Package member holds the member aggregate and its lookup interface.
// Authentication itself lives at the HTTP boundary; the rest of the service
// only ever sees an already-resolved member.
package member

import (
	"context"
	"crypto/subtle"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a member does not exist or credentials do not
// match. The two cases are deliberately indistinguishable to callers.
var ErrNotFound = errors.New("member not found")

// Member is a registered customer.
type Member struct {
	ID       int64
	Email    string
	password string
}

// New creates a Member with the given credentials.
func New(id int64, email, password string) *Member {
	return &Member{ID: id, Email: email, password: password}
}

// CheckPassword reports whether the given password matches, in constant time.
func (m *Member) CheckPassword(password string) bool {
	return subtle.ConstantTimeCompare([]byte(m.password), []byte(password)) == 1
}

// Repository provides member lookups.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Member, error)
	FindByEmail(ctx context.Context, email string) (*Member, error)
}
