package handler

import (
	"context"
	"net/http"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/member"
)

type memberCtxKey struct{}

// memberFrom returns the authenticated member stored by the auth middleware.
func memberFrom(ctx context.Context) *member.Member {
	m, _ := ctx.Value(memberCtxKey{}).(*member.Member)
	return m
}

// authenticated resolves the member from basic-auth credentials and stores it
// in the request context before calling next. Responds 401 when credentials
// are missing or wrong.
func (h *Handler) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		m, err := h.members.FindByEmail(r.Context(), email)
		if err != nil {
			unauthorized(w)
			return
		}
		if !m.CheckPassword(password) {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), memberCtxKey{}, m)
		next(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="shopping-order"`)
	writeErrorBody(w, http.StatusUnauthorized, codeUnauthorized, "invalid credentials")
}
