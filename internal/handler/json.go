package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/cart"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/coupon"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/member"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/order"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/product"
)

// Stable error codes returned in response bodies. Clients branch on these
// rather than on messages.
const (
	codeInvalidRequest   = "INVALID_REQUEST"
	codeUnauthorized     = "UNAUTHORIZED"
	codeForbidden        = "FORBIDDEN"
	codeNotFoundProduct  = "NOT_FOUND_PRODUCT"
	codeNotFoundCartItem = "NOT_FOUND_CART_ITEM"
	codeNotFoundCoupon   = "NOT_FOUND_COUPON"
	codeExpiredCoupon    = "EXPIRED_COUPON"
	codeNotFoundOrder    = "NOT_FOUND_ORDER"
	codeIncorrectPrice   = "INCORRECT_PRICE"
	codeInternal         = "INTERNAL"
)

const maxBodySize = 1 << 20 // 1 MiB

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Str(code)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e)
}

// writeError maps domain errors onto HTTP statuses and stable codes.
// Unrecognized errors are logged and reported as INTERNAL without leaking
// detail to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var notFoundItem *cart.NotFoundError

	switch {
	case errors.As(err, &notFoundItem):
		writeErrorBody(w, http.StatusNotFound, codeNotFoundCartItem, err.Error())
	case errors.Is(err, product.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, codeNotFoundProduct, err.Error())
	case errors.Is(err, coupon.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, codeNotFoundCoupon, err.Error())
	case errors.Is(err, coupon.ErrExpired):
		writeErrorBody(w, http.StatusBadRequest, codeExpiredCoupon, err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, codeNotFoundOrder, err.Error())
	case errors.Is(err, order.ErrIncorrectPrice):
		writeErrorBody(w, http.StatusBadRequest, codeIncorrectPrice, err.Error())
	case errors.Is(err, order.ErrForbidden), errors.Is(err, cart.ErrNotOwner):
		writeErrorBody(w, http.StatusForbidden, codeForbidden, "access denied")
	case errors.Is(err, member.ErrNotFound):
		writeErrorBody(w, http.StatusUnauthorized, codeUnauthorized, "invalid credentials")
	case errors.Is(err, order.ErrEmptyCartItems),
		errors.Is(err, order.ErrDuplicateCartItems),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, coupon.ErrInvalidDiscountValue),
		errors.Is(err, money.ErrNegativeAmount),
		errors.Is(err, money.ErrInvalidQuantity):
		writeErrorBody(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeErrorBody(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, codeInvalidRequest, message)
}

// readBody reads and size-caps the request body. On failure it writes the
// error response and reports false.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		badRequest(w, "unreadable request body")
		return nil, false
	}
	return data, true
}

// pathID parses the {id} path segment as a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

// encodeMoney writes a monetary amount as a JSON number.
func encodeMoney(e *jx.Encoder, m money.Money) {
	e.Num(jx.Num(m.String()))
}

// decodeMoney parses a JSON number into a monetary amount.
func decodeMoney(d *jx.Decoder) (money.Money, error) {
	n, err := d.Num()
	if err != nil {
		return money.Money{}, err
	}
	return money.Parse(n.String())
}
