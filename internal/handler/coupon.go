package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/coupon"
)

func encodeMemberCoupon(e *jx.Encoder, mc *coupon.MemberCoupon) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(mc.ID)
	e.FieldStart("name")
	e.Str(mc.Coupon.Name)
	e.FieldStart("discountType")
	e.Str(string(mc.Coupon.Type))
	e.FieldStart("value")
	e.Num(jx.Num(mc.Coupon.Value.String()))
	e.FieldStart("expiresAt")
	e.Str(mc.ExpiresAt.UTC().Format(time.RFC3339))
	e.ObjEnd()
}

// listCoupons returns the member's not yet expired coupon grants.
func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	m := memberFrom(r.Context())

	grants, err := h.coupons.FindNotExpiredByMember(r.Context(), m.ID, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for i := range grants {
		encodeMemberCoupon(e, &grants[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}
