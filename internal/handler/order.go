package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/order"
)

func decodePlaceRequest(data []byte) (order.PlaceRequest, error) {
	var req order.PlaceRequest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "cartItemIds":
			err = d.Arr(func(d *jx.Decoder) error {
				id, err := d.Int64()
				if err != nil {
					return err
				}
				req.CartItemIDs = append(req.CartItemIDs, id)
				return nil
			})
		case "shippingFee":
			req.ShippingFee, err = decodeMoney(d)
		case "totalPrice":
			req.TotalPrice, err = decodeMoney(d)
		case "couponId":
			if d.Next() == jx.Null {
				return d.Null()
			}
			var id int64
			id, err = d.Int64()
			req.MemberCouponID = &id
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("orderedAt")
	e.Str(o.OrderedAt.UTC().Format(time.RFC3339))
	e.FieldStart("shippingFee")
	encodeMoney(e, o.ShippingFee)
	e.FieldStart("totalPrice")
	encodeMoney(e, o.TotalPrice)
	e.FieldStart("orderItems")
	e.ArrStart()
	for _, line := range o.Lines {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(line.ProductID)
		e.FieldStart("name")
		e.Str(line.Name)
		e.FieldStart("price")
		encodeMoney(e, line.Price)
		e.FieldStart("imageUrl")
		e.Str(line.ImageURL)
		e.FieldStart("quantity")
		e.Int(line.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	m := memberFrom(r.Context())

	data, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := decodePlaceRequest(data)
	if err != nil {
		badRequest(w, "malformed order")
		return
	}
	req.MemberID = m.ID

	id, err := h.orders.Place(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(id)
	e.ObjEnd()

	w.Header().Set("Location", fmt.Sprintf("/orders/%d", id))
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	m := memberFrom(r.Context())

	orders, err := h.orders.ListByMember(r.Context(), m.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for i := range orders {
		encodeOrder(e, &orders[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	m := memberFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.GetByID(r.Context(), id, m.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeOrder(e, o)
	writeJSON(w, http.StatusOK, e)
}
