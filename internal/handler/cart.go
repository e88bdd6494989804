package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/cart"
)

func encodeCartItem(e *jx.Encoder, item *cart.Item) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(item.ID)
	e.FieldStart("quantity")
	e.Int(item.Quantity)
	e.FieldStart("product")
	encodeProduct(e, &item.Product)
	e.ObjEnd()
}

func (h *Handler) listCartItems(w http.ResponseWriter, r *http.Request) {
	m := memberFrom(r.Context())

	items, err := h.carts.List(r.Context(), m.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for i := range items {
		encodeCartItem(e, &items[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	m := memberFrom(r.Context())

	data, ok := readBody(w, r)
	if !ok {
		return
	}

	var (
		productID int64
		quantity  = 1
	)
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			productID, err = d.Int64()
		case "quantity":
			quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		badRequest(w, "malformed cart item")
		return
	}
	if productID <= 0 {
		badRequest(w, "productId is required")
		return
	}

	item, err := h.carts.Add(r.Context(), m.ID, productID, quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeCartItem(e, item)
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) changeCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	m := memberFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	data, ok := readBody(w, r)
	if !ok {
		return
	}

	quantity := -1
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "quantity":
			quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil || quantity < 0 {
		badRequest(w, "quantity must be a non-negative integer")
		return
	}

	if err := h.carts.ChangeQuantity(r.Context(), m.ID, id, quantity); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	m := memberFrom(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.carts.Remove(r.Context(), m.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
