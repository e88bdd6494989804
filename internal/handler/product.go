package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/money"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/product"
)

type productRequest struct {
	Name     string
	Price    money.Money
	ImageURL string

	hasPrice bool
}

func decodeProductRequest(data []byte) (productRequest, error) {
	var req productRequest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			req.Name, err = d.Str()
		case "price":
			req.Price, err = decodeMoney(d)
			req.hasPrice = err == nil
		case "imageUrl":
			req.ImageURL, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}

func encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	encodeMoney(e, p.Price)
	e.FieldStart("imageUrl")
	e.Str(p.ImageURL)
	e.ObjEnd()
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for i := range products {
		encodeProduct(e, &products[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeProduct(e, p)
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := decodeProductRequest(data)
	if err != nil {
		badRequest(w, "malformed product")
		return
	}
	if req.Name == "" || !req.hasPrice {
		badRequest(w, "name and price are required")
		return
	}

	p := product.New(req.Name, req.Price, req.ImageURL)
	if err := h.products.Create(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeProduct(e, p)
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := decodeProductRequest(data)
	if err != nil {
		badRequest(w, "malformed product")
		return
	}
	if req.Name == "" || !req.hasPrice {
		badRequest(w, "name and price are required")
		return
	}

	p := &product.Product{ID: id, Name: req.Name, Price: req.Price, ImageURL: req.ImageURL}
	if err := h.products.Update(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
