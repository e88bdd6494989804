// Package handler exposes the service over HTTP: JSON codecs, basic-auth
// member resolution, and routing.
package handler

import (
	"net/http"

	"github.com/drunkenhw/jwp-shopping-order/internal/domain/cart"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/coupon"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/member"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/order"
	"github.com/drunkenhw/jwp-shopping-order/internal/domain/product"
)

// Handler implements the HTTP API, delegating business logic to the injected
// domain services and repositories.
type Handler struct {
	members  member.Repository
	products product.Repository
	carts    *cart.Service
	coupons  coupon.MemberCouponRepository
	orders   *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	members member.Repository,
	products product.Repository,
	carts *cart.Service,
	coupons coupon.MemberCouponRepository,
	orders *order.Service,
) *Handler {
	return &Handler{
		members:  members,
		products: products,
		carts:    carts,
		coupons:  coupons,
		orders:   orders,
	}
}

// Routes builds the API router. Catalog routes are open; cart, coupon, and
// order routes require basic authentication.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("GET /products/{id}", h.getProduct)
	mux.HandleFunc("POST /products", h.createProduct)
	mux.HandleFunc("PUT /products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /products/{id}", h.deleteProduct)

	mux.Handle("GET /cart-items", h.authenticated(h.listCartItems))
	mux.Handle("POST /cart-items", h.authenticated(h.addCartItem))
	mux.Handle("PATCH /cart-items/{id}", h.authenticated(h.changeCartItemQuantity))
	mux.Handle("DELETE /cart-items/{id}", h.authenticated(h.removeCartItem))

	mux.Handle("GET /coupons", h.authenticated(h.listCoupons))

	mux.Handle("POST /orders", h.authenticated(h.placeOrder))
	mux.Handle("GET /orders", h.authenticated(h.listOrders))
	mux.Handle("GET /orders/{id}", h.authenticated(h.getOrder))

	return mux
}
