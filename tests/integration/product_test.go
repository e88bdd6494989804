//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 3 {
		t.Fatalf("expected at least 3 products, got %d", len(products))
	}

	byName := make(map[string]productResponse)
	for _, p := range products {
		byName[p.Name] = p
	}
	chicken, ok := byName["chicken"]
	if !ok {
		t.Fatal("seeded product chicken missing")
	}
	if chicken.Price != 12000 {
		t.Errorf("chicken price: got %v, want 12000", chicken.Price)
	}
}

func TestGetProduct_Unknown(t *testing.T) {
	resp := doGet(t, "/products/999999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != "NOT_FOUND_PRODUCT" {
		t.Errorf("code: got %q, want NOT_FOUND_PRODUCT", body.Code)
	}
}
