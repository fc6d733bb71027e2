package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-backend/internal/domain"
)

func TestHTTPBackendFetch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/carts/guest-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(domain.Cart{
			CustomerID: "guest-1",
			Currency:   "USD",
			Items:      []domain.CartItem{{SKU: "SKU-1", UnitPriceCents: 1000, Quantity: 2}},
		})
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL, srv.Client())
	backend.SetToken("tok-123")

	cart, err := backend.Fetch(context.Background(), "guest-1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if cart.CustomerID != "guest-1" || len(cart.Items) != 1 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestHTTPBackendFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL, srv.Client())
	if _, err := backend.Fetch(context.Background(), "guest-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPBackendSave(t *testing.T) {
	var received domain.Cart
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(received)
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL, srv.Client())
	err := backend.Save(context.Background(), domain.Cart{
		CustomerID: "guest-1",
		Currency:   "USD",
		Items:      []domain.CartItem{{SKU: "SKU-1", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if received.CustomerID != "guest-1" || len(received.Items) != 1 {
		t.Fatalf("unexpected document %+v", received)
	}
}

func TestHTTPBackendSaveErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL, srv.Client())
	if err := backend.Save(context.Background(), domain.Cart{CustomerID: "guest-1"}); err == nil {
		t.Fatalf("expected error on 500")
	}
}
