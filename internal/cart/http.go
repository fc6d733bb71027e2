package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront-backend/internal/domain"
)

// HTTPBackend talks to the cart service over HTTP: get-cart-by-customer and
// whole-document upsert. A bearer token, when set, is attached to every call.
type HTTPBackend struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// SetToken stores the bearer token attached to subsequent calls. An empty
// token clears it (guest mode).
func (b *HTTPBackend) SetToken(token string) {
	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
}

func (b *HTTPBackend) Fetch(ctx context.Context, customerID string) (*domain.Cart, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cartURL(customerID), nil)
	if err != nil {
		return nil, err
	}
	b.attachAuth(req)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var cart domain.Cart
		if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
			return nil, fmt.Errorf("decode cart: %w", err)
		}
		return &cart, nil
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("fetch cart: unexpected status %d", resp.StatusCode)
	}
}

func (b *HTTPBackend) Save(ctx context.Context, cart domain.Cart) error {
	body, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.cartURL(cart.CustomerID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	b.attachAuth(req)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("save cart: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (b *HTTPBackend) cartURL(customerID string) string {
	return b.baseURL + "/carts/" + customerID
}

func (b *HTTPBackend) attachAuth(req *http.Request) {
	b.mu.RLock()
	token := b.token
	b.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
