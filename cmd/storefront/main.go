package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"storefront-backend/internal/cart"
	"storefront-backend/internal/checkout"
	"storefront-backend/internal/config"
	"storefront-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Walks the full storefront flow against a running API: load the catalog,
// fill a cart through the reconciliation session, then drive the checkout
// wizard to a placed order. Useful as a smoke check of a deployed stack.
func main() {
	var apiBase, customerID string
	var items int
	flag.StringVar(&apiBase, "api", "http://localhost:8080", "Base URL of the storefront API")
	flag.StringVar(&customerID, "customer", "", "Customer id (default: a new guest id)")
	flag.IntVar(&items, "items", 2, "How many catalog products to add")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.LUTC)

	if customerID == "" {
		customerID = cart.NewGuestID()
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	ctx := context.Background()
	backend := cart.NewHTTPBackend(apiBase, nil)
	mirror := cart.NewRedisMirror(rdb, 0)
	session := cart.NewSession(ctx, customerID, backend, mirror, logger)

	products, err := fetchProducts(ctx, apiBase, items)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}
	if len(products) == 0 {
		logger.Fatalf("catalog is empty; run cmd/seed or POST /api/init first")
	}

	wizard := checkout.NewWizard(session, checkout.Options{}, logger)

	for _, p := range products {
		err := session.Add(ctx, domain.CartItem{
			SKU:            p.SKU,
			ProductID:      p.ID,
			Title:          p.Name,
			UnitPriceCents: p.PriceCents,
			Currency:       p.Currency,
			Quantity:       1,
			Thumbnail:      p.Thumbnail,
		})
		if err != nil {
			logger.Fatalf("add %s: %v", p.SKU, err)
		}
		wizard.CartChanged()
		logger.Printf("added %s (%s)", p.Name, p.SKU)
	}
	logger.Printf("cart %s: %d units, %d cents", session.CustomerID(), session.Count(), session.TotalCents())

	err = wizard.CompleteShipping(checkout.ShippingDetails{
		FirstName: "Smoke",
		LastName:  "Test",
		Address:   "1 Demo Street",
		City:      "Springfield",
		State:     "IL",
		Zip:       "62704",
		Phone:     "555-0100",
		Method:    "standard",
	})
	if err != nil {
		logger.Fatalf("shipping: %v", err)
	}
	err = wizard.CompletePayment(checkout.PaymentDetails{
		CardNumber:     "4111111111111111",
		Expiry:         "12/30",
		CVV:            "123",
		CardholderName: "Smoke Test",
	})
	if err != nil {
		logger.Fatalf("payment: %v", err)
	}
	logger.Printf("shipping cost: %d cents", wizard.ShippingCostCents())

	orderID, err := wizard.PlaceOrder(ctx)
	if err != nil {
		logger.Fatalf("place order: %v", err)
	}
	fmt.Printf("order %s placed, cart now holds %d units\n", orderID, session.Count())
}

func fetchProducts(ctx context.Context, apiBase string, limit int) ([]domain.Product, error) {
	url := fmt.Sprintf("%s/products?limit=%d", strings.TrimRight(apiBase, "/"), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list products: unexpected status %d", resp.StatusCode)
	}
	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, err
	}
	return products, nil
}
