package domain

import "time"

// Cart is the server-held cart document for one customer identifier.
// The identifier is either an authenticated customer's email or a generated
// guest id. There is no line-item level API: every write replaces the whole
// document.
type Cart struct {
	CustomerID string     `json:"customerId"`
	Currency   string     `json:"currency"`
	Items      []CartItem `json:"items"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CartItem is one line of a cart. Items are keyed by SKU; at most one item
// per SKU exists in a cart and quantities merge on add.
type CartItem struct {
	SKU            string `json:"sku"`
	ProductID      string `json:"productId,omitempty"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Currency       string `json:"currency"`
	Quantity       int    `json:"quantity"`
	Thumbnail      string `json:"thumbnail,omitempty"`
}

// Count returns the total number of units across all items.
func (c Cart) Count() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalCents returns the sum of unit price times quantity over all items.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.UnitPriceCents * int64(item.Quantity)
	}
	return total
}
