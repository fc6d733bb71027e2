package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Category    string    `json:"category,omitempty"`
	Deal        bool      `json:"deal"`
	CreatedAt   time.Time `json:"createdAt"`
}
