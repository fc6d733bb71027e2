package seed

import (
	"context"
	"fmt"

	"storefront-backend/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Apply inserts the sample catalog used by /api/init and manual testing.
// It is idempotent via upsert on SKU.
func Apply(ctx context.Context, repo ProductWriter) error {
	products := []domain.Product{
		{
			SKU:         "SKU-LAPTOP-AIR",
			Key:         "ultralight-laptop",
			Name:        "Ultralight Laptop 13",
			Description: "Thin and light 13-inch laptop with all-day battery",
			PriceCents:  99900,
			Currency:    "USD",
			Thumbnail:   "/images/laptop-air.jpg",
			Rating:      4.6,
			Category:    "computers",
			Deal:        true,
		},
		{
			SKU:         "SKU-PHONE-PRO",
			Key:         "pro-phone",
			Name:        "Pro Phone 15",
			Description: "Flagship phone with triple camera",
			PriceCents:  109900,
			Currency:    "USD",
			Thumbnail:   "/images/phone-pro.jpg",
			Rating:      4.8,
			Category:    "phones",
		},
		{
			SKU:         "SKU-HEADSET-NC",
			Key:         "noise-cancelling-headset",
			Name:        "Noise Cancelling Headset",
			Description: "Over-ear wireless headset with active noise cancelling",
			PriceCents:  24900,
			Currency:    "USD",
			Thumbnail:   "/images/headset-nc.jpg",
			Rating:      4.4,
			Category:    "audio",
			Deal:        true,
		},
		{
			SKU:         "SKU-WATCH-FIT",
			Key:         "fitness-watch",
			Name:        "Fitness Watch",
			Description: "Water resistant watch with heart-rate tracking",
			PriceCents:  19900,
			Currency:    "USD",
			Thumbnail:   "/images/watch-fit.jpg",
			Rating:      4.2,
			Category:    "wearables",
		},
		{
			SKU:         "SKU-SPEAKER-MINI",
			Key:         "mini-speaker",
			Name:        "Mini Bluetooth Speaker",
			Description: "Pocket speaker with surprisingly big sound",
			PriceCents:  4900,
			Currency:    "USD",
			Thumbnail:   "/images/speaker-mini.jpg",
			Rating:      4.0,
			Category:    "audio",
			Deal:        true,
		},
	}

	for _, p := range products {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	return nil
}
