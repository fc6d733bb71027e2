package cart

import (
	"context"

	"storefront-backend/internal/domain"
)

// Repository stores cart documents keyed by customer identifier. There is no
// line-item level operation: Upsert replaces the whole document.
type Repository interface {
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	Upsert(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
}
