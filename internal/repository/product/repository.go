package product

import (
	"context"

	"storefront-backend/internal/domain"
)

type Repository interface {
	List(ctx context.Context, limit int) ([]domain.Product, error)
	ListDeals(ctx context.Context, limit int) ([]domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
