package customer

import (
	"context"

	"storefront-backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}
