package catalog

import (
	"context"

	"storefront-backend/internal/domain"
	productrepo "storefront-backend/internal/repository/product"
)

// Service is a thin read layer over the product store. The storefront's
// catalog is read-only: no mutation path exists outside seeding and import.
type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.repo.List(ctx, limit)
}

func (s *Service) Deals(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.repo.ListDeals(ctx, limit)
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.repo.GetBySKU(ctx, sku)
}
