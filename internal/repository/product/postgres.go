package product

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, sku, key, name, COALESCE(description, ''), price_cents, currency, COALESCE(thumbnail, ''), rating, COALESCE(category, ''), deal, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, limit int) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
ORDER BY created_at DESC
LIMIT $1
`
	return r.queryProducts(ctx, q, clampLimit(limit))
}

func (r *postgresRepo) ListDeals(ctx context.Context, limit int) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE deal
ORDER BY created_at DESC
LIMIT $1
`
	return r.queryProducts(ctx, q, clampLimit(limit))
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE sku = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, sku).Scan(
		&p.ID, &p.SKU, &p.Key, &p.Name, &p.Description, &p.PriceCents, &p.Currency,
		&p.Thumbnail, &p.Rating, &p.Category, &p.Deal, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get sku=%s not found", sku)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get sku=%s error=%v", sku, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (sku, key, name, description, price_cents, currency, thumbnail, rating, category, deal)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, NULLIF($9, ''), $10)
ON CONFLICT (sku) DO UPDATE SET
    key = EXCLUDED.key,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    thumbnail = EXCLUDED.thumbnail,
    rating = EXCLUDED.rating,
    category = EXCLUDED.category,
    deal = EXCLUDED.deal
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.SKU,
		product.Key,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Currency,
		product.Thumbnail,
		product.Rating,
		product.Category,
		product.Deal,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert sku=%s error=%v", product.SKU, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted sku=%s id=%s", res.SKU, res.ID)
	return &res, nil
}

func (r *postgresRepo) queryProducts(ctx context.Context, q string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: query error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Key, &p.Name, &p.Description, &p.PriceCents, &p.Currency,
			&p.Thumbnail, &p.Rating, &p.Category, &p.Deal, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
