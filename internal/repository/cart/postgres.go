package cart

import (
	"context"
	"errors"

	"storefront-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	const cartQuery = `
SELECT customer_id, currency, updated_at
FROM carts
WHERE customer_id = $1
`
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, customerID).Scan(&cart.CustomerID, &cart.Currency, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const itemsQuery = `
SELECT sku, COALESCE(product_id, ''), title, unit_price_cents, currency, quantity, COALESCE(thumbnail, '')
FROM cart_items
WHERE cart_customer_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, itemsQuery, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.SKU,
			&item.ProductID,
			&item.Title,
			&item.UnitPriceCents,
			&item.Currency,
			&item.Quantity,
			&item.Thumbnail,
		); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

// Upsert replaces the stored cart document: the carts row is upserted and all
// items are rewritten in one transaction. Items with quantity below one are
// dropped rather than stored.
func (r *postgresRepo) Upsert(ctx context.Context, cart domain.Cart) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	currency := cart.Currency
	if currency == "" {
		currency = "USD"
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO carts (customer_id, currency, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (customer_id) DO UPDATE SET
    currency = EXCLUDED.currency,
    updated_at = now()
`, cart.CustomerID, currency); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM cart_items WHERE cart_customer_id = $1
`, cart.CustomerID); err != nil {
		return nil, err
	}

	position := 0
	for _, item := range cart.Items {
		if item.Quantity < 1 {
			continue
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_customer_id, sku, product_id, title, unit_price_cents, currency, quantity, thumbnail, position)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NULLIF($8, ''), $9)
`, cart.CustomerID, item.SKU, item.ProductID, item.Title, item.UnitPriceCents, item.Currency, item.Quantity, item.Thumbnail, position); err != nil {
			return nil, err
		}
		position++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetByCustomer(ctx, cart.CustomerID)
}
