package customer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"storefront-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *postgresRepo) Create(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	addresses, err := json.Marshal(customer.Addresses)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO customers (email, password_hash, first_name, last_name, addresses)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
RETURNING id::text, created_at
`
	res := customer
	err = r.pool.QueryRow(ctx, q,
		customer.Email,
		customer.PasswordHash,
		customer.FirstName,
		customer.LastName,
		addresses,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Printf("customer repo: create email=%s already exists", customer.Email)
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("customer repo: create email=%s error=%v", customer.Email, err)
		return nil, err
	}
	r.logger.Printf("customer repo: created email=%s id=%s", res.Email, res.ID)
	return &res, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `
SELECT id::text, email, password_hash, COALESCE(first_name, ''), COALESCE(last_name, ''), addresses, created_at
FROM customers
WHERE email = $1
`
	return r.fetchCustomer(ctx, q, email)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `
SELECT id::text, email, password_hash, COALESCE(first_name, ''), COALESCE(last_name, ''), addresses, created_at
FROM customers
WHERE id = $1
`
	return r.fetchCustomer(ctx, q, id)
}

func (r *postgresRepo) fetchCustomer(ctx context.Context, q string, arg interface{}) (*domain.Customer, error) {
	var c domain.Customer
	var addresses []byte
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&c.FirstName,
		&c.LastName,
		&addresses,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(addresses) > 0 {
		if err := json.Unmarshal(addresses, &c.Addresses); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
