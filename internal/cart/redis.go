package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisMirror persists cart copies in redis so a session can come up with a
// usable cart while the backend is down. Writes are best-effort; the session
// logs and swallows mirror errors.
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMirror(client *redis.Client, ttl time.Duration) *RedisMirror {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisMirror{client: client, ttl: ttl}
}

func (m *RedisMirror) Load(ctx context.Context, customerID string) (*domain.Cart, error) {
	raw, err := m.client.Get(ctx, mirrorKey(customerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMirrorMiss
		}
		return nil, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (m *RedisMirror) Store(ctx context.Context, customerID string, cart domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, mirrorKey(customerID), raw, m.ttl).Err()
}

func mirrorKey(customerID string) string {
	return "cart:" + customerID
}
