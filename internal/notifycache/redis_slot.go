package notifycache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores the notification document under a single Redis key so
// several console instances share one cached view.
type RedisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot wraps an existing client. key names the document; every
// instance polling the same key sees the same list.
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{client: client, key: key}
}

// Load implements Slot. A missing key maps to the absent case.
func (s *RedisSlot) Load(ctx context.Context) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Store implements Slot. The document has no TTL; it lives until cleared.
func (s *RedisSlot) Store(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Clear implements Slot.
func (s *RedisSlot) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
