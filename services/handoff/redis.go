package handoff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"igbridge/models"

	"github.com/go-redis/redis/v8"
)

const handoffPrefix = "handoff:"

// RedisStore shares pending bundles between bridge replicas. Take relies on
// GETDEL, so it needs Redis 6.2 or later.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, deviceCode string, bundle models.CredentialBundle) error {
	if bundle.CreatedAt.IsZero() {
		bundle.CreatedAt = time.Now()
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to marshal credential bundle: %w", err)
	}
	// A zero ttl means no expiry in go-redis.
	if err := s.client.Set(ctx, handoffPrefix+deviceCode, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save credential bundle: %w", err)
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, deviceCode string) (*models.CredentialBundle, bool, error) {
	data, err := s.client.GetDel(ctx, handoffPrefix+deviceCode).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to take credential bundle: %w", err)
	}
	var bundle models.CredentialBundle
	if err := json.Unmarshal([]byte(data), &bundle); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal credential bundle: %w", err)
	}
	return &bundle, true, nil
}

// Ping reports whether the backing Redis answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ Store = (*RedisStore)(nil)
