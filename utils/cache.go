package utils

import (
	"context"
	"fmt"
	"time"

	"igbridge/config"

	"github.com/go-redis/redis/v8"
)

// NewHandoffRedisClient connects to the redis database backing the handoff
// store and verifies it with a ping.
func NewHandoffRedisClient(cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisHandoffDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (Handoff): %w", err)
	}
	return client, nil
}
