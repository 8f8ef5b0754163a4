// File: services/handoff/interface.go
package handoff

import (
	"context"
	"fmt"
	"strings"

	"igbridge/config"
	"igbridge/models"
	"igbridge/utils"

	"go.uber.org/zap"
)

// Store parks a resolved credential bundle under a device code until the
// device picks it up. Take removes what it returns, so each bundle is
// delivered at most once.
type Store interface {
	Put(ctx context.Context, deviceCode string, bundle models.CredentialBundle) error
	Take(ctx context.Context, deviceCode string) (*models.CredentialBundle, bool, error)
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// New builds the store selected by HANDOFF_BACKEND.
func New(cfg config.Config, logger *zap.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.HandoffBackend))
	switch backend {
	case "", BackendMemory:
		logger.Info("handoff: using in-memory store", zap.Duration("ttl", cfg.HandoffTTL))
		return NewMemoryStore(cfg.HandoffTTL), nil
	case BackendRedis:
		client, err := utils.NewHandoffRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("handoff: using redis store",
			zap.String("addr", cfg.RedisAddr),
			zap.Int("db", cfg.RedisHandoffDB),
			zap.Duration("ttl", cfg.HandoffTTL))
		return NewRedisStore(client, cfg.HandoffTTL), nil
	default:
		return nil, fmt.Errorf("handoff: unknown backend %q", cfg.HandoffBackend)
	}
}
