// Package cache holds the idempotency key stores used by the HTTP layer and
// the event dispatcher.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrRedisNotConfigured is returned when no Redis host is set
var ErrRedisNotConfigured = errors.New("redis host not configured")

// NewIdempotencyStore connects to Redis. When Redis is unreachable and
// allowMemory is set, a process-local MemoryStore is returned instead; keys
// claimed there are invisible to other instances.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, allowMemory bool, log *zap.Logger) (shared.IdempotencyStore, error) {
	err := ErrRedisNotConfigured
	if cfg.Host != "" {
		var store *RedisStore
		if store, err = NewRedisStore(ctx, cfg); err == nil {
			log.Info("idempotency keys stored in redis", zap.String("addr", cfg.Addr()))
			return store, nil
		}
	}
	if !allowMemory {
		return nil, fmt.Errorf("idempotency store unavailable: %w", err)
	}
	log.Warn("idempotency keys stored in memory", zap.Error(err))
	return NewMemoryStore(), nil
}
