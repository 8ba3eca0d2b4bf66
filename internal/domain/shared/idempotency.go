package shared

import (
	"context"
	"time"
)

// IdempotencyStore records claimed request keys and delivered event ids
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It reports false when a live claim
	// already exists.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a claim so the key can be used again
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig holds the Idempotency-Key settings
type IdempotencyConfig struct {
	Enabled bool
	// TTL is how long a claimed key blocks a repeat request
	TTL time.Duration
}

// DefaultIdempotencyConfig enables keys for 24 hours
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{Enabled: true, TTL: 24 * time.Hour}
}
