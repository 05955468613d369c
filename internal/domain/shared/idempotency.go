package shared

import (
	"context"
	"time"
)

// IdempotencyStore maps caller-supplied idempotency keys to the identifier of
// the resource created on first use, so that a retried request replays the
// original result instead of creating a duplicate.
type IdempotencyStore interface {
	// Remember stores the key -> resourceID mapping with a TTL.
	// Returns false if the key was already present.
	Remember(ctx context.Context, key, resourceID string, ttl time.Duration) (bool, error)

	// Lookup returns the resource ID stored for the key, or "" if absent.
	Lookup(ctx context.Context, key string) (string, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for remembered keys
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
