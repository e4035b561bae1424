package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks processed request keys so retried clone and
// import requests are executed at most once within the TTL window
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases resources held by the store
	Close() error
}
