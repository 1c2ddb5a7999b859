package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers already-processed operation keys so that a
// retried request (e.g. a payment registration replayed by a flaky client)
// is applied exactly once.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed for the given TTL. It returns
	// true when the key was newly marked, false when it had been seen before.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether a key has already been processed.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases the store's resources.
	Close() error
}
