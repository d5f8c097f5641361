package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and GetDel when no live entry exists for
// the key. Expired entries are indistinguishable from absent ones.
var ErrNotFound = errors.New("store: key not found")

// Store is the key-value capability behind nonces and API keys. The memory
// implementation is single-process only; multi-instance deployments must use
// the redis implementation so all backends share one view.
type Store interface {
	// Set writes a key with a value and TTL, replacing any previous value.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get retrieves a live value by key.
	Get(ctx context.Context, key string) (string, error)

	// GetDel atomically retrieves and deletes a live value. Exactly one of
	// two concurrent callers for the same key observes the value; this is
	// what makes nonce consumption first-consumer-wins.
	GetDel(ctx context.Context, key string) (string, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
