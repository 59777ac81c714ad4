// Package store defines the key-value persistence interface used to snapshot
// per-application wizard state. The backend is pluggable: the service runs
// with a pure in-memory store or a Redis-backed one.
package store

import (
	"context"
	"time"
)

// KVStore is a minimal key-value collaborator. Implementations must treat a
// missing key as (nil, false, nil), not as an error.
type KVStore interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix. Used for the
	// "clear everything" store teardown.
	DeletePrefix(ctx context.Context, prefix string) error
	// Close releases any underlying resources.
	Close() error
}
