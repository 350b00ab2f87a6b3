package cache

import (
	"context"
	"time"
)

// Cache is the contract the repositories talk to. It hides the concrete
// backend (Redis in production, an in-memory map in tests).
type Cache interface {
	// Get loads the value stored under key and unmarshals it into dest.
	// The bool reports whether the key was present; on a miss dest is
	// left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob-style pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
