// Package cache stores rendered chart artifacts between runs.
//
// Rendering the same chart description at the same size and format always
// produces the same bytes, so artifacts can be looked up by a key derived
// from a hash of the description and the render options.
//
// Three backends are provided:
//   - [NullCache]: never stores anything (the default)
//   - [FileCache]: one JSON file per entry under a directory
//   - [RedisCache]: entries in a Redis instance, shared between processes
//
// Keys are built by a [Keyer]; [ScopedKeyer] prefixes them so several
// tenants (for example server instances) can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
// A ttl of zero means the entry never expires.
type Cache interface {
	// Get returns the data stored under key and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
