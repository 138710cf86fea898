// Package cache stores resolved style results between runs.
//
// The CLI uses [FileCache] under the user cache directory, the HTTP service
// can share results across instances with [RedisCache], and [NullCache]
// disables caching. Keys come from a [Keyer] so that a change to the
// catalog, the defaults schema or the request produces a different key.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they hold.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultTTL is how long resolved results are kept when no TTL is configured.
const DefaultTTL = 24 * time.Hour
