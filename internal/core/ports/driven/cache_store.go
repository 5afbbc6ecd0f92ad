package driven

import (
	"context"
	"time"
)

// CacheStore is a TTL key-value store for directory listings (Redis,
// PostgreSQL or bbolt).
type CacheStore interface {
	// Get returns the value stored under key or domain.ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeleteByPrefix removes every key starting with prefix and returns the count.
	// Used for administrative flushes only, never per request.
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)

	// Ping checks if the cache backend is healthy
	Ping(ctx context.Context) error
}

// CacheSweeper is implemented by cache stores that do not expire entries on
// their own and need an explicit sweep of expired rows.
type CacheSweeper interface {
	// Sweep deletes expired entries and returns the count
	Sweep(ctx context.Context) (int, error)
}
