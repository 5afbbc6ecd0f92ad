package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// listingCache wraps a CacheStore so that backend failures degrade to
// misses and no-op writes. Payloads are stored in a CacheEntry envelope.
type listingCache struct {
	store  driven.CacheStore
	logger *slog.Logger
	now    func() time.Time
}

func newListingCache(store driven.CacheStore, logger *slog.Logger) *listingCache {
	return &listingCache{store: store, logger: logger, now: time.Now}
}

// load decodes the entry under key into dst. It reports false on a miss, a
// backend failure, a corrupt entry or an entry from another version.
func (c *listingCache) load(ctx context.Context, snap Snapshot, key string, dst any) bool {
	if c.store == nil || !snap.Cacheable {
		return false
	}

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("discarding corrupt cache entry", "key", key, "error", err)
		return false
	}
	if entry.Key != key || entry.Version != snap.Version {
		return false
	}
	if err := json.Unmarshal(entry.Payload, dst); err != nil {
		c.logger.Warn("discarding corrupt cache payload", "key", key, "error", err)
		return false
	}
	return true
}

// save writes payload under key. Failures are logged and otherwise ignored.
func (c *listingCache) save(ctx context.Context, snap Snapshot, key string, payload any, ttl time.Duration) {
	if c.store == nil || !snap.Cacheable {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("cache payload encode failed", "key", key, "error", err)
		return
	}
	raw, err := json.Marshal(domain.CacheEntry{
		Key:      key,
		Version:  snap.Version,
		Payload:  data,
		StoredAt: c.now().UTC(),
		TTL:      ttl,
	})
	if err != nil {
		c.logger.Warn("cache entry encode failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
