package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.CacheStore   = (*CacheStore)(nil)
	_ driven.CacheSweeper = (*CacheStore)(nil)
)

// CacheStore keeps entries as an 8-byte big-endian expiry (unix nanos)
// followed by the value. Expired entries are skipped on read and removed
// by Sweep.
type CacheStore struct {
	store *Store
}

// NewCacheStore creates a cache store on an open Store
func NewCacheStore(store *Store) *CacheStore {
	return &CacheStore{store: store}
}

func (c *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.store.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketCache).Get([]byte(key))
		if raw == nil || c.expired(raw) {
			return domain.ErrCacheMiss
		}
		value = append([]byte(nil), raw[8:]...)
		return nil
	})
	return value, err
}

func (c *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	raw := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(raw, uint64(c.store.now().Add(ttl).UnixNano()))
	copy(raw[8:], value)

	return c.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCache).Put([]byte(key), raw)
	})
}

// DeleteByPrefix seeks to prefix and deletes until keys stop matching
func (c *CacheStore) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	deleted := 0
	err := c.store.db.Update(func(tx *bolt.Tx) error {
		cur := tx.Bucket(bucketCache).Cursor()
		p := []byte(prefix)
		for k, _ := cur.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = cur.Seek(p) {
			if err := cur.Delete(); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

// Sweep removes expired entries
func (c *CacheStore) Sweep(ctx context.Context) (int, error) {
	var expired [][]byte
	err := c.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCache)
		err := b.ForEach(func(k, v []byte) error {
			if c.expired(v) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return len(expired), err
}

func (c *CacheStore) Ping(ctx context.Context) error {
	return c.store.db.View(func(tx *bolt.Tx) error { return nil })
}

func (c *CacheStore) expired(raw []byte) bool {
	if len(raw) < 8 {
		return true
	}
	expiresAt := int64(binary.BigEndian.Uint64(raw[:8]))
	return c.store.now().UnixNano() >= expiresAt
}
