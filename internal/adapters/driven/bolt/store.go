// Package bolt provides single-process cache and version stores on bbolt.
// bbolt serialises writers, so increments inside one Update are atomic.
package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCache    = []byte("directory_cache")
	bucketVersions = []byte("cache_versions")
)

// Store owns the bbolt file shared by CacheStore and VersionStore
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCache, bucketVersions} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database file
func (s *Store) Close() error {
	return s.db.Close()
}
