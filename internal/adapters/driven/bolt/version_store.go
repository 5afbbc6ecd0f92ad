package bolt

import (
	"context"
	"encoding/binary"

	bolt "go.etcd.io/bbolt"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VersionStore = (*VersionStore)(nil)

// VersionStore keeps one big-endian uint64 counter per content type
type VersionStore struct {
	store *Store
}

// NewVersionStore creates a version store on an open Store
func NewVersionStore(store *Store) *VersionStore {
	return &VersionStore{store: store}
}

func (v *VersionStore) Get(ctx context.Context, contentType domain.ContentType) (int64, bool, error) {
	var version int64
	var found bool
	err := v.store.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketVersions).Get([]byte(contentType))
		if len(raw) == 8 {
			version = int64(binary.BigEndian.Uint64(raw))
			found = true
		}
		return nil
	})
	return version, found, err
}

// Increment reads and writes inside one Update transaction. An unseen type
// starts from the implicit version 1.
func (v *VersionStore) Increment(ctx context.Context, contentType domain.ContentType) (int64, error) {
	var version int64
	err := v.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVersions)
		version = 1
		if raw := b.Get([]byte(contentType)); len(raw) == 8 {
			version = int64(binary.BigEndian.Uint64(raw))
		}
		version++

		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(version))
		return b.Put([]byte(contentType), buf)
	})
	return version, err
}

func (v *VersionStore) List(ctx context.Context) (map[domain.ContentType]int64, error) {
	out := make(map[domain.ContentType]int64)
	err := v.store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVersions).ForEach(func(k, raw []byte) error {
			if len(raw) == 8 {
				out[domain.ContentType(k)] = int64(binary.BigEndian.Uint64(raw))
			}
			return nil
		})
	})
	return out, err
}
