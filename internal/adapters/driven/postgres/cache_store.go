package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.CacheStore   = (*CacheStore)(nil)
	_ driven.CacheSweeper = (*CacheStore)(nil)
)

// CacheStore implements driven.CacheStore on the directory_cache table.
// Expired rows are invisible to Get and removed by Sweep.
type CacheStore struct {
	db *DB
}

// NewCacheStore creates a new CacheStore
func NewCacheStore(db *DB) *CacheStore {
	return &CacheStore{db: db}
}

func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM directory_cache WHERE key = $1 AND expires_at > NOW()`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `
		INSERT INTO directory_cache (key, value, stored_at, expires_at)
		VALUES ($1, $2, NOW(), NOW() + make_interval(secs => $3))
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			stored_at = EXCLUDED.stored_at,
			expires_at = EXCLUDED.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, ttl.Seconds()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *CacheStore) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM directory_cache WHERE key LIKE $1 ESCAPE '\'`, escapeLike(prefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("delete prefix %s: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Sweep deletes expired rows
func (s *CacheStore) Sweep(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM directory_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("sweep cache: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *CacheStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
