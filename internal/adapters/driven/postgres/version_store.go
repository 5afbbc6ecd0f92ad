package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VersionStore = (*VersionStore)(nil)

// VersionStore implements driven.VersionStore on the cache_versions table
type VersionStore struct {
	db *DB
}

// NewVersionStore creates a new VersionStore
func NewVersionStore(db *DB) *VersionStore {
	return &VersionStore{db: db}
}

func (s *VersionStore) Get(ctx context.Context, contentType domain.ContentType) (int64, bool, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM cache_versions WHERE content_type = $1`, string(contentType),
	).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get version %s: %w", contentType, err)
	}
	return version, true, nil
}

// Increment inserts an unseen type at 2 (its implicit version is 1) or adds
// one in the same statement, so concurrent bumps are never lost.
func (s *VersionStore) Increment(ctx context.Context, contentType domain.ContentType) (int64, error) {
	query := `
		INSERT INTO cache_versions (content_type, version, updated_at)
		VALUES ($1, 2, NOW())
		ON CONFLICT (content_type) DO UPDATE SET
			version = cache_versions.version + 1,
			updated_at = NOW()
		RETURNING version
	`
	var version int64
	if err := s.db.QueryRowContext(ctx, query, string(contentType)).Scan(&version); err != nil {
		return 0, fmt.Errorf("increment version %s: %w", contentType, err)
	}
	return version, nil
}

func (s *VersionStore) List(ctx context.Context) (map[domain.ContentType]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT content_type, version FROM cache_versions`)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.ContentType]int64)
	for rows.Next() {
		var ct string
		var version int64
		if err := rows.Scan(&ct, &version); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		out[domain.ContentType(ct)] = version
	}
	return out, rows.Err()
}
