package driving

import (
	"context"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// CacheAdminService exposes administrative cache operations
type CacheAdminService interface {
	// Versions returns the current cache version of every directory
	Versions(ctx context.Context) (map[domain.ContentType]int64, error)

	// Bump invalidates every cached listing of a content type
	Bump(ctx context.Context, contentType domain.ContentType) (int64, error)

	// Flush deletes cached entries of a content type (all types when empty)
	// and bumps the affected versions
	Flush(ctx context.Context, contentType domain.ContentType) (*domain.FlushResult, error)

	// Sweep removes expired entries from backends that need it
	Sweep(ctx context.Context) (int, error)

	// Ping checks the cache backend
	Ping(ctx context.Context) error
}
