package driven

import (
	"context"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// VersionStore persists one cache version counter per content type.
type VersionStore interface {
	// Get returns the stored version; found is false for unseen types
	Get(ctx context.Context, contentType domain.ContentType) (version int64, found bool, err error)

	// Increment atomically adds one to the counter at the storage layer and
	// returns the new value. An unseen type counts from 1, so its first
	// increment returns 2.
	Increment(ctx context.Context, contentType domain.ContentType) (int64, error)

	// List returns every stored counter
	List(ctx context.Context) (map[domain.ContentType]int64, error)
}
