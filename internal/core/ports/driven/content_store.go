package driven

import (
	"context"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// ContentStore is the read side of the external content store.
// Implementations normalise whatever shape the backing store returns; callers
// always see plain id lists, string attributes and term lists.
type ContentStore interface {
	// QueryIDs returns the ids of every item matching the query, unpaginated
	QueryIDs(ctx context.Context, q domain.ContentQuery) ([]string, error)

	// GetAttribute returns one attribute value; missing attributes yield ""
	GetAttribute(ctx context.Context, id, key string) (string, error)

	// GetTaxonomyTerms returns the terms assigned to an item in a taxonomy
	GetTaxonomyTerms(ctx context.Context, id, taxonomy string) ([]domain.Term, error)

	// Ping checks if the content store is reachable
	Ping(ctx context.Context) error
}
