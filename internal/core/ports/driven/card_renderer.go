package driven

import (
	"context"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// CardRenderer renders the display fragment of one indexed item.
type CardRenderer interface {
	RenderCard(ctx context.Context, contentType domain.ContentType, item domain.IndexedItem) (string, error)
}
