package driving

import (
	"context"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// ContentEvents receives mutation notifications from the content store.
// Every relevant mutation invalidates the whole cache space of its content type.
type ContentEvents interface {
	// OnSave handles item create/update
	OnSave(ctx context.Context, contentType domain.ContentType, id string) error

	// OnStatusChange handles a status transition; unchanged status is ignored
	OnStatusChange(ctx context.Context, contentType domain.ContentType, id, oldStatus, newStatus string) error

	// OnTermsChanged handles taxonomy term (re)assignment
	OnTermsChanged(ctx context.Context, contentType domain.ContentType, id, taxonomy string) error

	// OnAttributeChanged handles attribute update or deletion
	OnAttributeChanged(ctx context.Context, contentType domain.ContentType, id, key string) error

	// OnDelete handles item deletion
	OnDelete(ctx context.Context, contentType domain.ContentType, id string) error

	// Handle dispatches a decoded event to the matching hook
	Handle(ctx context.Context, event domain.ContentEvent) error
}
