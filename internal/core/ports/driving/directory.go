package driving

import (
	"context"
	"net/url"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// DirectoryService renders filtered, paginated directory listings
type DirectoryService interface {
	// Render resolves the request state and returns the directory HTML and
	// canonical URL. Content-store failures are reported through
	// RenderResult.Status, not as an error.
	Render(ctx context.Context, contentType domain.ContentType, attrs domain.DirectoryAttributes, params url.Values) (*domain.RenderResult, error)

	// Profile returns the directory profile for a content type
	Profile(contentType domain.ContentType) (domain.DirectoryProfile, error)

	// Profiles lists every configured directory profile
	Profiles() []domain.DirectoryProfile
}
