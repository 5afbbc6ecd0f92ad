package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
)

// AuthService validates and issues API bearer tokens
type AuthService interface {
	// ValidateToken validates a JWT token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// IssueToken creates a signed token for a subject and role
	IssueToken(ctx context.Context, subject string, role domain.Role, ttl time.Duration) (string, error)
}
