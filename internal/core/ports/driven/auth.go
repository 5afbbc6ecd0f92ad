package driven

import "github.com/custodia-labs/sercha-directory/internal/core/domain"

// TokenAdapter signs and verifies bearer tokens for the event and admin APIs
type TokenAdapter interface {
	// GenerateToken creates a signed token from claims
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates a token and extracts its claims
	ParseToken(token string) (*domain.TokenClaims, error)
}
