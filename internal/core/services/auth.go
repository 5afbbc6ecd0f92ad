package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// defaultTokenTTL applies when IssueToken is called without a TTL
const defaultTokenTTL = 24 * time.Hour

// authService implements the AuthService interface
type authService struct {
	tokens driven.TokenAdapter
}

// NewAuthService creates a new AuthService
func NewAuthService(tokens driven.TokenAdapter) driving.AuthService {
	return &authService{tokens: tokens}
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(_ context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.tokens.ParseToken(token)
	if errors.Is(err, domain.ErrTokenExpired) {
		return nil, domain.ErrTokenExpired
	}
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}

	if !claims.Role.IsValid() {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.AuthContext{
		Subject: claims.Subject,
		Role:    claims.Role,
	}, nil
}

// IssueToken creates a signed token for a subject and role
func (s *authService) IssueToken(_ context.Context, subject string, role domain.Role, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" || !role.IsValid() {
		return "", domain.ErrInvalidInput
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	now := time.Now()
	return s.tokens.GenerateToken(&domain.TokenClaims{
		Subject:   subject,
		Role:      role,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
}
