package services

import (
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven/mocks"
)

func newTestAuthService() (*mocks.MockTokenAdapter, *authService) {
	tokens := mocks.NewMockTokenAdapter()
	return tokens, NewAuthService(tokens).(*authService)
}

func TestAuthService_IssueAndValidate(t *testing.T) {
	_, svc := newTestAuthService()
	ctx := context.Background()

	token, err := svc.IssueToken(ctx, " cms ", domain.RolePublisher, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	auth, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.Subject != "cms" {
		t.Errorf("expected subject cms, got %s", auth.Subject)
	}
	if !auth.CanPublish() || auth.IsAdmin() {
		t.Errorf("expected publisher permissions, got role %s", auth.Role)
	}
}

func TestAuthService_IssueToken_InvalidInput(t *testing.T) {
	_, svc := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.IssueToken(ctx, "", domain.RoleAdmin, time.Hour); err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for empty subject, got %v", err)
	}
	if _, err := svc.IssueToken(ctx, "ops", "root", time.Hour); err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for unknown role, got %v", err)
	}
}

func TestAuthService_IssueToken_DefaultTTL(t *testing.T) {
	tokens, svc := newTestAuthService()

	token, err := svc.IssueToken(context.Background(), "ops", domain.RoleAdmin, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, _ := tokens.ParseToken(token)
	if got := time.Duration(claims.ExpiresAt-claims.IssuedAt) * time.Second; got != defaultTokenTTL {
		t.Errorf("expected ttl %v, got %v", defaultTokenTTL, got)
	}
}

func TestAuthService_ValidateToken_Errors(t *testing.T) {
	tokens, svc := newTestAuthService()
	ctx := context.Background()

	expired, _ := tokens.GenerateToken(&domain.TokenClaims{
		Subject:   "cms",
		Role:      domain.RolePublisher,
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	badRole, _ := tokens.GenerateToken(&domain.TokenClaims{
		Subject:   "cms",
		Role:      "superuser",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", domain.ErrTokenInvalid},
		{"garbage", "!!!", domain.ErrTokenInvalid},
		{"expired", expired, domain.ErrTokenExpired},
		{"unknown role", badRole, domain.ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(ctx, tt.token)
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
