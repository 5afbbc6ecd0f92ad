package domain

// Role defines what an authenticated API caller may do
type Role string

const (
	// RoleAdmin may inspect, bump and flush directory caches
	RoleAdmin Role = "admin"

	// RolePublisher may report content mutations
	RolePublisher Role = "publisher"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RolePublisher
}

// AuthContext contains the authenticated caller for request context
type AuthContext struct {
	Subject string `json:"subject"`
	Role    Role   `json:"role"`
}

// IsAdmin checks if the authenticated caller is an admin
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanPublish checks if the caller may report content mutations
func (a *AuthContext) CanPublish() bool {
	return a.Role == RoleAdmin || a.Role == RolePublisher
}

// TokenClaims represents the JWT token payload
type TokenClaims struct {
	Subject   string `json:"sub"`
	Role      Role   `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
