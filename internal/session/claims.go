package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the access token payload as issued by the storefront backend.
// Field names vary between backend versions, so the role and identity
// accessors fall through the known variants.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"user_id,omitempty"`
	UserType string `json:"user_type,omitempty"`
	Role     string `json:"role,omitempty"`
	IsStaff  bool   `json:"is_staff,omitempty"`
}

// ParseClaims decodes the payload of an access token without verifying the
// signature. Verification belongs to the server; this decode is for display
// and for seeding local state, which is never trusted until the token is
// verified remotely.
func ParseClaims(token string) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(token, &claims)
	if err != nil {
		return nil, fmt.Errorf("decode token payload: %w", err)
	}
	return &claims, nil
}

// UserRole returns the best-effort role carried by the token.
func (c *Claims) UserRole() string {
	if c.UserType != "" {
		return c.UserType
	}
	if c.Role != "" {
		return c.Role
	}
	if c.IsStaff {
		return "staff"
	}
	return ""
}

// Identity returns the user identifier carried by the token, falling back
// to the subject claim.
func (c *Claims) Identity() string {
	if c.UserID != 0 {
		return fmt.Sprintf("%d", c.UserID)
	}
	return c.Subject
}
