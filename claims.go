package tourbase

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the decoded payload of a bearer token: identity id plus
// issuance time, with the registered expiry.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID  string   `json:"uid,omitempty"`
	Role UserRole `json:"role,omitempty"`
}

// UserID returns the identity id the token was issued for.
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// UserRole returns the role captured at issuance. The auth gate reloads the
// identity, so authorization always uses the current role, not this one.
func (c *SessionClaims) UserRole() UserRole {
	return c.Role
}

// IssuedAt returns the issuance time, or the zero time when absent.
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expires returns the expiration time, or the zero time when absent.
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}
