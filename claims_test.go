package tourbase_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/tourbase/tourbase"
)

func TestSessionClaimsUserID(t *testing.T) {
	t.Run("prefers the uid claim", func(t *testing.T) {
		claims := &tourbase.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-id"},
			UID:              "uid-id",
		}
		assert.Equal(t, "uid-id", claims.UserID())
	})

	t.Run("falls back to subject", func(t *testing.T) {
		claims := &tourbase.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-id"},
		}
		assert.Equal(t, "subject-id", claims.UserID())
	})
}

func TestSessionClaimsUserRole(t *testing.T) {
	claims := &tourbase.SessionClaims{Role: tourbase.RoleGuide}
	assert.Equal(t, tourbase.RoleGuide, claims.UserRole())
}

func TestSessionClaimsTimes(t *testing.T) {
	t.Run("returns issuance and expiry", func(t *testing.T) {
		issued := time.Now().Truncate(time.Second)
		expires := issued.Add(24 * time.Hour)

		claims := &tourbase.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(issued),
				ExpiresAt: jwt.NewNumericDate(expires),
			},
		}

		assert.True(t, claims.IssuedAt().Equal(issued))
		assert.True(t, claims.Expires().Equal(expires))
	})

	t.Run("zero values when absent", func(t *testing.T) {
		claims := &tourbase.SessionClaims{}

		assert.True(t, claims.IssuedAt().IsZero())
		assert.True(t, claims.Expires().IsZero())
	})
}
