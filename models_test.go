package tourbase_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourbase/tourbase"
)

func validUser() tourbase.User {
	return tourbase.User{
		ID:           uuid.New(),
		Name:         "Ann Example",
		Email:        "ann@example.com",
		Role:         tourbase.RoleUser,
		PasswordHash: "$2a$12$fakefakefakefakefakefake",
	}
}

func TestUserValidate(t *testing.T) {
	t.Run("accepts a complete user", func(t *testing.T) {
		user := validUser()
		assert.NoError(t, user.Validate())
	})

	t.Run("rejects missing name", func(t *testing.T) {
		user := validUser()
		user.Name = ""
		assert.Error(t, user.Validate())
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		user := validUser()
		user.Email = "not-an-email"
		assert.Error(t, user.Validate())
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		user := validUser()
		user.Role = "superuser"
		assert.Error(t, user.Validate())
	})

	t.Run("rejects missing password hash", func(t *testing.T) {
		user := validUser()
		user.PasswordHash = ""
		assert.Error(t, user.Validate())
	})
}

func TestUserChangedPasswordAfter(t *testing.T) {
	t.Run("false when password never changed", func(t *testing.T) {
		user := validUser()
		assert.False(t, user.ChangedPasswordAfter(time.Now()))
	})

	t.Run("true for tokens issued before the change", func(t *testing.T) {
		user := validUser()
		changed := time.Now()
		user.PasswordChangedAt = &changed

		issuedAt := changed.Add(-time.Hour)
		assert.True(t, user.ChangedPasswordAfter(issuedAt))
	})

	t.Run("false for tokens issued after the change", func(t *testing.T) {
		user := validUser()
		changed := time.Now().Add(-time.Hour)
		user.PasswordChangedAt = &changed

		assert.False(t, user.ChangedPasswordAfter(time.Now()))
	})
}

func TestUserTouchPasswordChangedAt(t *testing.T) {
	user := validUser()
	user.TouchPasswordChangedAt()

	require.NotNil(t, user.PasswordChangedAt)

	// The anchor is pulled back so a token minted in the same second as the
	// change still reads as stale.
	assert.True(t, user.PasswordChangedAt.Before(time.Now()))
	assert.True(t, user.ChangedPasswordAfter(time.Now().Add(-time.Hour)))
	assert.False(t, user.ChangedPasswordAfter(time.Now()))
}

func TestUserHasActiveResetSecret(t *testing.T) {
	t.Run("false with no secret", func(t *testing.T) {
		user := validUser()
		assert.False(t, user.HasActiveResetSecret())
	})

	t.Run("true with unexpired secret", func(t *testing.T) {
		user := validUser()
		hash := tourbase.HashResetSecret("secret")
		expires := time.Now().Add(tourbase.ResetSecretTTL)
		user.ResetSecretHash = &hash
		user.ResetSecretExpiresAt = &expires

		assert.True(t, user.HasActiveResetSecret())
	})

	t.Run("false once the expiry passed", func(t *testing.T) {
		user := validUser()
		hash := tourbase.HashResetSecret("secret")
		expires := time.Now().Add(-time.Minute)
		user.ResetSecretHash = &hash
		user.ResetSecretExpiresAt = &expires

		assert.False(t, user.HasActiveResetSecret())
	})
}

func TestUserJSONHidesCredentialFields(t *testing.T) {
	user := validUser()
	hash := tourbase.HashResetSecret("secret")
	expires := time.Now().Add(tourbase.ResetSecretTTL)
	changed := time.Now()
	user.ResetSecretHash = &hash
	user.ResetSecretExpiresAt = &expires
	user.PasswordChangedAt = &changed

	raw, err := json.Marshal(&user)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Contains(t, decoded, "email")
	assert.Contains(t, decoded, "name")
	assert.Contains(t, decoded, "role")
	assert.NotContains(t, string(raw), user.PasswordHash)
	assert.NotContains(t, string(raw), hash)
	assert.NotContains(t, decoded, "password_hash")
	assert.NotContains(t, decoded, "reset_secret_hash")
	assert.NotContains(t, decoded, "reset_secret_expires_at")
	assert.NotContains(t, decoded, "password_changed_at")
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Ann@Example.COM", "ann@example.com"},
		{"trims whitespace", "  ann@example.com  ", "ann@example.com"},
		{"leaves canonical form alone", "ann@example.com", "ann@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tourbase.NormalizeEmail(tt.input))
		})
	}
}
