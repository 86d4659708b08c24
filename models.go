package tourbase

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned at signup
	RoleUser UserRole = "user"
	// RoleGuide can be assigned to tour guides
	RoleGuide UserRole = "guide"
	// RoleLeadGuide leads tours and can manage them
	RoleLeadGuide UserRole = "lead-guide"
	// RoleAdmin has full access
	RoleAdmin UserRole = "admin"
)

// passwordChangedSkew compensates for hashing latency: the recorded change
// time is pulled back by this much so a token minted in the same second as
// a password change still compares as stale.
const passwordChangedSkew = time.Second

// User is the identity model. The password hash and the reset fields never
// serialize outward.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID                   uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name                 string     `bun:"name,notnull" json:"name,omitempty"`
	Email                string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Role                 UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	PasswordHash         string     `bun:"password_hash" json:"-"`
	PasswordChangedAt    *time.Time `bun:"password_changed_at,nullzero" json:"-"`
	ResetSecretHash      *string    `bun:"reset_secret_hash,nullzero" json:"-"`
	ResetSecretExpiresAt *time.Time `bun:"reset_secret_expires_at,nullzero" json:"-"`
	CreatedAt            *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt            *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt            *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Validate runs the full-field validation pass. Patch writes that store or
// clear reset fields bypass it on purpose.
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&u.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&u.Role, validation.Required, validation.In(RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin)),
		validation.Field(&u.PasswordHash, validation.Required),
	)
}

// ChangedPasswordAfter reports whether the password was rotated after the
// given token issuance time. Identities that never changed their password
// have no anchor and always report false.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Before(*u.PasswordChangedAt)
}

// TouchPasswordChangedAt stamps the rotation anchor, pulled back by the skew
// buffer.
func (u *User) TouchPasswordChangedAt() {
	changed := time.Now().Add(-passwordChangedSkew)
	u.PasswordChangedAt = &changed
}

// HasActiveResetSecret reports whether a reset secret is stored and not yet
// past its expiry. Expiry is evaluated lazily, there is no sweep.
func (u *User) HasActiveResetSecret() bool {
	if u.ResetSecretHash == nil || u.ResetSecretExpiresAt == nil {
		return false
	}
	return time.Now().Before(*u.ResetSecretExpiresAt)
}

// NormalizeEmail lower-cases and trims an email so lookups and the unique
// index agree on a single form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
