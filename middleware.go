package tourbase

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GateConfig configures the per-request auth gate.
type GateConfig struct {
	// Validator verifies raw bearer tokens.
	Validator TokenValidator
	// Repo resolves the identity behind a verified claim.
	Repo RepositoryManager
	// AuthScheme defaults to "Bearer".
	AuthScheme string
	// ContextKey is where the resolved identity is stored in Locals.
	ContextKey string
	Logger     Logger
}

func (cfg *GateConfig) setDefaults() {
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}
	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}
}

// Protected builds the auth gate: it extracts the bearer token, verifies it,
// loads the identity, and rejects tokens issued before the identity's last
// password change. On success the identity lands in Locals under the
// configured key. Expired and malformed tokens are logged distinctly but
// both fail with a generic 401.
func Protected(cfg GateConfig) fiber.Handler {
	cfg.setDefaults()

	return func(c *fiber.Ctx) error {
		raw, ok := extractBearerToken(c.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
		if !ok {
			return ErrNotLoggedIn
		}

		claims, err := cfg.Validator.Validate(raw)
		if err != nil {
			if IsTokenExpiredError(err) {
				cfg.Logger.Info("auth gate rejected expired token", "path", c.Path())
				return ErrTokenExpired
			}
			cfg.Logger.Info("auth gate rejected malformed token", "path", c.Path())
			return ErrTokenMalformed
		}

		id, err := uuid.Parse(claims.UserID())
		if err != nil {
			return ErrTokenMalformed
		}

		user, err := cfg.Repo.Users().GetByID(c.UserContext(), id)
		if err != nil {
			if IsRecordNotFound(err) {
				// Identity deleted after the token was issued.
				return ErrIdentityGone
			}
			return err
		}

		if user.ChangedPasswordAfter(claims.IssuedAt()) {
			cfg.Logger.Info("auth gate rejected stale token", "user_id", user.ID.String())
			return ErrStaleToken
		}

		c.Locals(cfg.ContextKey, user)
		c.SetUserContext(WithContext(WithClaimsContext(c.UserContext(), claims), user))

		return c.Next()
	}
}

// RequireRoles is the role gate: it checks the identity attached by the auth
// gate against a fixed allow-set. It must be composed after Protected.
func RequireRoles(contextKey string, roles ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromLocals(c, contextKey)
		if !ok {
			// The gate never ran; treat as unauthenticated rather than
			// leaking an internal ordering mistake.
			return ErrNotLoggedIn
		}

		if !RoleAllowed(user.Role, roles) {
			return ErrNotAuthorized
		}

		return c.Next()
	}
}

func extractBearerToken(header, scheme string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], scheme) {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
