package tourbase

import (
	"context"

	"github.com/google/uuid"
)

// Auther implements Authenticator on top of the users repository and the
// token service.
type Auther struct {
	repo         RepositoryManager
	signingKey   []byte
	logger       Logger
	tokenService TokenService
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		repo:         repo,
		signingKey:   []byte(opts.GetSigningKey()),
		logger:       defLogger{},
		tokenService: tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies credentials and issues a session token. An unknown email
// and a wrong password fail with the same error on purpose.
func (s *Auther) Login(ctx context.Context, email, password string) (*User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if IsRecordNotFound(err) {
			s.logger.Debug("Login rejected for unknown email")
			return nil, "", ErrIncorrectCredentials
		}
		return nil, "", err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Debug("Login rejected for bad password", "user_id", user.ID.String())
		return nil, "", ErrIncorrectCredentials
	}

	token, err := s.tokenService.Generate(user)
	if err != nil {
		s.logger.Error("Login token generation failed", "error", err)
		return nil, "", err
	}

	return user, token, nil
}

// SessionFromToken verifies a raw bearer token and returns its claims.
func (s *Auther) SessionFromToken(raw string) (*SessionClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

// IdentityFromSession loads the identity the claims were issued for.
func (s *Auther) IdentityFromSession(ctx context.Context, session *SessionClaims) (*User, error) {
	id, err := uuid.Parse(session.UserID())
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrIdentityGone
		}
		s.logger.Error("IdentityFromSession lookup failed", "error", err)
		return nil, err
	}

	return user, nil
}
