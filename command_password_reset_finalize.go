package tourbase

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Secret          string `json:"-"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

func (p FinalizePasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Secret, validation.Required),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&p.ConfirmPassword, validation.Required),
	)
}

type FinalizePasswordResetResponse struct {
	User  *User
	Token string
}

// FinalizePasswordResetHandler consumes a one-time reset secret: it matches
// the incoming secret's hash against an unexpired stored hash, sets the new
// password, clears both reset fields, and issues a fresh session token.
type FinalizePasswordResetHandler struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(repo RepositoryManager, tokens TokenService) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) (*FinalizePasswordResetResponse, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) (*FinalizePasswordResetResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return nil, err
	}

	if event.Password != event.ConfirmPassword {
		return nil, ErrPasswordsDoNotMatch
	}

	user := &User{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error

		// Wrong secret and expired secret land in the same branch on
		// purpose, the client cannot tell them apart.
		user, err = h.repo.Users().GetByResetSecretHashTx(ctx, tx, HashResetSecret(event.Secret))
		if err != nil {
			if IsRecordNotFound(err) {
				return ErrResetSecretInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve password reset request")
		}

		passwordHash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		// Clears the reset fields along with the write, making the secret
		// single-use.
		if err := h.repo.Users().SavePasswordTx(ctx, tx, user.ID, passwordHash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	user.ResetSecretHash = nil
	user.ResetSecretExpiresAt = nil
	user.TouchPasswordChangedAt()

	token, err := h.tokens.Generate(user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session token")
	}

	return &FinalizePasswordResetResponse{User: user, Token: token}, nil
}
