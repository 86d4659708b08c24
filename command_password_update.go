package tourbase

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UpdatePasswordMessage struct {
	UserID             uuid.UUID `json:"-"`
	CurrentPassword    string    `json:"currentPassword"`
	NewPassword        string    `json:"newPassword"`
	ConfirmNewPassword string    `json:"confirmNewPassword"`
}

func (p UpdatePasswordMessage) Type() string { return "user.password_update" }

func (p UpdatePasswordMessage) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CurrentPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(8, 72)),
		validation.Field(&p.ConfirmNewPassword, validation.Required),
	)
}

type UpdatePasswordResponse struct {
	User  *User
	Token string
}

// UpdatePasswordHandler is the authenticated password-change path: the
// current password is verified first, then the new one is stored with the
// full validation pass and a fresh token is issued.
type UpdatePasswordHandler struct {
	repo   RepositoryManager
	tokens TokenService
}

func NewUpdatePasswordHandler(repo RepositoryManager, tokens TokenService) *UpdatePasswordHandler {
	return &UpdatePasswordHandler{repo: repo, tokens: tokens}
}

func (h *UpdatePasswordHandler) Execute(ctx context.Context, event UpdatePasswordMessage) (*UpdatePasswordResponse, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdatePasswordHandler) execute(ctx context.Context, event UpdatePasswordMessage) (*UpdatePasswordResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return nil, err
	}

	if event.NewPassword != event.ConfirmNewPassword {
		return nil, ErrPasswordsDoNotMatch
	}

	user := &User{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error

		// Reload rather than trusting the gate's copy, the hash may have
		// rotated since the request started.
		user, err = h.repo.Users().GetByIDTx(ctx, tx, event.UserID)
		if err != nil {
			if IsRecordNotFound(err) {
				return ErrIdentityGone
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve user for password update")
		}

		if err := ComparePasswordAndHash(event.CurrentPassword, user.PasswordHash); err != nil {
			return ErrWrongCurrentPassword
		}

		passwordHash, err := HashPassword(event.NewPassword)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

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
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	user.TouchPasswordChangedAt()

	token, err := h.tokens.Generate(user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session token")
	}

	return &UpdatePasswordResponse{User: user, Token: token}, nil
}
