package tourbase

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&e.ConfirmPassword, validation.Required),
	)
}

type RegisterUserResponse struct {
	User  *User
	Token string
}

// RegisterUserHandler creates a new identity and logs it in. Any role the
// client supplied is ignored, signups always get the default role; elevation
// happens only through the privileged change-role path.
type RegisterUserHandler struct {
	repo   RepositoryManager
	tokens TokenService
}

func NewRegisterUserHandler(repo RepositoryManager, tokens TokenService) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo, tokens: tokens}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*RegisterUserResponse, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*RegisterUserResponse, error) {
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
		hash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.Name = event.Name
		user.Email = NormalizeEmail(event.Email)
		user.PasswordHash = hash
		user.Role = RoleUser

		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		}

		registered, err := h.repo.Users().RegisterTx(ctx, tx, user)
		if err != nil {
			var verrs validation.Errors
			if goerrors.As(err, &verrs) {
				return err
			}
			if field, ok := duplicateFieldFromError(err); ok {
				return goerrors.Wrap(err, goerrors.CategoryConflict,
					fmt.Sprintf("Duplicate field value: %s. Please use another value", user.Email)).
					WithCode(goerrors.CodeBadRequest).
					WithTextCode(TextCodeDuplicateField).
					WithMetadata(map[string]any{
						"field": field,
						"value": user.Email,
					})
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
		}

		user = registered
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		var verrs validation.Errors
		if goerrors.As(err, &verrs) {
			return nil, verrs
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session token")
	}

	return &RegisterUserResponse{User: user, Token: token}, nil
}
