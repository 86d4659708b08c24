package tourbase

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email string `json:"email"`
	// ResetURL is the externally reachable base the plaintext secret is
	// appended to, e.g. https://host/api/v1/users/resetPassword
	ResetURL string `json:"-"`
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Email     string
	ExpiresAt time.Time
}

// InitializePasswordResetHandler generates a one-time secret, stores only
// its hash plus an expiry, and delivers the plaintext out-of-band. A failed
// delivery rolls the stored fields back before the error surfaces.
type InitializePasswordResetHandler struct {
	repo      RepositoryManager
	messenger Messenger
	logger    Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, messenger Messenger) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:      repo,
		messenger: messenger,
		logger:    defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) (*InitializePasswordResetResponse, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) (*InitializePasswordResetResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	secret, secretHash, err := GenerateResetSecret()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(ResetSecretTTL)

	// A new request simply overwrites any outstanding secret, most recent
	// wins.
	if err := h.repo.Users().SetResetSecret(ctx, user.ID, secretHash, expiresAt); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset secret")
	}

	subject := "Your password reset link (valid for 10 minutes)"
	body := fmt.Sprintf(
		"Forgot your password? Submit a PATCH request with your password and confirmPassword to: %s/%s\nIf you did not initiate this request please ignore this email.",
		event.ResetURL, secret,
	)

	if err := h.messenger.Send(ctx, user.Email, subject, body); err != nil {
		h.logger.Warn("reset message delivery failed, rolling back reset fields", "error", err)

		if rbErr := h.repo.Users().ClearResetSecret(ctx, user.ID); rbErr != nil {
			h.logger.Error("failed to roll back reset secret", "error", rbErr, "user_id", user.ID.String())
		}

		if IsDeliveryFailure(err) {
			return nil, err
		}
		return nil, goerrors.Wrap(err, ErrDeliveryFailure.Category, ErrDeliveryFailure.Message).
			WithCode(goerrors.CodeInternal).
			WithTextCode(ErrDeliveryFailure.TextCode)
	}

	return &InitializePasswordResetResponse{
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}
