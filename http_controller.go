package tourbase

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// AuthControllerRoutes holds the paths the controller mounts.
type AuthControllerRoutes struct {
	Signup         string
	Login          string
	ForgotPassword string
	ResetPassword  string
	UpdatePassword string
	Me             string
}

// AuthController exposes the credential lifecycle over JSON.
type AuthController struct {
	Logger    Logger
	Repo      RepositoryManager
	Auther    Authenticator
	Tokens    TokenService
	Messenger Messenger
	Routes    *AuthControllerRoutes

	register      *RegisterUserHandler
	resetInit     *InitializePasswordResetHandler
	resetFinalize *FinalizePasswordResetHandler
	pwdUpdate     *UpdatePasswordHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func defaultAuthRoutes() *AuthControllerRoutes {
	return &AuthControllerRoutes{
		Signup:         "/signup",
		Login:          "/login",
		ForgotPassword: "/forgotPassword",
		ResetPassword:  "/resetPassword",
		UpdatePassword: "/updateMyPassword",
		Me:             "/me",
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	controller := &AuthController{
		Logger: defLogger{},
		Routes: defaultAuthRoutes(),
	}

	for _, opt := range opts {
		if opt != nil {
			controller = opt(controller)
		}
	}

	controller.register = NewRegisterUserHandler(controller.Repo, controller.Tokens)
	controller.resetInit = NewInitializePasswordResetHandler(controller.Repo, controller.Messenger).
		WithLogger(controller.Logger)
	controller.resetFinalize = NewFinalizePasswordResetHandler(controller.Repo, controller.Tokens).
		WithLogger(controller.Logger)
	controller.pwdUpdate = NewUpdatePasswordHandler(controller.Repo, controller.Tokens)

	return controller
}

func WithLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithRepositoryManager(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithTokenService(tokens TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithMessenger(messenger Messenger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Messenger = messenger
		return c
	}
}

// RegisterAuthRoutes mounts the credential lifecycle under the given router.
// The protect handler is the auth gate; routes that need it compose it
// explicitly, the role gate (if any) always comes after.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController, protect fiber.Handler) {
	app.Post(controller.Routes.Signup, controller.Signup)
	app.Post(controller.Routes.Login, controller.Login)
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPassword)
	app.Patch(fmt.Sprintf("%s/:secret", controller.Routes.ResetPassword), controller.ResetPassword)

	app.Patch(controller.Routes.UpdatePassword, protect, controller.UpdateMyPassword)
	app.Get(controller.Routes.Me, protect, controller.Me)
}

// Signup registers a new identity and logs it in.
func (a *AuthController) Signup(c *fiber.Ctx) error {
	payload := RegisterUserMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid request body").
			WithCode(goerrors.CodeBadRequest)
	}

	resp, err := a.register.Execute(c.UserContext(), payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(TokenResponse{
		Status: StatusSuccess,
		Token:  resp.Token,
		Data:   fiber.Map{"user": resp.User},
	})
}

// LoginPayload is the login request body. It carries no Validate on
// purpose: a malformed email must fail the same way a wrong one does,
// with the generic credentials error, not a validation response.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a fresh session token.
func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := LoginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid request body").
			WithCode(goerrors.CodeBadRequest)
	}

	if payload.Email == "" || payload.Password == "" {
		return ErrMissingCredentials
	}

	user, token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(TokenResponse{
		Status: StatusSuccess,
		Token:  token,
		Data:   fiber.Map{"user": user},
	})
}

// ForgotPasswordPayload is the reset-request body.
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ForgotPassword starts the one-time reset flow. The plaintext secret only
// travels out-of-band; the response confirms delivery, nothing more.
func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	payload := ForgotPasswordPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid request body").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/users%s", c.Protocol(), c.Hostname(), a.Routes.ResetPassword)

	_, err := a.resetInit.Execute(c.UserContext(), InitializePasswordResetMessage{
		Email:    payload.Email,
		ResetURL: resetURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status":  StatusSuccess,
		"message": "Email sent successfully",
	})
}

// ResetPassword consumes the one-time secret from the URL and sets the new
// password.
func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	payload := FinalizePasswordResetMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid request body").
			WithCode(goerrors.CodeBadRequest)
	}
	payload.Secret = c.Params("secret")

	resp, err := a.resetFinalize.Execute(c.UserContext(), payload)
	if err != nil {
		return err
	}

	return c.JSON(TokenResponse{
		Status: StatusSuccess,
		Token:  resp.Token,
		Data:   fiber.Map{"user": resp.User},
	})
}

// UpdateMyPassword changes the authenticated identity's password.
func (a *AuthController) UpdateMyPassword(c *fiber.Ctx) error {
	user, ok := UserFromLocals(c, "")
	if !ok {
		return ErrNotLoggedIn
	}

	payload := UpdatePasswordMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid request body").
			WithCode(goerrors.CodeBadRequest)
	}
	payload.UserID = user.ID

	resp, err := a.pwdUpdate.Execute(c.UserContext(), payload)
	if err != nil {
		return err
	}

	return c.JSON(TokenResponse{
		Status: StatusSuccess,
		Token:  resp.Token,
		Data:   fiber.Map{"user": resp.User},
	})
}

// Me returns the authenticated identity.
func (a *AuthController) Me(c *fiber.Ctx) error {
	user, ok := UserFromLocals(c, "")
	if !ok {
		return ErrNotLoggedIn
	}

	return c.JSON(TokenResponse{
		Status: StatusSuccess,
		Data:   fiber.Map{"user": user},
	})
}
