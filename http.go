package tourbase

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Envelope statuses: "fail" for 4xx, "error" otherwise.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// ErrorResponse is the JSON error body. Detail and Stack only appear in
// diagnostic mode.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  any    `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// TokenResponse is the success envelope returned by the credential
// lifecycle endpoints. User serializes without password or reset fields.
type TokenResponse struct {
	Status string `json:"status"`
	Token  string `json:"token,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// StatusLabel maps an HTTP status code to the coarse envelope status.
func StatusLabel(code int) string {
	if code >= 400 && code < 500 {
		return StatusFail
	}
	return StatusError
}

// sqlite: `UNIQUE constraint failed: users.email`
// postgres: `duplicate key value violates unique constraint "users_email_key"`
var (
	sqliteUniqueRe = regexp.MustCompile(`UNIQUE constraint failed: \w+\.(\w+)`)
	pgUniqueRe     = regexp.MustCompile(`duplicate key value violates unique constraint "\w+?_(\w+)_key"`)
)

// ClassifyError normalizes heterogeneous failures into a single rich error
// carrying an HTTP status code. Everything in CategoryInternal is treated as
// non-operational: logged in full, never shown verbatim in restricted mode.
func ClassifyError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorCode(richErr)
	}

	var verrs validation.Errors
	if goerrors.As(err, &verrs) {
		return goerrors.New(
			fmt.Sprintf("Invalid input data. %s", verrs.Error()),
			goerrors.CategoryValidation,
		).WithCode(goerrors.CodeBadRequest)
	}

	if field, ok := duplicateFieldFromError(err); ok {
		return goerrors.Wrap(err, goerrors.CategoryConflict,
			fmt.Sprintf("Duplicate %s value. Please use another value", field)).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeDuplicateField).
			WithMetadata(map[string]any{"field": field})
	}

	if isMalformedIdentifier(err) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound,
			fmt.Sprintf("Invalid identifier: %s", err.Error())).
			WithCode(goerrors.CodeNotFound)
	}

	if goerrors.Is(err, jwt.ErrTokenExpired) || IsTokenExpiredError(err) {
		return ErrTokenExpired
	}

	if IsMalformedError(err) {
		return ErrTokenMalformed
	}

	if goerrors.Is(err, sql.ErrNoRows) || IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "Resource not found").
			WithCode(goerrors.CodeNotFound)
	}

	var fiberErr *fiber.Error
	if goerrors.As(err, &fiberErr) {
		category := goerrors.CategoryBadInput
		if fiberErr.Code >= 500 {
			category = goerrors.CategoryInternal
		}
		return goerrors.Wrap(err, category, fiberErr.Message).WithCode(fiberErr.Code)
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
		WithCode(goerrors.CodeInternal)
}

// IsOperational reports whether the error is an expected, user-facing
// condition rather than a programming fault.
func IsOperational(richErr *goerrors.Error) bool {
	if richErr == nil {
		return false
	}
	return richErr.Category != goerrors.CategoryInternal
}

// NewErrorHandler returns the fiber error boundary. Every failure in the
// handler chain funnels through here: classification first, then rendering
// in diagnostic or restricted presentation depending on the environment.
func NewErrorHandler(cfg Config, logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}
	diagnostic := cfg.GetEnvironment() != EnvProduction

	return func(c *fiber.Ctx, err error) error {
		richErr := ClassifyError(err)

		if diagnostic {
			return sendErrorDiagnostic(c, richErr)
		}
		return sendErrorRestricted(c, logger, richErr)
	}
}

func sendErrorDiagnostic(c *fiber.Ctx, richErr *goerrors.Error) error {
	return c.Status(richErr.Code).JSON(ErrorResponse{
		Status:  StatusLabel(richErr.Code),
		Message: richErr.Message,
		Detail: map[string]any{
			"category":  fmt.Sprintf("%v", richErr.Category),
			"text_code": richErr.TextCode,
			"metadata":  richErr.Metadata,
		},
		Stack: fmt.Sprintf("%+v", richErr),
	})
}

func sendErrorRestricted(c *fiber.Ctx, logger Logger, richErr *goerrors.Error) error {
	if IsOperational(richErr) {
		return c.Status(richErr.Code).JSON(ErrorResponse{
			Status:  StatusLabel(richErr.Code),
			Message: richErr.Message,
		})
	}

	// Programming faults never leak detail to the client.
	logger.Error("unexpected error", "error", richErr, "category", fmt.Sprintf("%v", richErr.Category))

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Status:  StatusError,
		Message: "Something went very wrong!",
	})
}

func ensureErrorCode(richErr *goerrors.Error) *goerrors.Error {
	if richErr.Code != 0 {
		return richErr
	}

	switch richErr.Category {
	case goerrors.CategoryAuth:
		return richErr.WithCode(goerrors.CodeUnauthorized)
	case goerrors.CategoryAuthz:
		return richErr.WithCode(goerrors.CodeForbidden)
	case goerrors.CategoryNotFound:
		return richErr.WithCode(goerrors.CodeNotFound)
	case goerrors.CategoryValidation, goerrors.CategoryBadInput, goerrors.CategoryConflict:
		return richErr.WithCode(goerrors.CodeBadRequest)
	default:
		return richErr.WithCode(goerrors.CodeInternal)
	}
}

func duplicateFieldFromError(err error) (string, bool) {
	msg := err.Error()
	if m := sqliteUniqueRe.FindStringSubmatch(msg); m != nil {
		return m[1], true
	}
	if m := pgUniqueRe.FindStringSubmatch(msg); m != nil {
		return m[1], true
	}
	return "", false
}

func isMalformedIdentifier(err error) bool {
	if uuid.IsInvalidLengthError(err) {
		return true
	}
	return strings.Contains(err.Error(), "invalid UUID")
}
