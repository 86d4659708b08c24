package tourbase

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by structured errors so callers can branch on failure
// kind without string matching.
const (
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeBadCredentials    = "BAD_CREDENTIALS"
	TextCodeNotLoggedIn       = "NOT_LOGGED_IN"
	TextCodeStaleToken        = "STALE_TOKEN"
	TextCodeNotAuthorized     = "NOT_AUTHORIZED"
	TextCodeResetSecretDenied = "RESET_SECRET_DENIED"
	TextCodeDeliveryFailure   = "DELIVERY_FAILURE"
	TextCodeDuplicateField    = "DUPLICATE_FIELD"
)

// ErrTokenExpired is returned for tokens past their expiry. The auth gate
// surfaces it as a generic 401 but the distinction stays available for logs.
var ErrTokenExpired = goerrors.New("Your token has expired. Please log in again", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for tokens with a bad signature or shape.
var ErrTokenMalformed = goerrors.New("Invalid token. Please log in again", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrIncorrectCredentials deliberately does not distinguish an unknown email
// from a wrong password, to resist account enumeration.
var ErrIncorrectCredentials = goerrors.New("Incorrect email or password", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeBadCredentials)

// ErrMissingCredentials is returned when login lacks email or password.
var ErrMissingCredentials = goerrors.New("Please provide email and password", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// ErrNotLoggedIn is returned when a protected route sees no bearer token.
var ErrNotLoggedIn = goerrors.New("You are not logged in. Please log in to continue", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeNotLoggedIn)

// ErrIdentityGone covers a valid token whose identity was deleted after
// issuance.
var ErrIdentityGone = goerrors.New("The user belonging to this token no longer exists", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrStaleToken covers a token issued before a password change.
var ErrStaleToken = goerrors.New("User recently changed password. Please log in again", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeStaleToken)

// ErrNotAuthorized is the role gate rejection.
var ErrNotAuthorized = goerrors.New("You are not authorized to perform this action", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode(TextCodeNotAuthorized)

// ErrResetSecretInvalid intentionally keeps wrong and expired secrets
// indistinguishable to the client.
var ErrResetSecretInvalid = goerrors.New("The reset secret is invalid or has expired", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeResetSecretDenied)

// ErrPasswordsDoNotMatch rejects a mismatched confirmation field.
var ErrPasswordsDoNotMatch = goerrors.New("Passwords do not match", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrWrongCurrentPassword rejects an authenticated password change with a
// bad current password.
var ErrWrongCurrentPassword = goerrors.New("Your current password is wrong", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("No user found with the email specified", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrDeliveryFailure is returned when the out-of-band reset message could
// not be sent. The stored reset fields are rolled back before it surfaces.
var ErrDeliveryFailure = goerrors.New("There was an error while sending the email. Please try again later", goerrors.CategoryOperation).
	WithCode(goerrors.CodeInternal).
	WithTextCode(TextCodeDeliveryFailure)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
