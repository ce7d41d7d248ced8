package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeUnknownUser        = "UNKNOWN_USER"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeMissingEmail       = "PROFILE_EMAIL_MISSING"
	TextCodeUnauthorized       = "UNAUTHORIZED"
)

// ErrIdentityNotFound is returned when a login email has no user record.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUnknownUser).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is returned when the password comparison
// fails, and for federated-only records that carry no password hash.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateEmail is returned when registration hits the store's unique
// email constraint.
var ErrDuplicateEmail = errors.New("email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeConflict)

// ErrTokenExpired marks a token whose signature verified but whose expiry
// has elapsed.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers every other verification failure: bad
// signature, wrong signing method, garbage input.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrMissingProfileEmail is returned when a federated profile exposes no
// verified email to reconcile on.
var ErrMissingProfileEmail = errors.New("profile has no verified email", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingEmail).
	WithCode(errors.CodeBadRequest)

// ErrUnauthorized is the uniform boundary error for every authentication
// failure. Callers never learn whether a token was missing, expired, or
// tampered with; the distinction only reaches the logs.
var ErrUnauthorized = errors.New("Unauthorized. No valid tokens.", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// IsDuplicateEmail reports whether err carries the duplicate-email
// conflict, however deeply the store error was wrapped.
func IsDuplicateEmail(err error) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.TextCode == TextCodeDuplicateEmail
}

// IsAuthFailure reports whether err is an authentication failure the
// session gate may convert into a 401, as opposed to a store failure
// that must surface as an internal error.
func IsAuthFailure(err error) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	switch rich.Category {
	case errors.CategoryAuth, errors.CategoryNotFound:
		return true
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed")
}
