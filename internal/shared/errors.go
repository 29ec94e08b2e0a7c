package shared

import (
	"errors"

	"github.com/edumatrix/edumatrix/internal/platform/httpx"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = httpx.ErrNotFound
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage returns err's text when it is a known client-facing error
// and a generic message otherwise.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, httpx.ErrNotFound),
		errors.Is(err, httpx.ErrValidation),
		errors.Is(err, httpx.ErrDuplicate),
		errors.Is(err, httpx.ErrBadRequest),
		errors.Is(err, httpx.ErrForbidden),
		errors.Is(err, httpx.ErrUnauthorized),
		errors.Is(err, httpx.ErrUnauthenticated):
		return err.Error()
	default:
		return "something went wrong, please try again"
	}
}
