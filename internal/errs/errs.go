// Package errs defines custom error types and utilities.
//
// It creates specific error structures (FieldErrors for forms, HTTPError for
// API responses) so clients receive meaningful, actionable, and consistent
// error messages.
package errs

import "errors"

// Sentinel errors shared by the service layer. The global error handler maps
// them onto HTTP errors; services may also return HTTPErrors directly.
var (
	// ErrInvalidCredentials is returned by login for an unknown email, a wrong
	// password, or a deactivated account. Callers must not tell them apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionInvalid means the token is unknown, expired, or its user is inactive.
	ErrSessionInvalid = errors.New("session is invalid or expired")
)

// AsHTTPError returns err as an *HTTPError when it is one.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
