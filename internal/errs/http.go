package errs

import (
	"net/http"
	"strings"
)

// FieldError names one offending request field, e.g.
// {"field": "startsAt", "error": "is required"}.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType tells the frontend what to do after an error.
type ActionType string

const (
	ActionTypeRedirect ActionType = "redirect"
	// ActionTypeLogin means the session is gone and the login page should be shown.
	ActionTypeLogin ActionType = "login"
)

// Action is an optional follow-up instruction attached to an error body.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the JSON error body every failed request receives.
//
// Code is stable and machine readable (CONSULT_CONFLICT, NOT_FOUND). Override
// marks Message as safe to show to end users verbatim; the error handler
// keeps messages of 5xx errors generic regardless.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
	Action   *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError regardless of code or status.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e carrying message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	cp := *e
	cp.Message = message
	return &cp
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

// statusCode is the default Code for an HTTP status.
func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

func newHTTPError(status int, message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     statusCode(status),
		Message:  message,
		Status:   status,
		Override: override,
	}
}
