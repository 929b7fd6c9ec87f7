package errs

import "net/http"

// NewUnauthorizedError is a 401. override marks message as user-facing.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message, override)
}

// NewSessionExpiredError is a 401 carrying a login action so the frontend
// drops its state and shows the login page.
func NewSessionExpiredError() *HTTPError {
	err := NewUnauthorizedError("Your session has expired, please sign in again", true)
	err.Action = &Action{Type: ActionTypeLogin, Message: "Sign in to continue", Value: "/login"}
	return err
}

func NewForbiddenError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusForbidden, message, override)
}

// NewBadRequestError is a 400. A non-nil code replaces BAD_REQUEST.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	err := newHTTPError(http.StatusBadRequest, message, override)
	if code != nil {
		err.Code = *code
	}
	err.Errors = errors
	err.Action = action
	return err
}

func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	err := newHTTPError(http.StatusNotFound, message, override)
	if code != nil {
		err.Code = *code
	}
	return err
}

// NewConflictError is a 409 for writes that collide with existing state,
// such as a double-booked consultant.
func NewConflictError(message string, code string) *HTTPError {
	err := newHTTPError(http.StatusConflict, message, true)
	if code != "" {
		err.Code = code
	}
	return err
}

func NewPayloadTooLargeError(message string) *HTTPError {
	err := newHTTPError(http.StatusRequestEntityTooLarge, message, true)
	err.Code = "PAYLOAD_TOO_LARGE"
	return err
}

func NewTooManyRequestsError() *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, "Too many requests, slow down", true)
}

// NewInternalServerError never carries the cause; that only goes to the logs.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false)
}

// ValidationError wraps a generic validation failure as a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}

// FieldValidationError is a 400 for a single offending field.
func FieldValidationError(field, message string) *HTTPError {
	return NewBadRequestError("Validation failed", true, nil, []FieldError{{Field: field, Error: message}}, nil)
}
