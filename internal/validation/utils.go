package validation

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Validatable is implemented by request payloads.
type Validatable interface {
	Validate() error
}

// CustomValidationError covers rules struct tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the name the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	return v
}

// Struct runs the tag rules of s. Request types call it from Validate.
func Struct(s any) error {
	return validate.Struct(s)
}

// BindAndValidate binds path, query and body into payload, then validates it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(err)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

func bindError(err error) error {
	if tooLarge(err) {
		return errs.NewPayloadTooLargeError("Request body is too large")
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok && msg != "" {
			return errs.NewBadRequestError(msg, false, nil, nil, nil)
		}
	}
	return errs.NewBadRequestError("Malformed request", false, nil, nil, nil)
}

// tooLarge reports a BodyLimit rejection, which Bind wraps in a 400.
func tooLarge(err error) bool {
	for err != nil {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			return false
		}
		if he.Code == http.StatusRequestEntityTooLarge {
			return true
		}
		err = he.Internal
	}
	return false
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: e.Field, Error: e.Message})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "request", Error: err.Error()}}
	}

	for _, err := range validationErrors {
		var msg string

		switch err.Tag() {
		case "required", "required_without":
			msg = "is required"
		case "min":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}
		case "max":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}
		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())
		case "email":
			msg = "must be a valid email address"
		case "uuid", "uuid4":
			msg = "must be a valid UUID"
		case "datetime":
			msg = "must be a valid date"
		case "gtfield":
			msg = fmt.Sprintf("must be after %s", err.Param())
		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", err.Field(), err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", err.Field(), err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: err.Field(),
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}

// MustUUID parses a string already checked by the uuid tag.
func MustUUID(s string) uuid.UUID {
	return uuid.MustParse(s)
}

// OptionalUUID returns nil for an empty string.
func OptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}

// ParseTime accepts RFC 3339 timestamps and plain dates (midnight UTC).
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

const timeFormatMessage = "must be an RFC 3339 timestamp or YYYY-MM-DD date"

// RequiredTime parses s, reporting failures against field.
func RequiredTime(field, s string) (time.Time, error) {
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, CustomValidationErrors{{Field: field, Message: timeFormatMessage}}
	}
	return t, nil
}

// OptionalTime is RequiredTime that allows an empty string.
func OptionalTime(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := RequiredTime(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// OptionalBool parses "true"/"false"; anything else is nil.
func OptionalBool(s string) *bool {
	switch strings.ToLower(s) {
	case "true", "1":
		b := true
		return &b
	case "false", "0":
		b := false
		return &b
	}
	return nil
}
