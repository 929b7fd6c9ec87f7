package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TablePrefix marks the table name inside a wrapped ErrNoRows, e.g.
// fmt.Errorf("table:clients: %w", pgx.ErrNoRows).
const TablePrefix = "table:"

var uniqueKeySuffix = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// violation describes how one class of constraint failure reaches the client.
type violation struct {
	suffix   string
	status   int
	override bool
}

var violations = map[Code]violation{
	ForeignKeyViolation: {suffix: "NOT_FOUND", status: http.StatusBadRequest},
	UniqueViolation:     {suffix: "ALREADY_EXISTS", status: http.StatusBadRequest, override: true},
	NotNullViolation:    {suffix: "REQUIRED", status: http.StatusBadRequest, override: true},
	CheckViolation:      {suffix: "INVALID", status: http.StatusBadRequest, override: true},
	InvalidTextRep:      {suffix: "INVALID", status: http.StatusBadRequest, override: true},
	ExclusionViolation:  {suffix: "CONFLICT", status: http.StatusConflict, override: true},
}

// ConsultOverlapConstraint is the exclusion constraint that keeps a
// consultant's live consults from overlapping.
const ConsultOverlapConstraint = "consults_no_overlap"

// namedConstraints gives specific constraints their own code and message
// instead of the ones derived from the table.
var namedConstraints = map[string]struct{ code, message string }{
	ConsultOverlapConstraint: {
		code:    "CONSULT_CONFLICT",
		message: "The consultant already has a consult during this time",
	},
}

// ErrCode reports the Code of err if it wraps an *Error, Other otherwise.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError converts a raw *pgconn.PgError into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// WrapNotFound tags pgx.ErrNoRows with the table so HandleError can name
// the missing entity. Other errors pass through untouched.
func WrapNotFound(err error, table string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s%s: %w", TablePrefix, table, err)
	}
	return err
}

// HandleError converts a low-level database error into an application error.
// HTTPErrors pass through; Postgres constraint failures become 400 or 409,
// missing rows 404, and everything else a bare 500.
func HandleError(err error) error {
	if _, ok := errs.AsHTTPError(err); ok {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return fromConstraint(ConvertPgError(pgerr))
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return notFound(err)
	}

	return errs.NewInternalServerError()
}

func fromConstraint(e *Error) error {
	v, known := violations[e.Code]
	if !known {
		return errs.NewInternalServerError()
	}

	httpErr := &errs.HTTPError{
		Code:     errorCode(e.TableName, v.suffix),
		Message:  describe(e),
		Status:   v.status,
		Override: v.override,
	}
	if named, ok := namedConstraints[e.ConstraintName]; ok {
		httpErr.Code = named.code
		httpErr.Message = named.message
	}
	if e.Code == NotNullViolation {
		httpErr.Errors = []errs.FieldError{{Field: strings.ToLower(e.ColumnName), Error: "is required"}}
	}
	return httpErr
}

func notFound(err error) error {
	_, tagged, found := strings.Cut(err.Error(), TablePrefix)
	if !found {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}
	table, _, _ := strings.Cut(tagged, ":")
	return errs.NewNotFoundError(entityName(table, "")+" not found", true, nil)
}

// errorCode builds codes such as USER_ALREADY_EXISTS or CONSULT_CONFLICT.
func errorCode(table, suffix string) string {
	if table == "" {
		table = "RECORD"
	}
	return strings.ToUpper(singularize(table)) + "_" + suffix
}

func describe(e *Error) string {
	entity := entityName(e.TableName, e.ColumnName)
	column := humanize(e.ColumnName)

	switch e.Code {
	case ForeignKeyViolation:
		// Deleting a referenced row reports the referencing table.
		if strings.Contains(e.Message, "still referenced") || strings.Contains(e.Message, "update or delete") {
			return "This " + entity + " is still in use and cannot be deleted"
		}
		return "The referenced " + entity + " does not exist"
	case UniqueViolation:
		what := humanize(extractColumnForUniqueViolation(e.ConstraintName))
		if what == "" {
			what = "identifier"
		}
		return fmt.Sprintf("A %s with this %s already exists", entity, what)
	case NotNullViolation:
		if column == "" {
			column = "field"
		}
		return "The " + column + " is required"
	case CheckViolation:
		if column == "" {
			return "One or more values do not meet required conditions"
		}
		return "The " + column + " value does not meet required conditions"
	case ExclusionViolation:
		return "This " + entity + " overlaps with an existing one"
	case InvalidTextRep:
		return "One or more identifiers are malformed"
	}
	return "An error occurred while processing your request"
}

// entityName prefers an "<x>_id" column, then the singular table name.
func entityName(table, column string) string {
	if col := strings.ToLower(column); strings.HasSuffix(col, "_id") {
		return humanize(strings.TrimSuffix(col, "_id"))
	}
	if table != "" {
		return humanize(singularize(table))
	}
	return "record"
}

func singularize(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "ies") && len(name) > 3 {
		return name[:len(name)-3] + "y"
	}
	if strings.HasSuffix(lower, "s") && len(name) > 1 {
		return name[:len(name)-1]
	}
	return name
}

// humanize turns "starts_at" into "Starts At".
func humanize(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// extractColumnForUniqueViolation reads the column out of constraints named
// "unique_<table>_<column>" or "<table>_<column>_key".
func extractColumnForUniqueViolation(constraint string) string {
	if strings.HasPrefix(constraint, "unique_") {
		if parts := strings.Split(constraint, "_"); len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}
	if m := uniqueKeySuffix.FindStringSubmatch(constraint); len(m) > 1 {
		return m[1]
	}
	return ""
}
