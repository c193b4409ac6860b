package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error is an operational error carrying the HTTP status to report
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status is the envelope status word: "fail" for 4xx, "error" otherwise
func (e *Error) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

// New creates an operational error
func New(message string, statusCode int) *Error {
	return &Error{StatusCode: statusCode, Message: message}
}

func BadRequest(message string) *Error {
	return New(message, http.StatusBadRequest)
}

func Unauthorized(message string) *Error {
	return New(message, http.StatusUnauthorized)
}

func Forbidden(message string) *Error {
	return New(message, http.StatusForbidden)
}

func NotFound(message string) *Error {
	return New(message, http.StatusNotFound)
}

func Conflict(message string) *Error {
	return New(message, http.StatusConflict)
}

func NotImplemented(message string) *Error {
	return New(message, http.StatusNotImplemented)
}

// uniqueConstraintFields maps unique index names to the field reported
// in duplicate-value conflicts.
var uniqueConstraintFields = map[string]string{
	"idx_doctors_email":          "email",
	"idx_patients_email":         "email",
	"idx_records_doctor_patient": "doctorId",
}

const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02"
)

// Normalize translates storage and validation failures into the error
// taxonomy. Unrecognized errors become opaque 500s.
func Normalize(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			field := uniqueConstraintFields[pgErr.ConstraintName]
			if field == "" {
				field = pgErr.ConstraintName
			}
			return &Error{
				StatusCode: http.StatusConflict,
				Message:    fmt.Sprintf("Duplicate field value: %s", field),
				Err:        err,
			}
		case pgInvalidText:
			return &Error{
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid input value",
				Err:        err,
			}
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{StatusCode: http.StatusNotFound, Message: "Resource not found", Err: err}
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		return &Error{StatusCode: http.StatusBadRequest, Message: validationMessage(valErrs), Err: err}
	}

	return &Error{StatusCode: http.StatusInternalServerError, Message: "Something went wrong", Err: err}
}

func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Invalid request body"
	}
	fe := errs[0]
	if fe.Tag() == "required" {
		return fmt.Sprintf("Invalid request body: %s is required", fe.Field())
	}
	return fmt.Sprintf("Invalid request body: %s failed on %s", fe.Field(), fe.Tag())
}
