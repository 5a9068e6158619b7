// Package errors provides API error types and their JSON representation.
package errors

import (
	"errors"
	"fmt"
)

// StatusCode represents the HTTP status code an error maps to.
type StatusCode int

const (
	StatusOK            StatusCode = 200
	StatusBadRequest    StatusCode = 400
	StatusNotFound      StatusCode = 404
	StatusUnprocessable StatusCode = 422
	StatusInternal      StatusCode = 500
	StatusUnavailable   StatusCode = 503
)

// ErrValidation is the base error of every request validation failure.
var ErrValidation = errors.New("validation failed")

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorFields is the JSON error body. Detail mirrors FastAPI's error shape.
type ErrorFields struct {
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

// APIError wraps an error with the status code it should be reported as.
type APIError struct {
	Err        error
	StatusCode StatusCode
	Fields     []FieldError
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Err.Error(), e.Fields[0].Field, e.Fields[0].Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError with the given error and status code.
func NewAPIError(err error, code StatusCode) *APIError {
	return &APIError{
		Err:        err,
		StatusCode: code,
	}
}

// NotFound reports a missing resource, e.g. NotFound("Order not found").
func NotFound(detail string) *APIError {
	return NewAPIError(errors.New(detail), StatusNotFound)
}

// BadRequest reports a request that is well formed but refers to invalid data.
func BadRequest(err error) *APIError {
	return NewAPIError(err, StatusBadRequest)
}

// Unprocessable reports a request body that failed validation.
func Unprocessable(fields ...FieldError) *APIError {
	return &APIError{
		Err:        ErrValidation,
		StatusCode: StatusUnprocessable,
		Fields:     fields,
	}
}

// ToErrorFields converts an APIError to ErrorFields for JSON response.
func (e *APIError) ToErrorFields() *ErrorFields {
	return &ErrorFields{
		Detail: e.Err.Error(),
		Errors: e.Fields,
	}
}

// GetAPIError extracts an APIError from an error chain, or returns nil.
func GetAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// Resolve maps any error to a status code and response body.
// Errors without an APIError in their chain become an opaque 500.
func Resolve(err error) (StatusCode, *ErrorFields) {
	if apiErr := GetAPIError(err); apiErr != nil {
		return apiErr.StatusCode, apiErr.ToErrorFields()
	}
	return StatusInternal, &ErrorFields{Detail: "Internal server error"}
}
