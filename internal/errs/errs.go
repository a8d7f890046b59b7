// Package errs defines the error shape returned to API clients.
//
// Every failed request is answered with
//
//	{ "message": "...", "details": [ { "field": "date", "message": "is required" } ] }
//
// details is always present, possibly empty.
package errs

import (
	"net/http"
)

// FieldError is a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HTTPError carries the status to answer with and the client-visible body.
type HTTPError struct {
	Status  int          `json:"-"`
	Message string       `json:"message"`
	Details []FieldError `json:"details"`
}

// Error makes *HTTPError satisfy error.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError with the same status, so
// errors.Is(err, errs.NotFound("")) matches any 404.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	return ok && t.Status == e.Status
}

// Body returns the value written as the JSON response. Details is never nil.
func (e *HTTPError) Body() HTTPError {
	details := e.Details
	if details == nil {
		details = []FieldError{}
	}
	return HTTPError{Status: e.Status, Message: e.Message, Details: details}
}

// New creates an HTTPError with the given status.
func New(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

// BadRequest creates a 400 error, optionally with field details.
func BadRequest(message string, details ...FieldError) *HTTPError {
	e := New(http.StatusBadRequest, message)
	e.Details = details
	return e
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *HTTPError {
	return New(http.StatusUnauthorized, message)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *HTTPError {
	return New(http.StatusForbidden, message)
}

// NotFound creates a 404 error.
func NotFound(message string) *HTTPError {
	return New(http.StatusNotFound, message)
}

// TooManyRequests creates a 429 error.
func TooManyRequests(message string) *HTTPError {
	return New(http.StatusTooManyRequests, message)
}

// Internal creates a 500 error with the generic status text; the real cause
// belongs in the logs, not in the response.
func Internal() *HTTPError {
	return New(http.StatusInternalServerError, "")
}
