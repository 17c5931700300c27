package batchrouter

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for API error classification.
var (
	ErrAuthentication = errors.New("AuthenticationError")
	ErrNotFound       = errors.New("NotFoundError")
	ErrValidation     = errors.New("ValidationError")
	ErrServer         = errors.New("ServerError")
)

// Error is the unified error type returned by API calls. Err holds the
// sentinel for the error kind, or nil for unclassified statuses.
type Error struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	kind := "BatchRouterError"
	if e.Err != nil {
		kind = e.Err.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("[%s] %s", kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s (status=%d)", kind, e.Message, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// mapStatus maps an HTTP status code to a sentinel error. Unclassified
// statuses map to nil.
func mapStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return nil
	}
}

// defaultMessage returns the fallback message for a status code when no
// detail was supplied.
func defaultMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "Invalid or missing API key"
	case status == http.StatusNotFound:
		return "Resource not found"
	case status == http.StatusUnprocessableEntity:
		return "Validation failed"
	case status >= http.StatusInternalServerError:
		return "Server error"
	default:
		return fmt.Sprintf("HTTP %d", status)
	}
}

// apiError builds the *Error for a non-2xx status. The four classified kinds
// carry their canonical status code (a 503 still surfaces as a ServerError
// with status 500); anything else carries the literal status.
func apiError(status int, message string) *Error {
	if message == "" {
		message = defaultMessage(status)
	}
	kind := mapStatus(status)
	if kind == ErrServer {
		status = http.StatusInternalServerError
	}
	return &Error{
		StatusCode: status,
		Message:    message,
		Err:        kind,
	}
}

// authError builds the *Error for credential failures detected before any
// request is sent.
func authError(message string) *Error {
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Message:    message,
		Err:        ErrAuthentication,
	}
}
