package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"google.golang.org/api/googleapi"
)

// Kind classifies an error for callers and metric labels.
type Kind string

const (
	KindAuth       Kind = "auth"
	KindAPI        Kind = "api"
	KindValidation Kind = "validation"
	KindCanceled   Kind = "canceled"
	KindInternal   Kind = "internal"
)

// AuthError reports a failure to acquire or validate credentials.
// Auth failures are terminal for the call and are never retried.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("authentication failed: %s", e.Op)
	}
	return fmt.Sprintf("authentication failed: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError wraps an error returned by a Google API.
type APIError struct {
	Service string
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s failed (HTTP %d): %s", e.Service, e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Service, e.Op, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// ValidationError rejects a malformed argument before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid argument: " + e.Message
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Message)
}

// Auth builds an AuthError.
func Auth(op string, err error) error {
	return &AuthError{Op: op, Err: err}
}

// Validation builds a ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Required is the ValidationError for a missing argument.
func Required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

// FromGoogle wraps an error returned by a Google API client call.
// Context errors and already classified errors are returned unchanged.
func FromGoogle(service, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var authErr *AuthError
	var apiErr *APIError
	if errors.As(err, &authErr) || errors.As(err, &apiErr) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		wrapped := &APIError{Service: service, Op: op, Status: gerr.Code, Message: msg, Err: err}
		if gerr.Code == http.StatusUnauthorized {
			return &AuthError{Op: service + " " + op, Err: wrapped}
		}
		return wrapped
	}
	return &APIError{Service: service, Op: op, Message: err.Error(), Err: err}
}

// KindOf returns the Kind of err.
func KindOf(err error) Kind {
	var authErr *AuthError
	var apiErr *APIError
	var valErr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &authErr):
		return KindAuth
	case errors.As(err, &apiErr):
		return KindAPI
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

// IsRetryable reports whether err is transient along with a short reason.
// Auth and validation failures are never retryable.
func IsRetryable(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false, "auth_error"
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return false, "validation_error"
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		switch {
		case apiErr.Status == http.StatusTooManyRequests:
			return true, "rate_limited"
		case apiErr.Status >= 500:
			return true, "server_error"
		default:
			return false, "client_error"
		}
	}

	if errors.Is(err, context.Canceled) {
		return false, "context_canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true, "timeout"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true, "network_timeout"
		}
		return true, "network_error"
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true, "network_timeout"
		}
		return true, "network_error"
	}

	return false, "unknown_error"
}
