// Package result provides the tagged success/failure value returned by workspace operations.
package result

import (
	"encoding/json"
	"errors"

	"github.com/teemow/workspace-console/internal/apperr"
)

// Result is either Success{payload} or Failure{kind, message}.
// The zero value is a failure with an empty message.
type Result[T any] struct {
	ok      bool
	value   T
	kind    apperr.Kind
	message string
	err     error
}

// Success wraps a payload.
func Success[T any](v T) Result[T] {
	return Result[T]{ok: true, value: v}
}

// Failure wraps err, classifying it with apperr.KindOf.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Result[T]{kind: apperr.KindOf(err), message: err.Error(), err: err}
}

// From returns Success(v) when err is nil and Failure(err) otherwise.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

// IsSuccess reports whether r holds a payload.
func (r Result[T]) IsSuccess() bool { return r.ok }

// Value returns the payload and whether r is a success.
func (r Result[T]) Value() (T, bool) { return r.value, r.ok }

// Kind returns the failure kind, empty on success.
func (r Result[T]) Kind() apperr.Kind { return r.kind }

// Message returns the failure message, empty on success.
func (r Result[T]) Message() string { return r.message }

// Err returns the underlying error, nil on success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return errors.New(r.message)
	}
	return r.err
}

// Envelope is the wire form handed back to the tool caller.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Envelope renders r. message is attached to successes only.
func (r Result[T]) Envelope(message string) Envelope {
	if r.ok {
		return Envelope{Success: true, Data: r.value, Message: message}
	}
	return Envelope{Success: false, Error: r.message, ErrorKind: string(r.kind)}
}

// JSON renders the envelope as indented JSON.
func (r Result[T]) JSON(message string) string {
	data, err := json.MarshalIndent(r.Envelope(message), "", "  ")
	if err != nil {
		fallback, _ := json.Marshal(Envelope{Success: false, Error: err.Error(), ErrorKind: string(apperr.KindInternal)})
		return string(fallback)
	}
	return string(data)
}
