package apptest

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyPath is returned by NewRequest when the path is empty.
	ErrEmptyPath = errors.New("request path must not be empty")

	// ErrNestedApplication is returned by WithApplication or WithServer when the Harness already
	// has an application running. The block is not run.
	ErrNestedApplication = errors.New("an application is already running in this harness")

	// ErrUnresolvedResult is returned by the accessors of a Result that is still pending.
	ErrUnresolvedResult = errors.New("result is still pending; call Await before inspecting it")
)

// InvalidMethodError is returned when a request is built with a method that is not one of GET,
// POST, PUT, DELETE, PATCH, HEAD, or OPTIONS.
type InvalidMethodError struct {
	Method string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("invalid HTTP method %q", e.Method)
}

// ResultTimeoutError means that an async result did not complete within the allowed time. The
// computation has been told to stop, but may not have.
type ResultTimeoutError struct {
	Action  string
	Timeout time.Duration
}

func (e *ResultTimeoutError) Error() string {
	return fmt.Sprintf("result of %s did not complete within %s", e.Action, e.Timeout)
}

// DispatchError means that an action returned an error or panicked. Cause is the original error.
type DispatchError struct {
	Action string
	Cause  error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("action %s failed: %s", e.Action, e.Cause)
}

func (e *DispatchError) Unwrap() error { return e.Cause }

// NotJSONError is returned by Result.BodyAsJSON when the content type is not a JSON type.
type NotJSONError struct {
	ContentType string
}

func (e *NotJSONError) Error() string {
	return fmt.Sprintf("content type %q is not JSON", e.ContentType)
}
