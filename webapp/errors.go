package webapp

import (
	"errors"
	"fmt"
)

var (
	// ErrApplicationStopped is returned when an operation needs a running application but the
	// application has already been stopped. A stopped application can never be restarted.
	ErrApplicationStopped = errors.New("application has been stopped")

	// ErrApplicationNotStarted is returned by Invoke before Start has been called.
	ErrApplicationNotStarted = errors.New("application has not been started")

	// ErrApplicationRunning is returned when trying to change the route table or the action set
	// of an application that has already started.
	ErrApplicationRunning = errors.New("application is running; routes and actions are read-only")

	// ErrUnknownAction is returned when an ActionRef names an action that was never registered.
	ErrUnknownAction = errors.New("unknown action")
)

// RouteError describes a route definition that could not be added to the route table.
type RouteError struct {
	Method  string
	Pattern string
	Reason  string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("invalid route %s %s: %s", e.Method, e.Pattern, e.Reason)
}
