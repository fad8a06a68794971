package app

import (
	"errors"
	"fmt"
)

var (
	// ErrSealed is returned, or used as the panic value, when the
	// application is changed after it began serving requests.
	ErrSealed = errors.New("application already serving requests")

	// ErrNameCollision is returned when another blueprint is registered under a taken name.
	ErrNameCollision = errors.New("blueprint name already registered")

	// ErrEndpointConflict is the panic value (wrapped) when an endpoint is
	// bound to a different view function than the one it already has.
	ErrEndpointConflict = errors.New("endpoint already bound to another view function")

	// ErrNoView is returned when a rule matched but its endpoint has no view function.
	ErrNoView = errors.New("no view function for endpoint")

	// ErrNilResponse is returned when a view returns a nil response.
	ErrNilResponse = errors.New("view returned nil response")

	// ErrUnknownBlueprint is returned by RegisterManifest for a mount naming
	// a blueprint that was not passed in.
	ErrUnknownBlueprint = errors.New("unknown blueprint")

	// ErrInvalidManifest is returned when a mount manifest cannot be decoded.
	ErrInvalidManifest = errors.New("invalid mount manifest")
)

// PanicError is the error passed to error handlers when a view or hook panicked.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap lets errors.Is and errors.As see a panicked error value.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
