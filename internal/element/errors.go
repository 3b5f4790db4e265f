// internal/element/errors.go
package element

import "errors"

var (
	// ErrMarkupRejected is returned when markup cannot be parsed into the
	// wrapper depth its target requires.
	ErrMarkupRejected = errors.New("element: markup rejected")
	// ErrUnknownPosition is returned for insertion positions other than
	// before, after, top and bottom.
	ErrUnknownPosition = errors.New("element: unknown insertion position")
	// ErrDetached is returned when an operation needs a node with a parent.
	ErrDetached = errors.New("element: node is detached")
	// ErrNotCallable is returned when registering a handler that is not a Method.
	ErrNotCallable = errors.New("element: handler is not callable")
	// ErrNotExtended is returned when invoking a method on a node that was never extended.
	ErrNotExtended = errors.New("element: node is not extended")
	// ErrUnknownMethod is returned when a node's method table has no such name.
	ErrUnknownMethod = errors.New("element: unknown method")
	// ErrInvalidArgument is returned when a method receives arguments of the wrong type.
	ErrInvalidArgument = errors.New("element: invalid argument")
)
