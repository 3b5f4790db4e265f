// internal/browser/jsbind/errors.go
package jsbind

import "fmt"

// Typed errors let callers classify bridge failures with errors.As instead
// of matching strings.

// ElementNotFoundError is returned when a lookup matches no element.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found matching selector '%s'", e.Selector)
}

func NewElementNotFoundError(selector string) *ElementNotFoundError {
	return &ElementNotFoundError{
		Selector: selector,
	}
}

// MethodError reports an element method that failed when called from a
// script. It is thrown into the script as a Go error.
type MethodError struct {
	Method string
	Err    error
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("element method %s failed: %v", e.Method, e.Err)
}

// Unwrap provides the underlying error for use with errors.Is/As.
func (e *MethodError) Unwrap() error {
	return e.Err
}
