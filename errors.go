package dynload

import "fmt"

// LoadError means a fatal resource failed on every attempt. Err is the
// injector's error from the last attempt.
type LoadError struct {
	URL      string
	Name     string
	Attempts int
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load resource %s (%s): failed after %d attempt(s): %v", e.Name, e.URL, e.Attempts, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// TypeMismatchError means an artifact is not of the requested type.
type TypeMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("artifact type mismatch for %s: expected=%s actual=%s", e.Name, e.Expected, e.Actual)
}

// PanicError wraps a value recovered from a panicking injector.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("injector panic: %v", e.Value)
}
