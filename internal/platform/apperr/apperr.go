// Package apperr defines the error taxonomy shared by the service and
// handler layers: field validation failures, storage engine failures, and
// initialization failures. Handlers translate these into HTTP responses;
// nothing below the handler layer swallows them.
package apperr

import (
	"fmt"
)

// RequiredFieldError reports a blank or missing required field. It is raised
// by validation before any statement reaches the storage engine.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// RangeError reports a field value outside its allowed bounds.
type RangeError struct {
	Field string
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d", e.Field, e.Min, e.Max)
}

// StorageError wraps a failure reported by the storage engine. The engine's
// message is surfaced verbatim; callers display it, they do not interpret it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err, tagging it with the failing operation for logs.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// InitializationError means the storage engine never became usable. It is
// fatal to every data surface: callers keep refusing work and tell the user
// to restart, they never crash.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("storage initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}
