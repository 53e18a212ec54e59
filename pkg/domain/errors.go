package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across adapters.
var (
	// ErrHandleNotFound is returned by handle stores when no handle
	// exists under the requested ID.
	ErrHandleNotFound = errors.New("reference handle not found")

	// ErrTaskNotFound is returned by fabric clients when a task ID is
	// unknown to the fabric.
	ErrTaskNotFound = errors.New("task not found")

	// ErrResultNotReady is returned by fabric clients when a result is
	// requested for a task that has not produced one yet.
	ErrResultNotReady = errors.New("task result not ready")
)

// ValidationError reports malformed input detected before any remote
// call is issued. It is never retried; the caller must fix the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConnectivityError reports a transient failure to reach the remote
// fabric. It is safe to retry the whole operation; no local state is
// corrupted by the failure.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("fabric unreachable during %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// NewConnectivityError wraps a transport failure observed during op.
func NewConnectivityError(op string, err error) *ConnectivityError {
	return &ConnectivityError{Op: op, Err: err}
}

// IsConnectivity reports whether err is (or wraps) a ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
