package app

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrDisconnected indicates the peer closed the connection cleanly.
	ErrDisconnected = errors.New("disconnected from server")

	// ErrConnectionFailed indicates the initial connection could not be
	// established.
	ErrConnectionFailed = errors.New("connection failed")
)

// OperationError wraps a failure during a named session operation.
type OperationError struct {
	Op     string // operation name (e.g. "send", "poll", "telnet")
	Target string // target of the operation (e.g. host:port)
	Err    error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}
