package core

import "fmt"

// ErrKind classifies a recoverable operation failure.
type ErrKind string

const (
	ErrTimeout ErrKind = "timeout"
	ErrNetwork ErrKind = "network"
	ErrConcern ErrKind = "concern"
	ErrUnknown ErrKind = "unknown"
)

// OpError wraps a failed write or read with its classification.
// Operation errors never escape a worker's loop; they become
// FAILURE observations and the worker moves on.
type OpError struct {
	Kind ErrKind
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
