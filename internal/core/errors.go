package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrExternalCall marks a failed model or store call.
	ErrExternalCall = errors.New("external call failed")
	// ErrTimeout marks an external call that ran out of time. It also matches ErrExternalCall.
	ErrTimeout = errors.New("external call timed out")
	// ErrParse marks model output that does not have the expected shape.
	ErrParse = errors.New("unexpected model output")
	// ErrNotFound marks a missing session or record.
	ErrNotFound = errors.New("not found")
)

type externalCallError struct {
	op      string
	timeout bool
	err     error
}

func (e *externalCallError) Error() string {
	if e.timeout {
		return fmt.Sprintf("%s: %s: %v", e.op, ErrTimeout, e.err)
	}
	return fmt.Sprintf("%s: %s: %v", e.op, ErrExternalCall, e.err)
}

func (e *externalCallError) Unwrap() []error {
	if e.timeout {
		return []error{ErrTimeout, ErrExternalCall, e.err}
	}
	return []error{ErrExternalCall, e.err}
}

// ExternalCallError classifies err as a failed external call named op.
// Deadline errors become ErrTimeout. Errors already classified are returned as is.
func ExternalCallError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrExternalCall) {
		return err
	}
	return &externalCallError{
		op:      op,
		timeout: errors.Is(err, context.DeadlineExceeded),
		err:     err,
	}
}

// ParseError wraps a parse problem with ErrParse.
func ParseError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}
