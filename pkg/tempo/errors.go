package tempo

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is matched by every rejection caused by an abort signal.
var ErrCancelled = errors.New("aborted")

// CancelledError is the rejection of a delay that lost the race to an abort
// signal.
type CancelledError struct {
	Label string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("aborted: %s", e.Label)
}

func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

// UnknownFailure wraps any rejection that is not a cancellation once it
// reaches a handler.
type UnknownFailure struct {
	Err error
}

func (e *UnknownFailure) Error() string {
	return fmt.Sprintf("unknown failure: %v", e.Err)
}

func (e *UnknownFailure) Unwrap() error {
	return e.Err
}

// PanicError is produced when the body of a Go future panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsContextDone reports whether err comes from a finished context rather
// than from an abort signal.
func IsContextDone(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// Classify leaves nil and cancellations untouched and wraps everything else
// in UnknownFailure.
func Classify(err error) error {
	if err == nil || IsCancelled(err) {
		return err
	}
	var unknown *UnknownFailure
	if errors.As(err, &unknown) {
		return err
	}
	return &UnknownFailure{Err: err}
}
