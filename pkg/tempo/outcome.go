package tempo

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the settled state of a Future.
type Outcome[T any] struct {
	id        uuid.UUID
	settledAt time.Time
	value     T
	err       error
	isSuccess bool
	isCancel  bool
}

func Resolved[T any](v T) Outcome[T] {
	return Outcome[T]{
		value:     v,
		isSuccess: true,
		settledAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

// Rejected classifies err: anything matching ErrCancelled becomes a cancel
// outcome, the rest a failure.
func Rejected[T any](err error) Outcome[T] {
	if IsCancelled(err) {
		return Cancelled[T](err)
	}
	return Failed[T](err)
}

func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{
		err:       err,
		settledAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Cancelled[T any](err error) Outcome[T] {
	return Outcome[T]{
		err:       err,
		isCancel:  true,
		settledAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func (o Outcome[T]) Value() T {
	return o.value
}

func (o Outcome[T]) Err() error {
	return o.err
}

func (o Outcome[T]) IsSuccess() bool {
	return o.isSuccess
}

func (o Outcome[T]) IsCancel() bool {
	return o.isCancel
}

func (o Outcome[T]) IsFailure() bool {
	return !o.isSuccess && !o.isCancel && o.err != nil
}

func (o Outcome[T]) SettledAt() time.Time {
	return o.settledAt
}

func (o Outcome[T]) Id() uuid.UUID {
	return o.id
}
