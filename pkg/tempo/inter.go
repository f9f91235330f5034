package tempo

import "github.com/google/uuid"

// Settlement is the read side of an Outcome, for code that only logs
// settlements and does not care about the value type.
type Settlement interface {
	Id() uuid.UUID
	Err() error
	IsCancel() bool
	IsFailure() bool
}

var _ Settlement = Outcome[struct{}]{}
