package production

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use with errors.Is().
var (
	// ErrInvalidTransition is returned for state-machine edges not in the
	// transition table.
	ErrInvalidTransition = errors.New("invalid production order transition")

	// ErrInvalidState is returned when an operation (deletion) is
	// attempted in a state that forbids it.
	ErrInvalidState = errors.New("invalid production order state")
)

// InvalidTransitionError names the current and requested status.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition production order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// InvalidStateError reports an operation rejected by the current status.
type InvalidStateError struct {
	Status Status
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a production order in status %s", e.Action, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }
