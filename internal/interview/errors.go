package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed candidate info.
	ErrValidation = errors.New("validation error")

	// ErrInvalidState marks an operation attempted from a phase that forbids it.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument marks structurally bad input such as an empty or
	// duplicated question list.
	ErrInvalidArgument = errors.New("invalid argument")
)

// TransitionError describes a rejected transition. The state it was
// attempted on is left unchanged.
type TransitionError struct {
	Op     string
	Phase  Phase
	Kind   error
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s (%s): %v: %s", e.Op, e.Phase, e.Kind, e.Reason)
}

func (e *TransitionError) Unwrap() error { return e.Kind }

func invalidState(op string, s State, reason string) error {
	return &TransitionError{Op: op, Phase: s.Phase(), Kind: ErrInvalidState, Reason: reason}
}

func invalidArgument(op string, s State, format string, args ...any) error {
	return &TransitionError{Op: op, Phase: s.Phase(), Kind: ErrInvalidArgument, Reason: fmt.Sprintf(format, args...)}
}

func validation(op string, s State, format string, args ...any) error {
	return &TransitionError{Op: op, Phase: s.Phase(), Kind: ErrValidation, Reason: fmt.Sprintf(format, args...)}
}
