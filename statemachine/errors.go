package statemachine

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrMachineConsumed is returned by a machine that was handed to a transition.
	ErrMachineConsumed = errors.New("state machine was consumed by a transition")

	// ErrNilState is returned when a composite has no inner machine or a transition
	// produced no state.
	ErrNilState = errors.New("state machine has no current state")

	// ErrNilTransition is returned when Transit is given a nil transition.
	ErrNilTransition = errors.New("transition is nil")
)

// Failure is implemented by every state-level error. It always names the state in
// which the underlying domain error occurred.
type Failure interface {
	error
	FailedState() string
}

// FromDomainError builds a state-level error from the name of the failing state and a
// domain error. Each domain error type has exactly one such mapping.
type FromDomainError[D error, E Failure] func(stateName string, err D) E

// Enrich converts err into a state-level error for stateName. When err (or anything it
// wraps) is a D, conv is used; otherwise the error is wrapped in a StateError so that
// it still carries its provenance. A nil err returns nil.
func Enrich[D error, E Failure](stateName string, err error, conv func(string, D) E) error {
	if err == nil {
		return nil
	}

	var failure Failure
	if errors.As(err, &failure) {
		return err
	}

	var domain D
	if errors.As(err, &domain) {
		return conv(stateName, domain)
	}

	return &StateError{State: stateName, Err: err}
}

// StateError is the generic state-level error for failures without a dedicated
// domain mapping (cancellation, programmer errors).
type StateError struct {
	State string
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("[StateError] Failure in State: '%s'. Error: '%v'", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// FailedState implements Failure.
func (e *StateError) FailedState() string {
	return e.State
}

// MissingOutput is returned by a transition whose source state has no output.
type MissingOutput struct {
	// Owner is the state (usually a composite) in which the transition was attempted.
	Owner string
	// State is the state whose output was expected.
	State string
}

func (e *MissingOutput) Error() string {
	return fmt.Sprintf(
		"[MissingOutput] Failure in State: `%s` during transition. The output data for `%s` is missing.",
		e.Owner, e.State)
}

// FailedState implements Failure.
func (e *MissingOutput) FailedState() string {
	return e.State
}

// TransitionError wraps any failure raised while moving between two states.
type TransitionError struct {
	From string
	To   string
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("[TransitionFailed] Transition from '%s' to '%s' failed: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// WrapTransitionError wraps err in a TransitionError. It returns nil for a nil err and
// returns err unchanged when it is a TransitionError or a MissingOutput, which
// already name the failed transition.
func WrapTransitionError(from, to string, err error) error {
	if err == nil || carriesTransitionContext(err) {
		return err
	}

	return &TransitionError{From: from, To: to, Err: err}
}

// FailedState returns the name of the state an error originated in, if the error
// chain contains a state-level error.
func FailedState(err error) (string, bool) {
	var failure Failure
	if errors.As(err, &failure) {
		return failure.FailedState(), true
	}

	return "", false
}
