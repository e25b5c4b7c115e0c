// Package statemachine provides strongly typed building blocks for multi-stage pipelines.
//
// A pipeline is modelled as a sequence of States. Each State carries its own input,
// context and (once computed) output data. A Machine owns exactly one State at a time;
// moving to the next stage is done with a Transition, which consumes the machine and
// returns a new one parameterized by the next State type. Only the (T, U) pairs for
// which a Transition exists type-check, so illegal moves are rejected by the compiler.
//
// Composite states own an inner Machine and fold its progress into their own output,
// which allows hierarchical pipelines to be assembled from smaller ones.
package statemachine

import "context"

// StateData is the contract for the input and output payloads of a State.
//
// U is the partial update type: a record whose fields are all optional. UpdateState
// applies only the fields present in the update and leaves the others untouched.
// Applying an update with every field absent is a no-op.
type StateData[U any] interface {
	UpdateState(updates U) error
}

// ContextData is the contract for the side-channel configuration accompanying a State.
//
// The retry queries describe how many attempts a driver may make; the State itself
// never retries.
type ContextData[U any] interface {
	UpdateContext(updates U) error
	MaxRetries() uint32
	CanRetry() bool
}

// State is a single pipeline stage.
//
// ComputeOutput recomputes the output on every call. A failed computation leaves the
// previous output (or its absence) untouched.
type State interface {
	// Name is a fixed, human-readable identifier used for errors and display only.
	Name() string
	HasOutput() bool
	ComputeOutput() error
}

// AsyncState is a State whose computation performs I/O.
//
// ComputeOutputAsync blocks only on the awaited sub-operations and honours ctx
// cancellation. Output is committed only after every sub-operation has resolved, so a
// cancelled call leaves the state exactly as it was.
type AsyncState interface {
	State
	ComputeOutputAsync(ctx context.Context) error
}

// Stage exposes the typed data of a State.
type Stage[I, O, C any] interface {
	State
	Input() I
	ContextData() C
	Output() (O, bool)
}

// StateMachine is implemented by *Machine. It is declared for hosts that want to
// accept any machine for a given State type.
type StateMachine[S State] interface {
	CurrentState() S
	Run(ctx context.Context)
	Advance(ctx context.Context) error
}

// SuperState is a State that owns and drives an inner machine.
type SuperState[S State] interface {
	State
	Inner() *Machine[S]
}

// RetryBudget implements the retry queries of ContextData. Embed it in context records.
type RetryBudget struct {
	Retries uint32
}

// MaxRetries returns the number of retries a driver may attempt.
func (r RetryBudget) MaxRetries() uint32 {
	return r.Retries
}

// CanRetry reports whether any retry is permitted.
func (r RetryBudget) CanRetry() bool {
	return r.Retries > 0
}
