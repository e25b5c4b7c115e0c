package statemachine

import (
	"context"
	"errors"
	"fmt"
)

// Fold turns the current state of an inner machine into a composite's output.
type Fold[O any] func(inner State) (O, error)

// Composite is a State that owns an inner machine. Its input and context are
// aggregate values; its output is produced by folding the inner machine's current
// state once that state has an output.
type Composite[S State, I, O, C any] struct {
	Base[I, O, C]

	prefix string
	inner  *Machine[S]
	fold   Fold[O]
}

// NewComposite wraps inner. The composite's name is prefix followed by the name of the
// inner machine's current state.
func NewComposite[S State, I, O, C any](
	prefix string,
	inner *Machine[S],
	input I,
	context C,
	fold Fold[O],
) *Composite[S, I, O, C] {
	return &Composite[S, I, O, C]{
		Base:   NewBase[I, O, C](prefix, input, context),
		prefix: prefix,
		inner:  inner,
		fold:   fold,
	}
}

// Name implements State.
func (c *Composite[S, I, O, C]) Name() string {
	if c.inner == nil || c.inner.consumed {
		return c.prefix
	}

	return fmt.Sprintf("%s (Current: %s)", c.prefix, c.inner.CurrentState().Name())
}

// Prefix returns the fixed part of the composite's name.
func (c *Composite[S, I, O, C]) Prefix() string {
	return c.prefix
}

// Inner implements SuperState.
func (c *Composite[S, I, O, C]) Inner() *Machine[S] {
	return c.inner
}

// ComputeOutput implements State by computing without cancellation.
func (c *Composite[S, I, O, C]) ComputeOutput() error {
	return c.ComputeOutputAsync(context.Background())
}

// ComputeOutputAsync advances the inner machine when its current state has no output
// yet, then folds the inner state into the composite's output.
func (c *Composite[S, I, O, C]) ComputeOutputAsync(ctx context.Context) error {
	if c.inner == nil {
		return &StateError{State: c.prefix, Err: ErrNilState}
	}

	if c.inner.consumed {
		return &StateError{State: c.prefix, Err: ErrMachineConsumed}
	}

	if !c.inner.CurrentState().HasOutput() {
		if err := c.inner.Advance(ctx); err != nil {
			return err
		}
	}

	output, err := c.fold(c.inner.CurrentState())
	if err != nil {
		var failure Failure
		if errors.As(err, &failure) {
			return err
		}

		return &StateError{State: c.Name(), Err: err}
	}

	c.SetOutput(output)

	return nil
}

// String renders the composite with its current name.
func (c *Composite[S, I, O, C]) String() string {
	return c.Summary(c.Name())
}

// Lift raises a transition between inner states to a transition between composites.
// The new composite keeps the input, context and fold of the old one, holds the
// transitioned inner machine and has no output.
func Lift[S, U State, I, O, C any](tr Transition[S, U]) Transition[*Composite[S, I, O, C], *Composite[U, I, O, C]] {
	return TransitionFunc[*Composite[S, I, O, C], *Composite[U, I, O, C]](
		func(ctx context.Context, from *Composite[S, I, O, C]) (*Composite[U, I, O, C], error) {
			inner, err := Transit(ctx, from.inner, tr)
			if err != nil {
				return nil, err
			}

			return NewComposite(from.prefix, inner, from.input, from.context, from.fold), nil
		})
}

var (
	_ AsyncState               = (*Composite[State, any, any, any])(nil)
	_ SuperState[State]        = (*Composite[State, any, any, any])(nil)
	_ Stage[any, any, any]     = (*Composite[State, any, any, any])(nil)
	_ fmt.Stringer             = (*Composite[State, any, any, any])(nil)
	_ StateMachine[AsyncState] = (*Machine[AsyncState])(nil)
)
