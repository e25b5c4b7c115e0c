package statemachine

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/codes"
)

// Transition moves a machine from state T to state U. Only pairs with an
// implementation exist, so an undefined move does not compile.
//
// The source state is handed over by value; implementations that need the original
// after a failure must copy what they need before doing any work.
type Transition[T, U State] interface {
	TransitionToNextState(ctx context.Context, from T) (U, error)
}

// TransitionFunc adapts a function to the Transition interface.
type TransitionFunc[T, U State] func(ctx context.Context, from T) (U, error)

// TransitionToNextState implements Transition.
func (f TransitionFunc[T, U]) TransitionToNextState(ctx context.Context, from T) (U, error) {
	return f(ctx, from)
}

// Transit consumes m and returns a machine whose current state is produced by tr.
// The returned machine keeps m's ID, name and logger. m is consumed even when the
// transition fails; callers must not reuse it.
func Transit[T, U State](ctx context.Context, m *Machine[T], tr Transition[T, U]) (next *Machine[U], err error) {
	if m.consumed {
		return nil, ErrMachineConsumed
	}

	from := m.consume()
	fromName := from.Name()
	toName := stateTypeName[U]()

	if tr == nil {
		return nil, WrapTransitionError(fromName, toName, ErrNilTransition)
	}

	ctx, span := startTransitionSpan(ctx, m.id, m.name, fromName)

	defer func() {
		outcome := outcomeSuccess
		if err != nil {
			outcome = outcomeError

			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "transitioned")
		}

		span.End()

		transitionsTotal.WithLabelValues(m.name, fromName, toName, outcome).Inc()
		m.logger.TransitionExecuted(ctx, m.id, fromName, toName, err)
	}()

	state, err := tr.TransitionToNextState(ctx, from)
	if err != nil {
		return nil, WrapTransitionError(fromName, toName, err)
	}

	if isNil(state) {
		return nil, WrapTransitionError(fromName, toName, ErrNilState)
	}

	toName = state.Name()

	return &Machine[U]{
		id:     m.id,
		name:   m.name,
		state:  state,
		logger: m.logger,
	}, nil
}

// RequireOutput returns the output of from, or a MissingOutput error naming owner.
func RequireOutput[O any](owner string, from interface {
	Name() string
	Output() (O, bool)
},
) (O, error) {
	output, ok := from.Output()
	if !ok {
		return output, &MissingOutput{Owner: owner, State: from.Name()}
	}

	return output, nil
}

// stateTypeName names S before it is built. Type arguments of generic states are
// dropped, so a composite is reported as "Composite".
func stateTypeName[S State]() string {
	t := reflect.TypeFor[S]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name, _, _ := strings.Cut(t.Name(), "[")

	return name
}

func isNil[S State](s S) bool {
	v := reflect.ValueOf(s)
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// carriesTransitionContext reports whether err already says which transition failed.
func carriesTransitionContext(err error) bool {
	var (
		te      *TransitionError
		missing *MissingOutput
	)

	return errors.As(err, &te) || errors.As(err, &missing)
}
