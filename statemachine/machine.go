package statemachine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
)

// Metric outcome constants.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Machine owns exactly one State. The State type is part of the machine's type, so
// "the machine is now in state U" is expressed by holding a *Machine[U].
//
// A Machine is not safe for concurrent use. The host must serialise calls on a single
// machine; independent machines may be advanced concurrently.
type Machine[S State] struct {
	id       string
	name     string
	state    S
	logger   Logger
	consumed bool
}

type settings struct {
	id     string
	name   string
	logger Logger
}

// Option configures a Machine.
type Option func(*settings)

// WithID sets the machine's lineage identifier. It defaults to a random UUID.
func WithID(id string) Option {
	return func(s *settings) {
		s.id = id
	}
}

// WithName sets the machine name used for metric labels and logs.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithLogger sets the logging hooks. Passing nil disables logging.
func WithLogger(logger Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New returns a machine whose current state is initial.
func New[S State](initial S, opts ...Option) *Machine[S] {
	cfg := settings{
		logger: NewDefaultLogger(nil),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}

	return &Machine[S]{
		id:     cfg.id,
		name:   sanitizeMachine(cfg.name),
		state:  initial,
		logger: cfg.logger,
	}
}

// ID identifies the machine lineage. Machines produced by Transit keep the ID of the
// machine they were derived from.
func (m *Machine[S]) ID() string {
	return m.id
}

// MachineName returns the name used in metrics and logs.
func (m *Machine[S]) MachineName() string {
	return m.name
}

// Consumed reports whether the machine was handed to a transition.
func (m *Machine[S]) Consumed() bool {
	return m.consumed
}

// CurrentState returns the owned state. The zero S is returned once the machine has
// been consumed.
func (m *Machine[S]) CurrentState() S {
	return m.state
}

// Run logs the active stage. It never changes state.
func (m *Machine[S]) Run(ctx context.Context) {
	if m.consumed {
		return
	}

	m.logger.StateRunning(ctx, m.id, m.state.Name())
}

// Advance computes the output of the current state. Async states are computed with
// ctx; plain states are computed synchronously after checking ctx.
func (m *Machine[S]) Advance(ctx context.Context) (err error) {
	if m.consumed {
		return ErrMachineConsumed
	}

	stateName := m.state.Name()

	ctx, span := startAdvanceSpan(ctx, m.id, m.name, stateName)
	start := time.Now()

	defer func() {
		duration := time.Since(start)

		outcome := outcomeSuccess
		if err != nil {
			outcome = outcomeError

			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "computed")
		}

		span.End()

		stateAdvancesTotal.WithLabelValues(m.name, stateName, outcome).Inc()
		advanceDuration.WithLabelValues(m.name, stateName, outcome).Observe(duration.Seconds())
		m.logger.StateAdvanced(ctx, m.id, stateName, duration, err)
	}()

	if async, ok := any(m.state).(AsyncState); ok {
		return async.ComputeOutputAsync(ctx)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &StateError{State: stateName, Err: ctxErr}
	}

	return m.state.ComputeOutput()
}

// consume hands the state over to a transition and retires the machine.
func (m *Machine[S]) consume() S {
	state := m.state

	var zero S

	m.state = zero
	m.consumed = true

	return state
}
