package statemachine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateDataUpdate(t *testing.T) {
	t.Parallel()

	t.Run("empty update is a no-op", func(t *testing.T) {
		t.Parallel()

		data := textData{Text: "hello", Count: 3}
		require.NoError(t, data.UpdateState(textUpdate{}))
		assert.Equal(t, textData{Text: "hello", Count: 3}, data)
	})

	t.Run("present field overwrites only that field", func(t *testing.T) {
		t.Parallel()

		data := textData{Text: "hello", Count: 3}
		require.NoError(t, data.UpdateState(textUpdate{Count: ptr(7)}))
		assert.Equal(t, textData{Text: "hello", Count: 7}, data)
	})
}

func TestRetryBudget(t *testing.T) {
	t.Parallel()

	ctxData := sampleContext{}
	assert.Equal(t, uint32(0), ctxData.MaxRetries())
	assert.False(t, ctxData.CanRetry())

	require.NoError(t, ctxData.UpdateContext(sampleContextUpdate{Retries: ptr(uint32(3))}))
	assert.Equal(t, uint32(3), ctxData.MaxRetries())
	assert.True(t, ctxData.CanRetry())
	assert.Empty(t, ctxData.Label)
}

func TestEditInputKeepsDataOnFailure(t *testing.T) {
	t.Parallel()

	state := newUpperState("abc")

	err := state.EditInput(func(in *textData) error {
		in.Text = "changed"

		return errEmptyText
	})
	require.ErrorIs(t, err, errEmptyText)
	assert.Equal(t, "abc", state.Input().Text)

	require.NoError(t, state.EditInput(func(in *textData) error {
		return in.UpdateState(textUpdate{Text: ptr("xyz")})
	}))
	assert.Equal(t, "xyz", state.Input().Text)
}

func TestStateOutputLifecycle(t *testing.T) {
	t.Parallel()

	state := newUpperState("abc")

	_, ok := state.Output()
	assert.False(t, ok, "fresh state has no output")

	require.NoError(t, state.ComputeOutput())

	out, ok := state.Output()
	require.True(t, ok)
	assert.Equal(t, "ABC", out.Text)

	// Recomputing overwrites.
	require.NoError(t, state.ComputeOutput())

	out, _ = state.Output()
	assert.Equal(t, 1, out.Count)

	// A failure leaves the previous output in place.
	require.NoError(t, state.EditInput(func(in *textData) error {
		in.Text = ""

		return nil
	}))
	require.ErrorIs(t, state.ComputeOutput(), errEmptyText)

	out, ok = state.Output()
	require.True(t, ok)
	assert.Equal(t, "ABC", out.Text)
}

func TestMachineAdvance(t *testing.T) {
	t.Parallel()

	machine := New(newUpperState("hello"), WithLogger(NewDefaultLogger(slogt.New(t))), WithName("advance-test"))
	assert.NotEmpty(t, machine.ID())
	assert.Equal(t, "advance-test", machine.MachineName())

	machine.Run(t.Context())
	require.NoError(t, machine.Advance(t.Context()))

	out, ok := machine.CurrentState().Output()
	require.True(t, ok)
	assert.Equal(t, "HELLO", out.Text)
}

func TestMachineAdvanceFailure(t *testing.T) {
	t.Parallel()

	machine := New(newUpperState(""), WithLogger(nil))

	err := machine.Advance(t.Context())
	require.Error(t, err)

	state, ok := FailedState(err)
	require.True(t, ok)
	assert.Equal(t, "Upper State", state)
	assert.False(t, machine.CurrentState().HasOutput())
}

func TestMachineAdvanceCancelled(t *testing.T) {
	t.Parallel()

	t.Run("sync state is not computed under a cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		machine := New(newUpperState("abc"), WithLogger(nil))
		err := machine.Advance(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, machine.CurrentState().HasOutput())
	})

	t.Run("async state commits nothing when cancelled mid-flight", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		machine := New(newWaitingState("abc"), WithLogger(nil))
		err := machine.Advance(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, machine.CurrentState().HasOutput())

		// The machine is left intact and can be retried.
		close(machine.CurrentState().release)
		require.NoError(t, machine.Advance(t.Context()))

		out, ok := machine.CurrentState().Output()
		require.True(t, ok)
		assert.Equal(t, "abc!", out.Text)
	})
}

func TestTransit(t *testing.T) {
	t.Parallel()

	first := New(newFirstState("ab"), WithLogger(NewDefaultLogger(slogt.New(t))))
	require.NoError(t, first.Advance(t.Context()))

	second, err := Transit(t.Context(), first, firstToSecond)
	require.NoError(t, err)

	assert.True(t, first.Consumed())
	assert.Nil(t, first.CurrentState())
	require.ErrorIs(t, first.Advance(t.Context()), ErrMachineConsumed)

	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, "Second State", second.CurrentState().Name())
	assert.False(t, second.CurrentState().HasOutput(), "no residual output after a transition")
	assert.Equal(t, textData{Text: "ab", Count: 1}, second.CurrentState().Input())

	require.NoError(t, second.Advance(t.Context()))

	out, ok := second.CurrentState().Output()
	require.True(t, ok)
	assert.Equal(t, "abab", out.Text)
}

func TestTransitMissingOutput(t *testing.T) {
	t.Parallel()

	first := New(newFirstState("ab"), WithLogger(nil))

	second, err := Transit(t.Context(), first, firstToSecond)
	require.Error(t, err)
	assert.Nil(t, second)
	assert.True(t, first.Consumed(), "a failed transition still consumes the machine")

	var missing *MissingOutput
	require.ErrorAs(t, err, &missing)
	assert.Equal(t,
		"[MissingOutput] Failure in State: `Sample SuperState` during transition. "+
			"The output data for `First State` is missing.",
		missing.Error())

	assert.Equal(t, missing.Error(), err.Error(), "a missing output is reported as is")

	var transitionErr *TransitionError
	assert.NotErrorAs(t, err, &transitionErr)

	_, err = Transit(t.Context(), first, firstToSecond)
	require.ErrorIs(t, err, ErrMachineConsumed)
}

func TestTransitNilState(t *testing.T) {
	t.Parallel()

	machine := New(newFirstState("ab"), WithLogger(nil))
	require.NoError(t, machine.Advance(t.Context()))

	nothing := TransitionFunc[*firstState, *secondState](
		func(context.Context, *firstState) (*secondState, error) {
			return nil, nil
		})

	next, err := Transit(t.Context(), machine, nothing)
	require.ErrorIs(t, err, ErrNilState)
	assert.Nil(t, next)

	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "First State", transitionErr.From)
	assert.Equal(t, "secondState", transitionErr.To)
}

func TestTransitNil(t *testing.T) {
	t.Parallel()

	machine := New(newFirstState("ab"), WithLogger(nil))

	_, err := Transit[*firstState, *secondState](t.Context(), machine, nil)
	require.ErrorIs(t, err, ErrNilTransition)
}

func TestSelfLoopTransition(t *testing.T) {
	t.Parallel()

	machine := New(newFirstState("x"), WithLogger(nil))

	for range 3 {
		require.NoError(t, machine.Advance(t.Context()))

		next, err := Transit(t.Context(), machine, firstToFirst)
		require.NoError(t, err)

		machine = next
	}

	assert.Equal(t, 3, machine.CurrentState().Input().Count)
}

func TestStateErrorWrapping(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	err := WrapTransitionError("A", "B", errBoom)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, "[TransitionFailed] Transition from 'A' to 'B' failed: boom", err.Error())

	// Already wrapped errors are passed through unchanged.
	assert.Same(t, err, WrapTransitionError("C", "D", err))

	missing := &MissingOutput{Owner: "Sample SuperState", State: "First State"}
	assert.Same(t, missing, WrapTransitionError("C", "D", missing))
	require.NoError(t, WrapTransitionError("A", "B", nil))

	stateErr := &StateError{State: "Upper State", Err: errBoom}
	assert.Equal(t, "[StateError] Failure in State: 'Upper State'. Error: 'boom'", stateErr.Error())
}

type sampleDomainError struct {
	Input string
}

func (e *sampleDomainError) Error() string {
	return "[SampleError] bad input: " + e.Input
}

type sampleStateError struct {
	State  string
	Domain *sampleDomainError
}

func (e *sampleStateError) Error() string {
	return "[SampleStateError] " + e.State + ": " + e.Domain.Error()
}

func (e *sampleStateError) FailedState() string {
	return e.State
}

func fromSampleDomainError(stateName string, err *sampleDomainError) *sampleStateError {
	return &sampleStateError{State: stateName, Domain: err}
}

func TestEnrich(t *testing.T) {
	t.Parallel()

	t.Run("domain error uses its conversion", func(t *testing.T) {
		t.Parallel()

		err := Enrich("Some State", &sampleDomainError{Input: "x"}, fromSampleDomainError)

		var stateErr *sampleStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "Some State", stateErr.State)
		assert.Equal(t, "[SampleStateError] Some State: [SampleError] bad input: x", err.Error())
	})

	t.Run("other errors fall back to StateError", func(t *testing.T) {
		t.Parallel()

		err := Enrich("Some State", context.Canceled, fromSampleDomainError)

		var stateErr *StateError
		require.ErrorAs(t, err, &stateErr)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, "Some State", stateErr.State)
	})

	t.Run("state-level errors pass through", func(t *testing.T) {
		t.Parallel()

		original := &StateError{State: "Inner", Err: context.Canceled}
		assert.Same(t, original, Enrich("Outer", original, fromSampleDomainError))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, Enrich("Some State", nil, fromSampleDomainError))
	})
}

func TestSummary(t *testing.T) {
	t.Parallel()

	state := newUpperState("abc")
	require.NoError(t, state.EditContext(func(c *sampleContext) error {
		return c.UpdateContext(sampleContextUpdate{Label: ptr("demo")})
	}))

	expected := "`Upper State` State Summary\n" +
		"---------------------------\n" +
		"Context:\n" +
		"\tLabel: demo\n\tMax Retries: 0\n" +
		"Input Data:\n" +
		"\tText: abc\n\tCount: 0\n" +
		"Output Data:\n" +
		"\tNone"
	assert.Equal(t, expected, state.String())

	require.NoError(t, state.ComputeOutput())
	assert.Contains(t, state.String(), "Output Data:\n\tText: ABC\n\tCount: 1")
}
