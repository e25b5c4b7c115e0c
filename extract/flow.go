package extract

import (
	"context"
	"errors"

	"github.com/amp-labs/secflow/secapi"
	"github.com/amp-labs/secflow/statemachine"
)

// Machine is a machine owning the extract super state at stage S.
type Machine[S statemachine.State] = statemachine.Machine[*SuperState[S]]

// Inner transitions lifted to the super state.
var (
	liftedValidateToPrepare = statemachine.Lift[
		*ValidateCikFormat, *PrepareSecRequest, SuperInput, Summary, SuperContext](ValidateToPrepare)
	liftedPrepareToExecute = statemachine.Lift[
		*PrepareSecRequest, *ExecuteSecRequest, SuperInput, Summary, SuperContext](PrepareToExecute)
	liftedExecuteToValidate = statemachine.Lift[
		*ExecuteSecRequest, *ValidateSecResponse, SuperInput, Summary, SuperContext](ExecuteToValidate)
)

// ToPrepareSecRequest moves the super state to the request preparation stage.
func ToPrepareSecRequest(ctx context.Context, m *Machine[*ValidateCikFormat]) (*Machine[*PrepareSecRequest], error) {
	return statemachine.Transit(ctx, m, liftedValidateToPrepare)
}

// ToExecuteSecRequest moves the super state to the request execution stage.
func ToExecuteSecRequest(ctx context.Context, m *Machine[*PrepareSecRequest]) (*Machine[*ExecuteSecRequest], error) {
	return statemachine.Transit(ctx, m, liftedPrepareToExecute)
}

// ToValidateSecResponse moves the super state to the response validation stage.
func ToValidateSecResponse(
	ctx context.Context,
	m *Machine[*ExecuteSecRequest],
) (*Machine[*ValidateSecResponse], error) {
	return statemachine.Transit(ctx, m, liftedExecuteToValidate)
}

// AdvanceFunc computes the current stage of a machine by calling advance. budget is
// the number of retries the stage permits. Drivers supply one to add retries and
// backoff; nil advances exactly once.
type AdvanceFunc func(ctx context.Context, stage string, budget uint32, advance func(context.Context) error) error

func advanceOnce(ctx context.Context, _ string, _ uint32, advance func(context.Context) error) error {
	return advance(ctx)
}

// stage is satisfied by every inner extract stage.
type stage interface {
	statemachine.State
	MaxRetries() uint32
}

func step[S stage](ctx context.Context, m *Machine[S], advance AdvanceFunc) error {
	m.Run(ctx)

	budget := m.CurrentState().Inner().CurrentState().MaxRetries()

	return advance(ctx, m.CurrentState().Name(), budget, m.Advance)
}

// Run drives m through every stage and returns the final summary. m is consumed.
func Run(ctx context.Context, m *Machine[*ValidateCikFormat], advance AdvanceFunc) (Summary, error) {
	if advance == nil {
		advance = advanceOnce
	}

	if err := step(ctx, m, advance); err != nil {
		return Summary{}, err
	}

	prepare, err := ToPrepareSecRequest(ctx, m)
	if err != nil {
		return Summary{}, err
	}

	if err := step(ctx, prepare, advance); err != nil {
		return Summary{}, err
	}

	execute, err := ToExecuteSecRequest(ctx, prepare)
	if err != nil {
		return Summary{}, err
	}

	if err := step(ctx, execute, advance); err != nil {
		return Summary{}, err
	}

	validate, err := ToValidateSecResponse(ctx, execute)
	if err != nil {
		return Summary{}, err
	}

	if err := step(ctx, validate, advance); err != nil {
		return Summary{}, err
	}

	summary, _ := validate.CurrentState().Output()

	return summary, nil
}

// Retryable reports whether err may go away when the failed stage is advanced again.
// Network failures, timeouts, throttling and server errors are retryable; invalid
// input and invalid responses are not.
func Retryable(err error) bool {
	var reqErr *secapi.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Temporary()
	}

	return false
}

// MaxRetries implements stage.
func (s *ValidateCikFormat) MaxRetries() uint32 {
	return s.ContextData().MaxRetries()
}

// MaxRetries implements stage.
func (s *PrepareSecRequest) MaxRetries() uint32 {
	return s.ContextData().MaxRetries()
}

// MaxRetries implements stage.
func (s *ExecuteSecRequest) MaxRetries() uint32 {
	return s.ContextData().MaxRetries()
}

// MaxRetries implements stage.
func (s *ValidateSecResponse) MaxRetries() uint32 {
	return s.ContextData().MaxRetries()
}

var (
	_ statemachine.State      = (*ValidateCikFormat)(nil)
	_ statemachine.AsyncState = (*PrepareSecRequest)(nil)
	_ statemachine.AsyncState = (*ExecuteSecRequest)(nil)
	_ statemachine.State      = (*ValidateSecResponse)(nil)

	_ statemachine.StateData[ValidateCikFormatInputUpdate]     = (*ValidateCikFormatInput)(nil)
	_ statemachine.ContextData[ValidateCikFormatContextUpdate] = (*ValidateCikFormatContext)(nil)
	_ statemachine.ContextData[SuperContextUpdate]             = (*SuperContext)(nil)
	_ statemachine.StateData[SummaryUpdate]                    = (*Summary)(nil)
)
