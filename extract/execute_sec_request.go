package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/amp-labs/secflow/cik"
	"github.com/amp-labs/secflow/secapi"
	"github.com/amp-labs/secflow/statemachine"
)

// ExecuteSecRequestName is the display name of the third stage.
const ExecuteSecRequestName = "Execute SEC Request"

var errNoExecutor = errors.New("no executor to send the request with")

// ExecuteSecRequestInput holds the executor and the request to send.
type ExecuteSecRequestInput struct {
	Executor secapi.Executor
	Request  *secapi.Request
}

// ExecuteSecRequestInputUpdate is a partial update of ExecuteSecRequestInput.
// Nil fields are absent.
type ExecuteSecRequestInputUpdate struct {
	Executor secapi.Executor
	Request  *secapi.Request
}

// UpdateState implements statemachine.StateData.
func (d *ExecuteSecRequestInput) UpdateState(updates ExecuteSecRequestInputUpdate) error {
	if updates.Executor != nil {
		d.Executor = updates.Executor
	}

	if updates.Request != nil {
		d.Request = updates.Request
	}

	return nil
}

func (d ExecuteSecRequestInput) String() string {
	url := ""
	if d.Request != nil {
		url = d.Request.URL()
	}

	return fmt.Sprintf("\tSEC Client ID: %s\n\tSEC Request URL: %s", executorLabel(d.Executor), url)
}

// ExecuteSecRequestOutput holds the raw response.
type ExecuteSecRequestOutput struct {
	Response *secapi.Response
}

// ExecuteSecRequestOutputUpdate is a partial update of ExecuteSecRequestOutput.
type ExecuteSecRequestOutputUpdate struct {
	Response *secapi.Response
}

// UpdateState implements statemachine.StateData.
func (d *ExecuteSecRequestOutput) UpdateState(updates ExecuteSecRequestOutputUpdate) error {
	if updates.Response != nil {
		d.Response = updates.Response
	}

	return nil
}

func (d ExecuteSecRequestOutput) String() string {
	if d.Response == nil {
		return "\tResponse: None"
	}

	return "\tResponse: " + d.Response.String()
}

// ExecuteSecRequestContext carries the validated CIK and the run settings.
type ExecuteSecRequestContext struct {
	statemachine.RetryBudget

	CIK      cik.CIK
	Settings Settings
}

// ExecuteSecRequestContextUpdate is a partial update of ExecuteSecRequestContext.
type ExecuteSecRequestContextUpdate struct {
	CIK     *cik.CIK
	Retries *uint32
}

// UpdateContext implements statemachine.ContextData.
func (c *ExecuteSecRequestContext) UpdateContext(updates ExecuteSecRequestContextUpdate) error {
	if updates.CIK != nil {
		c.CIK = *updates.CIK
	}

	if updates.Retries != nil {
		c.Retries = *updates.Retries
	}

	return nil
}

func (c ExecuteSecRequestContext) String() string {
	return fmt.Sprintf("\tCIK (validated): %s\n\tMax Retries: %d", c.CIK, c.Retries)
}

// ExecuteSecRequest sends the prepared request.
type ExecuteSecRequest struct {
	statemachine.Base[ExecuteSecRequestInput, ExecuteSecRequestOutput, ExecuteSecRequestContext]
}

// NewExecuteSecRequest returns the stage for input.
func NewExecuteSecRequest(input ExecuteSecRequestInput, ctxData ExecuteSecRequestContext) *ExecuteSecRequest {
	return &ExecuteSecRequest{
		Base: statemachine.NewBase[ExecuteSecRequestInput, ExecuteSecRequestOutput](
			ExecuteSecRequestName, input, ctxData),
	}
}

// ComputeOutput implements statemachine.State.
func (s *ExecuteSecRequest) ComputeOutput() error {
	return s.ComputeOutputAsync(context.Background())
}

// ComputeOutputAsync implements statemachine.AsyncState.
func (s *ExecuteSecRequest) ComputeOutputAsync(ctx context.Context) error {
	in := s.Input()
	if in.Executor == nil || in.Request == nil {
		return &statemachine.StateError{State: s.Name(), Err: errNoExecutor}
	}

	resp, err := in.Executor.ExecuteRequest(ctx, in.Request)
	if err != nil {
		return statemachine.Enrich(s.Name(), err, NewRequestExecutionFailed)
	}

	s.SetOutput(ExecuteSecRequestOutput{Response: resp})

	return nil
}
