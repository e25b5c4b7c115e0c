package extract

import (
	"context"
	"fmt"

	"github.com/amp-labs/secflow/cik"
	"github.com/amp-labs/secflow/secapi"
	"github.com/amp-labs/secflow/statemachine"
)

// PrepareSecRequestName is the display name of the second stage.
const PrepareSecRequestName = "Prepare SEC Request"

// PrepareSecRequestInput holds what is needed to build a client and a request.
type PrepareSecRequestInput struct {
	CIK       cik.CIK
	UserAgent string
}

// PrepareSecRequestInputUpdate is a partial update of PrepareSecRequestInput.
type PrepareSecRequestInputUpdate struct {
	CIK       *cik.CIK
	UserAgent *string
}

// WithCIK sets the CIK in the update.
func (u PrepareSecRequestInputUpdate) WithCIK(c cik.CIK) PrepareSecRequestInputUpdate {
	u.CIK = &c

	return u
}

// WithUserAgent sets the user agent in the update.
func (u PrepareSecRequestInputUpdate) WithUserAgent(ua string) PrepareSecRequestInputUpdate {
	u.UserAgent = &ua

	return u
}

// UpdateState implements statemachine.StateData.
func (d *PrepareSecRequestInput) UpdateState(updates PrepareSecRequestInputUpdate) error {
	if updates.CIK != nil {
		d.CIK = *updates.CIK
	}

	if updates.UserAgent != nil {
		d.UserAgent = *updates.UserAgent
	}

	return nil
}

func (d PrepareSecRequestInput) String() string {
	return fmt.Sprintf("\tValidated CIK: %s\n\tUser Agent: %s", d.CIK, d.UserAgent)
}

// PrepareSecRequestOutput holds the prepared client and request.
type PrepareSecRequestOutput struct {
	Client  *secapi.Client
	Request *secapi.Request
}

// PrepareSecRequestOutputUpdate is a partial update of PrepareSecRequestOutput.
// Nil fields are absent.
type PrepareSecRequestOutputUpdate struct {
	Client  *secapi.Client
	Request *secapi.Request
}

// UpdateState implements statemachine.StateData.
func (d *PrepareSecRequestOutput) UpdateState(updates PrepareSecRequestOutputUpdate) error {
	if updates.Client != nil {
		d.Client = updates.Client
	}

	if updates.Request != nil {
		d.Request = updates.Request
	}

	return nil
}

func (d PrepareSecRequestOutput) String() string {
	url := ""
	if d.Request != nil {
		url = d.Request.URL()
	}

	return fmt.Sprintf("\tURL: %s\n\tClient: %s", url, executorLabel(d.Client))
}

// PrepareSecRequestContext carries the validated CIK and the run settings.
type PrepareSecRequestContext struct {
	statemachine.RetryBudget

	CIK      cik.CIK
	Settings Settings
}

// PrepareSecRequestContextUpdate is a partial update of PrepareSecRequestContext.
type PrepareSecRequestContextUpdate struct {
	CIK     *cik.CIK
	Retries *uint32
}

// UpdateContext implements statemachine.ContextData.
func (c *PrepareSecRequestContext) UpdateContext(updates PrepareSecRequestContextUpdate) error {
	if updates.CIK != nil {
		c.CIK = *updates.CIK
	}

	if updates.Retries != nil {
		c.Retries = *updates.Retries
	}

	return nil
}

func (c PrepareSecRequestContext) String() string {
	return fmt.Sprintf("\tCIK (validated): %s\n\tMax Retries: %d", c.CIK, c.Retries)
}

// PrepareSecRequest builds the SEC client and the submissions request.
type PrepareSecRequest struct {
	statemachine.Base[PrepareSecRequestInput, PrepareSecRequestOutput, PrepareSecRequestContext]
}

// NewPrepareSecRequest returns the stage for input.
func NewPrepareSecRequest(input PrepareSecRequestInput, ctxData PrepareSecRequestContext) *PrepareSecRequest {
	return &PrepareSecRequest{
		Base: statemachine.NewBase[PrepareSecRequestInput, PrepareSecRequestOutput](
			PrepareSecRequestName, input, ctxData),
	}
}

// ComputeOutput implements statemachine.State.
func (s *PrepareSecRequest) ComputeOutput() error {
	return s.ComputeOutputAsync(context.Background())
}

// ComputeOutputAsync implements statemachine.AsyncState.
func (s *PrepareSecRequest) ComputeOutputAsync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &statemachine.StateError{State: s.Name(), Err: err}
	}

	in := s.Input()
	settings := s.ContextData().Settings

	client, err := secapi.NewClient(in.UserAgent, settings.ClientOptions...)
	if err != nil {
		return statemachine.Enrich(s.Name(), err, NewClientCreationFailed)
	}

	s.SetOutput(PrepareSecRequestOutput{
		Client:  client,
		Request: secapi.NewRequest(in.CIK, settings.requestOptions()...),
	})

	return nil
}

func executorLabel(exec secapi.Executor) string {
	switch e := exec.(type) {
	case nil:
		return "None"
	case *secapi.Client:
		if e == nil {
			return "None"
		}

		return e.ID()
	default:
		return fmt.Sprintf("%T", exec)
	}
}
