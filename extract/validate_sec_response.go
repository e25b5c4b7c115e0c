package extract

import (
	"fmt"

	"github.com/amp-labs/secflow/cik"
	"github.com/amp-labs/secflow/secapi"
	"github.com/amp-labs/secflow/statemachine"
)

// ValidateSecResponseName is the display name of the last stage.
const ValidateSecResponseName = "Validate SEC Response"

// ValidateSecResponseInput holds the response to validate.
type ValidateSecResponseInput struct {
	Response *secapi.Response
}

// ValidateSecResponseInputUpdate is a partial update of ValidateSecResponseInput.
type ValidateSecResponseInputUpdate struct {
	Response *secapi.Response
}

// UpdateState implements statemachine.StateData.
func (d *ValidateSecResponseInput) UpdateState(updates ValidateSecResponseInputUpdate) error {
	if updates.Response != nil {
		d.Response = updates.Response
	}

	return nil
}

func (d ValidateSecResponseInput) String() string {
	if d.Response == nil {
		return "\tInput Data: None"
	}

	return "\tInput Data: " + d.Response.String()
}

// ValidateSecResponseOutput holds the validated JSON document.
type ValidateSecResponseOutput struct {
	Document secapi.JSONResponse
}

// ValidateSecResponseOutputUpdate is a partial update of ValidateSecResponseOutput.
type ValidateSecResponseOutputUpdate struct {
	Document *secapi.JSONResponse
}

// UpdateState implements statemachine.StateData.
func (d *ValidateSecResponseOutput) UpdateState(updates ValidateSecResponseOutputUpdate) error {
	if updates.Document != nil {
		d.Document = *updates.Document
	}

	return nil
}

func (d ValidateSecResponseOutput) String() string {
	return "\tOutput Data: " + d.Document.String()
}

// ValidateSecResponseContext carries the CIK the response belongs to.
type ValidateSecResponseContext struct {
	statemachine.RetryBudget

	CIK cik.CIK
}

// ValidateSecResponseContextUpdate is a partial update of ValidateSecResponseContext.
type ValidateSecResponseContextUpdate struct {
	CIK     *cik.CIK
	Retries *uint32
}

// UpdateContext implements statemachine.ContextData.
func (c *ValidateSecResponseContext) UpdateContext(updates ValidateSecResponseContextUpdate) error {
	if updates.CIK != nil {
		c.CIK = *updates.CIK
	}

	if updates.Retries != nil {
		c.Retries = *updates.Retries
	}

	return nil
}

func (c ValidateSecResponseContext) String() string {
	return fmt.Sprintf("\tContext Data: %s\n\tMax Retries: %d", c.CIK, c.Retries)
}

// ValidateSecResponse checks that the response is a well formed JSON document.
type ValidateSecResponse struct {
	statemachine.Base[ValidateSecResponseInput, ValidateSecResponseOutput, ValidateSecResponseContext]
}

// NewValidateSecResponse returns the stage for input.
func NewValidateSecResponse(input ValidateSecResponseInput, ctxData ValidateSecResponseContext) *ValidateSecResponse {
	return &ValidateSecResponse{
		Base: statemachine.NewBase[ValidateSecResponseInput, ValidateSecResponseOutput](
			ValidateSecResponseName, input, ctxData),
	}
}

// ComputeOutput implements statemachine.State.
func (s *ValidateSecResponse) ComputeOutput() error {
	in := s.Input()
	if in.Response == nil {
		return statemachine.Enrich(s.Name(),
			&secapi.JSONResponseError{Reason: secapi.JSONReasonEmptyBody}, NewInvalidSecResponse)
	}

	doc, err := secapi.ParseJSON(in.Response)
	if err != nil {
		return statemachine.Enrich(s.Name(), err, NewInvalidSecResponse)
	}

	s.SetOutput(ValidateSecResponseOutput{Document: doc})

	return nil
}
