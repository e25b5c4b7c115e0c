package extract

import (
	"fmt"

	"github.com/amp-labs/secflow/cik"
	"github.com/amp-labs/secflow/statemachine"
)

// ValidateCikFormatName is the display name of the first stage.
const ValidateCikFormatName = "CIK Format Validation"

// ValidateCikFormatInput holds the raw, user supplied CIK.
type ValidateCikFormatInput struct {
	RawCIK string
}

// ValidateCikFormatInputUpdate is a partial update of ValidateCikFormatInput.
type ValidateCikFormatInputUpdate struct {
	RawCIK *string
}

// WithRawCIK sets the raw CIK in the update.
func (u ValidateCikFormatInputUpdate) WithRawCIK(raw string) ValidateCikFormatInputUpdate {
	u.RawCIK = &raw

	return u
}

// UpdateState implements statemachine.StateData.
func (d *ValidateCikFormatInput) UpdateState(updates ValidateCikFormatInputUpdate) error {
	if updates.RawCIK != nil {
		d.RawCIK = *updates.RawCIK
	}

	return nil
}

func (d ValidateCikFormatInput) String() string {
	return "\tCIK: " + d.RawCIK
}

// ValidateCikFormatOutput holds the normalized CIK.
type ValidateCikFormatOutput struct {
	CIK cik.CIK
}

// ValidateCikFormatOutputUpdate is a partial update of ValidateCikFormatOutput.
type ValidateCikFormatOutputUpdate struct {
	CIK *cik.CIK
}

// UpdateState implements statemachine.StateData.
func (d *ValidateCikFormatOutput) UpdateState(updates ValidateCikFormatOutputUpdate) error {
	if updates.CIK != nil {
		d.CIK = *updates.CIK
	}

	return nil
}

func (d ValidateCikFormatOutput) String() string {
	return "\tValid CIK: " + d.CIK.String()
}

// ValidateCikFormatContext carries the raw CIK and the run settings.
type ValidateCikFormatContext struct {
	statemachine.RetryBudget

	RawCIK   string
	Settings Settings
}

// ValidateCikFormatContextUpdate is a partial update of ValidateCikFormatContext.
type ValidateCikFormatContextUpdate struct {
	RawCIK  *string
	Retries *uint32
}

// WithRawCIK sets the raw CIK in the update.
func (u ValidateCikFormatContextUpdate) WithRawCIK(raw string) ValidateCikFormatContextUpdate {
	u.RawCIK = &raw

	return u
}

// WithRetries sets the retry budget in the update.
func (u ValidateCikFormatContextUpdate) WithRetries(n uint32) ValidateCikFormatContextUpdate {
	u.Retries = &n

	return u
}

// UpdateContext implements statemachine.ContextData.
func (c *ValidateCikFormatContext) UpdateContext(updates ValidateCikFormatContextUpdate) error {
	if updates.RawCIK != nil {
		c.RawCIK = *updates.RawCIK
	}

	if updates.Retries != nil {
		c.Retries = *updates.Retries
	}

	return nil
}

func (c ValidateCikFormatContext) String() string {
	return fmt.Sprintf("\tUnvalidated CIK: %s\n\tMax Retries: %d", c.RawCIK, c.Retries)
}

// ValidateCikFormat normalizes a raw CIK into its ten digit form.
type ValidateCikFormat struct {
	statemachine.Base[ValidateCikFormatInput, ValidateCikFormatOutput, ValidateCikFormatContext]
}

// NewValidateCikFormat returns the stage for raw.
func NewValidateCikFormat(raw string, settings Settings, retries uint32) *ValidateCikFormat {
	return &ValidateCikFormat{
		Base: statemachine.NewBase[ValidateCikFormatInput, ValidateCikFormatOutput](
			ValidateCikFormatName,
			ValidateCikFormatInput{RawCIK: raw},
			ValidateCikFormatContext{
				RetryBudget: statemachine.RetryBudget{Retries: retries},
				RawCIK:      raw,
				Settings:    settings,
			}),
	}
}

// ComputeOutput implements statemachine.State.
func (s *ValidateCikFormat) ComputeOutput() error {
	validated, err := cik.New(s.Input().RawCIK)
	if err != nil {
		return statemachine.Enrich(s.Name(), err, NewInvalidCikFormat)
	}

	s.SetOutput(ValidateCikFormatOutput{CIK: validated})

	return nil
}
