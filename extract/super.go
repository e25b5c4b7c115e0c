// Package extract fetches a filer's submissions document from the SEC.
//
// The work is split into four stages run by an inner state machine:
//
//	CIK Format Validation -> Prepare SEC Request -> Execute SEC Request -> Validate SEC Response
//
// The stages are wrapped in a composite, the extract super state, whose output
// summarizes how far the inner machine got.
package extract

import (
	"fmt"

	"github.com/amp-labs/secflow/secapi"
	"github.com/amp-labs/secflow/statemachine"
)

// SuperStateName is the fixed prefix of the extract super state's name.
const SuperStateName = "Extract SuperState"

// SuperState is the extract composite whose inner machine is at stage S.
type SuperState[S statemachine.State] = statemachine.Composite[S, SuperInput, Summary, SuperContext]

// SuperInput is the aggregate input of the super state.
type SuperInput struct {
	RawCIK string
}

// SuperInputUpdate is a partial update of SuperInput.
type SuperInputUpdate struct {
	RawCIK *string
}

// UpdateState implements statemachine.StateData.
func (d *SuperInput) UpdateState(updates SuperInputUpdate) error {
	if updates.RawCIK != nil {
		d.RawCIK = *updates.RawCIK
	}

	return nil
}

func (d SuperInput) String() string {
	return "\tRaw CIK: " + d.RawCIK
}

// SuperContext is the aggregate context of the super state. It never retries on its
// own; retry budgets belong to the inner stages.
type SuperContext struct {
	statemachine.RetryBudget
}

// SuperContextUpdate is a partial update of SuperContext.
type SuperContextUpdate struct {
	Retries *uint32
}

// UpdateContext implements statemachine.ContextData.
func (c *SuperContext) UpdateContext(updates SuperContextUpdate) error {
	if updates.Retries != nil {
		c.Retries = *updates.Retries
	}

	return nil
}

func (c SuperContext) String() string {
	return fmt.Sprintf("\tMax Retries: %d", c.Retries)
}

// Summary is the output of the super state.
type Summary struct {
	// Stage is the name of the inner stage the summary was taken at.
	Stage string
	// Completed is set once the response has been validated.
	Completed bool
	CIK       string
	// Company is the filer name, known only after validation.
	Company string
}

// SummaryUpdate is a partial update of Summary.
type SummaryUpdate struct {
	Stage     *string
	Completed *bool
	CIK       *string
	Company   *string
}

// UpdateState implements statemachine.StateData.
func (s *Summary) UpdateState(updates SummaryUpdate) error {
	if updates.Stage != nil {
		s.Stage = *updates.Stage
	}

	if updates.Completed != nil {
		s.Completed = *updates.Completed
	}

	if updates.CIK != nil {
		s.CIK = *updates.CIK
	}

	if updates.Company != nil {
		s.Company = *updates.Company
	}

	return nil
}

func (s Summary) String() string {
	return fmt.Sprintf("\tStage: %s\n\tCompleted: %t\n\tCIK: %s\n\tCompany: %s",
		s.Stage, s.Completed, s.CIK, s.Company)
}

func summarize(inner statemachine.State) (Summary, error) {
	summary := Summary{Stage: inner.Name()}

	switch stage := inner.(type) {
	case *ValidateCikFormat:
		if out, ok := stage.Output(); ok {
			summary.CIK = out.CIK.String()
		}
	case *PrepareSecRequest:
		summary.CIK = stage.Input().CIK.String()
	case *ExecuteSecRequest:
		summary.CIK = stage.ContextData().CIK.String()
	case *ValidateSecResponse:
		summary.CIK = stage.ContextData().CIK.String()

		out, ok := stage.Output()
		if !ok {
			break
		}

		summary.Completed = true

		// A valid JSON document that is not a submissions index still completes.
		if subs, err := out.Document.Submissions(); err == nil {
			summary.Company = subs.Name
		}
	default:
		return Summary{}, fmt.Errorf("unexpected extract stage %T", inner)
	}

	return summary, nil
}

// Option configures an extract run.
type Option func(*options)

type options struct {
	settings Settings
	retries  uint32
	machine  []statemachine.Option
}

// WithUserAgent sets the user agent sent to the SEC.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.settings.UserAgent = ua
	}
}

// WithBaseURL points requests at a different submissions endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.settings.BaseURL = url
	}
}

// WithClientOptions passes opts to the SEC client.
func WithClientOptions(opts ...secapi.ClientOption) Option {
	return func(o *options) {
		o.settings.ClientOptions = append(o.settings.ClientOptions, opts...)
	}
}

// WithExecutor sends the request with exec instead of the prepared client.
func WithExecutor(exec secapi.Executor) Option {
	return func(o *options) {
		o.settings.Executor = exec
	}
}

// WithRetries sets the retry budget of every stage.
func WithRetries(n uint32) Option {
	return func(o *options) {
		o.retries = n
	}
}

// WithMachineOptions configures the inner and outer machines.
func WithMachineOptions(opts ...statemachine.Option) Option {
	return func(o *options) {
		o.machine = append(o.machine, opts...)
	}
}

// New returns the extract super state for raw, with its inner machine at the first
// stage.
func New(raw string, opts ...Option) *SuperState[*ValidateCikFormat] {
	o := buildOptions(opts)

	inner := statemachine.New(
		NewValidateCikFormat(raw, o.settings, o.retries),
		append([]statemachine.Option{statemachine.WithName("extract-inner")}, o.machine...)...)

	return statemachine.NewComposite(
		SuperStateName, inner, SuperInput{RawCIK: raw}, SuperContext{},
		statemachine.Fold[Summary](summarize))
}

// NewMachine returns a machine owning New(raw, opts...).
func NewMachine(raw string, opts ...Option) *statemachine.Machine[*SuperState[*ValidateCikFormat]] {
	o := buildOptions(opts)

	return statemachine.New(New(raw, opts...),
		append([]statemachine.Option{statemachine.WithName("extract")}, o.machine...)...)
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
