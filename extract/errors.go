package extract

import (
	"fmt"

	"github.com/amp-labs/secflow/cik"
	"github.com/amp-labs/secflow/secapi"
)

// InvalidCikFormat is raised by a state that could not normalize a raw CIK.
type InvalidCikFormat struct {
	State string
	Err   *cik.Error
}

// NewInvalidCikFormat converts a CIK error raised in state.
func NewInvalidCikFormat(state string, err *cik.Error) *InvalidCikFormat {
	return &InvalidCikFormat{State: state, Err: err}
}

func (e *InvalidCikFormat) Error() string {
	return fmt.Sprintf("[InvalidCikFormat] Failure in State: `%s`. Invalid CIK: Reason: '%s'. Input: '%s'.",
		e.State, e.Err.ReasonText(), e.Err.Input)
}

func (e *InvalidCikFormat) Unwrap() error {
	return e.Err
}

// FailedState implements statemachine.Failure.
func (e *InvalidCikFormat) FailedState() string {
	return e.State
}

// ClientCreationFailed is raised when the SEC client could not be built.
type ClientCreationFailed struct {
	State string
	Err   *secapi.ClientError
}

// NewClientCreationFailed converts a client error raised in state.
func NewClientCreationFailed(state string, err *secapi.ClientError) *ClientCreationFailed {
	return &ClientCreationFailed{State: state, Err: err}
}

func (e *ClientCreationFailed) Error() string {
	return fmt.Sprintf("[ClientCreationFailed] Failure in State: '%s'. Error: '%s'", e.State, e.Err)
}

func (e *ClientCreationFailed) Unwrap() error {
	return e.Err
}

// FailedState implements statemachine.Failure.
func (e *ClientCreationFailed) FailedState() string {
	return e.State
}

// RequestExecutionFailed is raised when the SEC request produced no response.
type RequestExecutionFailed struct {
	State string
	Err   *secapi.RequestError
}

// NewRequestExecutionFailed converts a request error raised in state.
func NewRequestExecutionFailed(state string, err *secapi.RequestError) *RequestExecutionFailed {
	return &RequestExecutionFailed{State: state, Err: err}
}

func (e *RequestExecutionFailed) Error() string {
	return fmt.Sprintf("[RequestExecutionFailed] Failure in State: '%s'. Error: '%s'", e.State, e.Err)
}

func (e *RequestExecutionFailed) Unwrap() error {
	return e.Err
}

// FailedState implements statemachine.Failure.
func (e *RequestExecutionFailed) FailedState() string {
	return e.State
}

// InvalidSecResponse is raised when a response is not a usable JSON document.
type InvalidSecResponse struct {
	State string
	Err   *secapi.JSONResponseError
}

// NewInvalidSecResponse converts a response validation error raised in state.
func NewInvalidSecResponse(state string, err *secapi.JSONResponseError) *InvalidSecResponse {
	return &InvalidSecResponse{State: state, Err: err}
}

func (e *InvalidSecResponse) Error() string {
	return fmt.Sprintf("[InvalidSecResponse] Failure in State: `%s`. Invalid SEC Response: %s", e.State, e.Err)
}

func (e *InvalidSecResponse) Unwrap() error {
	return e.Err
}

// FailedState implements statemachine.Failure.
func (e *InvalidSecResponse) FailedState() string {
	return e.State
}
