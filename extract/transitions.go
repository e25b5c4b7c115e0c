package extract

import (
	"context"

	"github.com/amp-labs/secflow/statemachine"
)

// Transitions between the inner stages. Each fails with a MissingOutput naming the
// extract super state when its source has not been computed.
var (
	ValidateToPrepare = statemachine.TransitionFunc[*ValidateCikFormat, *PrepareSecRequest](validateToPrepare)
	PrepareToExecute  = statemachine.TransitionFunc[*PrepareSecRequest, *ExecuteSecRequest](prepareToExecute)
	ExecuteToValidate = statemachine.TransitionFunc[*ExecuteSecRequest, *ValidateSecResponse](executeToValidate)
)

func validateToPrepare(_ context.Context, from *ValidateCikFormat) (*PrepareSecRequest, error) {
	out, err := statemachine.RequireOutput[ValidateCikFormatOutput](SuperStateName, from)
	if err != nil {
		return nil, err
	}

	ctxData := from.ContextData()

	return NewPrepareSecRequest(
		PrepareSecRequestInput{CIK: out.CIK, UserAgent: ctxData.Settings.userAgent()},
		PrepareSecRequestContext{RetryBudget: ctxData.RetryBudget, CIK: out.CIK, Settings: ctxData.Settings},
	), nil
}

func prepareToExecute(_ context.Context, from *PrepareSecRequest) (*ExecuteSecRequest, error) {
	out, err := statemachine.RequireOutput[PrepareSecRequestOutput](SuperStateName, from)
	if err != nil {
		return nil, err
	}

	ctxData := from.ContextData()

	input := ExecuteSecRequestInput{Executor: out.Client, Request: out.Request}
	if ctxData.Settings.Executor != nil {
		input.Executor = ctxData.Settings.Executor
	}

	return NewExecuteSecRequest(input, ExecuteSecRequestContext{
		RetryBudget: ctxData.RetryBudget,
		CIK:         ctxData.CIK,
		Settings:    ctxData.Settings,
	}), nil
}

func executeToValidate(_ context.Context, from *ExecuteSecRequest) (*ValidateSecResponse, error) {
	out, err := statemachine.RequireOutput[ExecuteSecRequestOutput](SuperStateName, from)
	if err != nil {
		return nil, err
	}

	ctxData := from.ContextData()

	return NewValidateSecResponse(
		ValidateSecResponseInput{Response: out.Response},
		ValidateSecResponseContext{RetryBudget: ctxData.RetryBudget, CIK: ctxData.CIK},
	), nil
}
