package secapi

import (
	"fmt"
	"net/http"
)

// UserAgentReason classifies a rejected user agent.
type UserAgentReason int

const (
	// UserAgentReasonInvalidFormat means the value is not "<company> <email>".
	UserAgentReasonInvalidFormat UserAgentReason = iota + 1
)

func (r UserAgentReason) String() string {
	switch r {
	case UserAgentReasonInvalidFormat:
		return "The format required for the SEC api is invalid."
	default:
		return "unknown reason"
	}
}

// UserAgentError is returned when a user agent does not follow the SEC format.
type UserAgentError struct {
	Reason    UserAgentReason
	UserAgent string
}

func (e *UserAgentError) Error() string {
	return fmt.Sprintf("[UserAgentError] User agent creation failed: Reason: '%s'. Input: '%s'.",
		e.Reason, e.UserAgent)
}

// ClientReason classifies a client construction failure.
type ClientReason int

const (
	// ClientReasonInvalidConfiguration means the HTTP client options are unusable.
	ClientReasonInvalidConfiguration ClientReason = iota + 1
	// ClientReasonInvalidUserAgent means the user agent was rejected.
	ClientReasonInvalidUserAgent
)

func (r ClientReason) String() string {
	switch r {
	case ClientReasonInvalidConfiguration:
		return "HTTP client could not be created due to an invalid configuration."
	case ClientReasonInvalidUserAgent:
		return "The user agent string is invalid."
	default:
		return "unknown reason"
	}
}

// ClientError is returned when a Client cannot be built.
type ClientError struct {
	Reason    ClientReason
	UserAgent string
	Err       error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("[SecClientError] Client creation failed: Reason: '%s'. Input: '%s'.",
		e.Reason, e.UserAgent)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// RequestReason classifies a failed request.
type RequestReason int

const (
	RequestReasonNetwork RequestReason = iota + 1
	RequestReasonHTTP
	RequestReasonTimeout
	RequestReasonOther
)

// RequestError is returned when a request could not produce a response.
type RequestError struct {
	Reason RequestReason
	// Detail is the human readable cause. For RequestReasonHTTP it is the status line.
	Detail string
	// Status is set for RequestReasonHTTP.
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("[SecRequestError] Request failed: Reason: '%s'.", e.ReasonText())
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ReasonText renders the failure reason.
func (e *RequestError) ReasonText() string {
	switch e.Reason {
	case RequestReasonNetwork:
		return fmt.Sprintf("The HTTP request failed due to a network error: %s.", e.Detail)
	case RequestReasonHTTP:
		return fmt.Sprintf("The HTTP request failed due to an HTTP error: %s.", e.Detail)
	case RequestReasonTimeout:
		return fmt.Sprintf("The HTTP request timed out: %s.", e.Detail)
	default:
		return fmt.Sprintf("The HTTP request failed for an unknown reason: %s.", e.Detail)
	}
}

// Temporary reports whether repeating the request may succeed.
func (e *RequestError) Temporary() bool {
	switch e.Reason {
	case RequestReasonNetwork, RequestReasonTimeout, RequestReasonHTTP:
		return true
	default:
		return false
	}
}

// ResponseReason classifies a response that could not be read.
type ResponseReason int

const (
	ResponseReasonNetwork ResponseReason = iota + 1
	ResponseReasonOther
)

// ResponseError is returned when a response body or its headers cannot be processed.
type ResponseError struct {
	Reason ResponseReason
	Detail string
	Err    error
}

func (e *ResponseError) Error() string {
	return "[SecResponseError] Response processing failed: " + e.ReasonText()
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// ReasonText renders the failure reason.
func (e *ResponseError) ReasonText() string {
	switch e.Reason {
	case ResponseReasonNetwork:
		return "Network error occurred while processing response: " + e.Detail
	default:
		return "An unspecified error occurred during response processing: " + e.Detail
	}
}

// asRequestError folds a response processing failure into the request taxonomy.
func (e *ResponseError) asRequestError() *RequestError {
	reason := RequestReasonOther
	if e.Reason == ResponseReasonNetwork {
		reason = RequestReasonNetwork
	}

	return &RequestError{Reason: reason, Detail: e.Detail, Err: e}
}

// JSONReason classifies a response that is not a usable JSON document.
type JSONReason int

const (
	JSONReasonInvalidStatusCode JSONReason = iota + 1
	JSONReasonEmptyBody
	JSONReasonInvalidContentType
	JSONReasonInvalidStructure
	JSONReasonOther
)

// JSONResponseError is returned by ParseJSON.
type JSONResponseError struct {
	Reason JSONReason
	// Status is set for JSONReasonInvalidStatusCode.
	Status int
	Detail string
	Err    error
}

func (e *JSONResponseError) Error() string {
	return "[JsonResponseError] Response validation failed: " + e.ReasonText()
}

func (e *JSONResponseError) Unwrap() error {
	return e.Err
}

// ReasonText renders the failure reason.
func (e *JSONResponseError) ReasonText() string {
	switch e.Reason {
	case JSONReasonInvalidStatusCode:
		return fmt.Sprintf("Response status code %s indicates failure (expected 2xx).", statusLine(e.Status))
	case JSONReasonEmptyBody:
		return "Response body is empty when content is expected."
	case JSONReasonInvalidContentType:
		return "Invalid or unexpected content type: " + e.Detail
	case JSONReasonInvalidStructure:
		return "Response body contains invalid JSON structure: " + e.Detail
	default:
		return "An unspecified validation error occurred: " + e.Detail
	}
}

func statusLine(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return fmt.Sprintf("%d", code)
	}

	return fmt.Sprintf("%d %s", code, text)
}
