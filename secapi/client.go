// Package secapi talks to the SEC EDGAR submissions API.
package secapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single request made by a Client built without options.
const DefaultTimeout = 30 * time.Second

// Executor sends SEC requests. *Client implements it; states depend on this interface
// so that tests can inject a fake.
type Executor interface {
	ExecuteRequest(ctx context.Context, req *Request) (*Response, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, req *Request) (*Response, error)

// ExecuteRequest implements Executor.
func (f ExecutorFunc) ExecuteRequest(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Client is an HTTP client identifying itself with a validated user agent.
type Client struct {
	id         string
	userAgent  UserAgent
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	transport  http.RoundTripper
	timeout    time.Duration
}

// WithHTTPClient uses c as is. It takes precedence over WithTransport and WithTimeout.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithTransport replaces the default transport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// NewClient validates userAgent and builds a Client.
func NewClient(userAgent string, opts ...ClientOption) (*Client, error) {
	ua, err := NewUserAgent(userAgent)
	if err != nil {
		return nil, &ClientError{Reason: ClientReasonInvalidUserAgent, UserAgent: userAgent, Err: err}
	}

	o := clientOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if o.timeout < 0 {
		return nil, &ClientError{
			Reason:    ClientReasonInvalidConfiguration,
			UserAgent: userAgent,
			Err:       fmt.Errorf("negative timeout %s", o.timeout),
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		transport := o.transport
		if transport == nil {
			transport = NewTransport()
		}

		httpClient = &http.Client{Transport: transport, Timeout: o.timeout}
	}

	return &Client{
		id:         uuid.NewString(),
		userAgent:  ua,
		httpClient: httpClient,
	}, nil
}

// ID uniquely identifies the client.
func (c *Client) ID() string {
	return c.id
}

// UserAgent returns the validated user agent.
func (c *Client) UserAgent() UserAgent {
	return c.userAgent
}

func (c *Client) String() string {
	return fmt.Sprintf("SEC Client:\n\t\tID: %s\n\t\tUser Agent: %s", c.id, c.userAgent)
}

// ExecuteRequest sends req and reads the full response. Throttling (429) and server
// errors (5xx) are reported as RequestReasonHTTP so that callers may retry them;
// other statuses are returned for validation.
func (c *Client) ExecuteRequest(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), req.URL(), nil)
	if err != nil {
		return nil, &RequestError{Reason: RequestReasonOther, Detail: err.Error(), Err: err}
	}

	httpReq.Header.Set("User-Agent", c.userAgent.String())
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= http.StatusInternalServerError {
		return nil, &RequestError{
			Reason: RequestReasonHTTP,
			Detail: statusLine(httpResp.StatusCode),
			Status: httpResp.StatusCode,
		}
	}

	resp, err := NewResponse(httpResp)
	if err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			return nil, respErr.asRequestError()
		}

		return nil, &RequestError{Reason: RequestReasonOther, Detail: err.Error(), Err: err}
	}

	return resp, nil
}

func classifyRequestError(err error) *RequestError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{Reason: RequestReasonTimeout, Detail: err.Error(), Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RequestError{Reason: RequestReasonTimeout, Detail: err.Error(), Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &RequestError{Reason: RequestReasonNetwork, Detail: err.Error(), Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &RequestError{Reason: RequestReasonNetwork, Detail: err.Error(), Err: err}
	}

	return &RequestError{Reason: RequestReasonOther, Detail: err.Error(), Err: err}
}

var _ Executor = (*Client)(nil)
