package secapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/amp-labs/secflow/cik"
)

// Submissions endpoint layout.
const (
	DefaultBaseURL       = "https://data.sec.gov/submissions/"
	SubmissionsURLPrefix = DefaultBaseURL + "CIK"
	SubmissionsURLSuffix = ".json"
	BerkshireHathawayURL = SubmissionsURLPrefix + cik.BerkshireHathawayPadded + SubmissionsURLSuffix
)

// Request is a GET for one filer's submissions document.
type Request struct {
	cik cik.CIK
	url string
}

// RequestOption configures a Request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	baseURL string
}

// WithBaseURL replaces DefaultBaseURL, for mirrors and tests.
func WithBaseURL(baseURL string) RequestOption {
	return func(o *requestOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// NewRequest builds the submissions request for c.
func NewRequest(c cik.CIK, opts ...RequestOption) *Request {
	o := requestOptions{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&o)
	}

	base := strings.TrimSuffix(o.baseURL, "/")

	return &Request{
		cik: c,
		url: base + "/CIK" + c.String() + SubmissionsURLSuffix,
	}
}

// CIK returns the filer the request is for.
func (r *Request) CIK() cik.CIK {
	return r.cik
}

// URL returns the request URL.
func (r *Request) URL() string {
	return r.url
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return http.MethodGet
}

func (r *Request) String() string {
	return fmt.Sprintf("SEC Request:\n\t\tMethod: %s\n\t\tURL: %s", r.Method(), r.url)
}
