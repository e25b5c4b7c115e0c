package secapi

import (
	"testing"

	"github.com/amp-labs/secflow/cik"
	"github.com/stretchr/testify/assert"
)

func TestNewRequest(t *testing.T) {
	t.Parallel()

	req := NewRequest(cik.MustNew(cik.BerkshireHathaway))
	assert.Equal(t, BerkshireHathawayURL, req.URL())
	assert.Equal(t, "https://data.sec.gov/submissions/CIK0001067983.json", req.URL())
	assert.Equal(t, "GET", req.Method())
	assert.Equal(t, cik.BerkshireHathawayPadded, req.CIK().String())
	assert.Equal(t, "SEC Request:\n\t\tMethod: GET\n\t\tURL: "+BerkshireHathawayURL, req.String())
}

func TestNewRequestWithBaseURL(t *testing.T) {
	t.Parallel()

	c := cik.MustNew("1234")

	assert.Equal(t, "http://127.0.0.1:8080/submissions/CIK0000001234.json",
		NewRequest(c, WithBaseURL("http://127.0.0.1:8080/submissions/")).URL())
	assert.Equal(t, "http://127.0.0.1:8080/submissions/CIK0000001234.json",
		NewRequest(c, WithBaseURL("http://127.0.0.1:8080/submissions")).URL())
	assert.Equal(t, "https://data.sec.gov/submissions/CIK0000001234.json",
		NewRequest(c, WithBaseURL("")).URL())
}
