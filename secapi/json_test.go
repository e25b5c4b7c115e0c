package secapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const submissionsFixture = `{
  "cik": "1067983",
  "name": "BERKSHIRE HATHAWAY INC",
  "entityType": "operating",
  "sic": "6331",
  "tickers": ["BRK-B", "BRK-A"],
  "exchanges": ["NYSE", "NYSE"],
  "filings": {
    "recent": {
      "accessionNumber": ["0000950170-24-000001", "0000950170-24-000002"],
      "filingDate": ["2024-02-26", "2024-02-14"],
      "form": ["10-K", "SC 13G/A"]
    }
  }
}`

func jsonResponse(status int, contentType, body string) *Response {
	return &Response{
		URL:         BerkshireHathawayURL,
		Status:      status,
		Headers:     map[string]string{"content-type": contentType},
		ContentType: ParseContentType(contentType),
		Body:        body,
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	doc, err := ParseJSON(jsonResponse(http.StatusOK, "application/json", submissionsFixture))
	require.NoError(t, err)
	assert.False(t, doc.IsZero())
	assert.NotContains(t, string(doc.Body()), "\n")

	subs, err := doc.Submissions()
	require.NoError(t, err)
	assert.Equal(t, "1067983", subs.CIK)
	assert.Equal(t, "BERKSHIRE HATHAWAY INC", subs.Name)
	assert.Equal(t, []string{"BRK-B", "BRK-A"}, subs.Tickers)
	assert.Equal(t, 2, subs.Filings.Recent.Len())
	assert.Equal(t, "10-K", subs.Filings.Recent.Form[0])
	assert.Contains(t, doc.String(), "JSON Response:\n\t\tBody: {\"cik\":\"1067983\"")
}

func TestParseJSONRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resp   *Response
		reason JSONReason
	}{
		{"not found", jsonResponse(http.StatusNotFound, "application/json", `{}`), JSONReasonInvalidStatusCode},
		{"empty body", jsonResponse(http.StatusOK, "application/json", ""), JSONReasonEmptyBody},
		{"html", jsonResponse(http.StatusOK, "text/html", "<html></html>"), JSONReasonInvalidContentType},
		{"broken json", jsonResponse(http.StatusOK, "application/json", `{"cik":`), JSONReasonInvalidStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseJSON(tt.resp)

			var jsonErr *JSONResponseError
			require.ErrorAs(t, err, &jsonErr)
			assert.Equal(t, tt.reason, jsonErr.Reason)
		})
	}
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	doc, err := ParseJSON(jsonResponse(http.StatusOK, "application/json", `[1,2,3]`))
	require.NoError(t, err)

	_, err = doc.Submissions()
	require.ErrorContains(t, err, "decoding SEC document")
}
