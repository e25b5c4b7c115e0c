package secapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// JSONResponse is a response body that passed status, content type and JSON checks.
type JSONResponse struct {
	body json.RawMessage
}

// ParseJSON validates resp and keeps its body as a compact JSON document.
func ParseJSON(resp *Response) (JSONResponse, error) {
	if !resp.IsSuccess() {
		return JSONResponse{}, &JSONResponseError{Reason: JSONReasonInvalidStatusCode, Status: resp.Status}
	}

	if resp.Body == "" {
		return JSONResponse{}, &JSONResponseError{Reason: JSONReasonEmptyBody}
	}

	if resp.ContentType.Kind != ContentJSON {
		return JSONResponse{}, &JSONResponseError{
			Reason: JSONReasonInvalidContentType,
			Detail: resp.ContentType.String(),
		}
	}

	var doc any
	if err := json.Unmarshal([]byte(resp.Body), &doc); err != nil {
		return JSONResponse{}, &JSONResponseError{Reason: JSONReasonInvalidStructure, Detail: err.Error(), Err: err}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(resp.Body)); err != nil {
		return JSONResponse{}, &JSONResponseError{Reason: JSONReasonOther, Detail: err.Error(), Err: err}
	}

	return JSONResponse{body: buf.Bytes()}, nil
}

// Body returns the compact document.
func (j JSONResponse) Body() json.RawMessage {
	return j.body
}

// IsZero reports whether j holds no document.
func (j JSONResponse) IsZero() bool {
	return len(j.body) == 0
}

// Decode unmarshals the document into v.
func (j JSONResponse) Decode(v any) error {
	if err := json.Unmarshal(j.body, v); err != nil {
		return fmt.Errorf("decoding SEC document: %w", err)
	}

	return nil
}

// Submissions decodes the document as a submissions index.
func (j JSONResponse) Submissions() (Submissions, error) {
	var s Submissions
	if err := j.Decode(&s); err != nil {
		return Submissions{}, err
	}

	s.Name = norm.NFC.String(s.Name)

	return s, nil
}

func (j JSONResponse) String() string {
	return fmt.Sprintf("JSON Response:\n\t\tBody: %s", j.body)
}

// Submissions is the subset of the submissions document used downstream.
type Submissions struct {
	CIK        string   `json:"cik"`
	Name       string   `json:"name"`
	EntityType string   `json:"entityType"`
	SIC        string   `json:"sic"`
	Tickers    []string `json:"tickers"`
	Exchanges  []string `json:"exchanges"`
	Filings    struct {
		Recent RecentFilings `json:"recent"`
	} `json:"filings"`
}

// RecentFilings holds the column-oriented recent filings table.
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
}

// Len returns the number of recent filings.
func (r RecentFilings) Len() int {
	return len(r.AccessionNumber)
}
