package secapi

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 64 << 20

// ContentKind is the coarse classification of a content type.
type ContentKind int

const (
	ContentOther ContentKind = iota
	ContentJSON
	ContentXML
	ContentHTML
	ContentText
)

// ContentType is a classified Content-Type header.
type ContentType struct {
	Kind ContentKind
	// Raw is the header value as received, or "unknown" when absent.
	Raw string
}

// ParseContentType classifies a Content-Type header value.
func ParseContentType(value string) ContentType {
	lower := strings.ToLower(value)

	switch {
	case strings.Contains(lower, "json"):
		return ContentType{Kind: ContentJSON, Raw: value}
	case strings.Contains(lower, "xml"):
		return ContentType{Kind: ContentXML, Raw: value}
	case strings.Contains(lower, "html"):
		return ContentType{Kind: ContentHTML, Raw: value}
	case strings.Contains(lower, "text/"):
		return ContentType{Kind: ContentText, Raw: value}
	default:
		return ContentType{Kind: ContentOther, Raw: value}
	}
}

// ContentTypeFromHeaders classifies the content-type entry of lower-cased headers.
func ContentTypeFromHeaders(headers map[string]string) ContentType {
	value, ok := headers["content-type"]
	if !ok {
		return ContentType{Kind: ContentOther, Raw: "unknown"}
	}

	return ParseContentType(value)
}

func (c ContentType) String() string {
	switch c.Kind {
	case ContentJSON:
		return "application/json"
	case ContentXML:
		return "application/xml"
	case ContentHTML:
		return "text/html"
	case ContentText:
		return "text/plain"
	default:
		return c.Raw
	}
}

// Response is a fully read SEC response. Body is UTF-8.
type Response struct {
	URL         string
	Status      int
	Headers     map[string]string
	ContentType ContentType
	Body        string
}

// NewResponse reads resp into a Response. The caller still owns resp.Body.
func NewResponse(resp *http.Response) (*Response, error) {
	headers := make(map[string]string, len(resp.Header))

	for name, values := range resp.Header {
		value := strings.Join(values, ", ")
		if !utf8.ValidString(value) {
			slog.Warn("Header value is not valid UTF-8", "header", name)

			value = "invalid-utf8"
		}

		headers[strings.ToLower(name)] = value
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		reason := ResponseReasonOther

		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			reason = ResponseReasonNetwork
		}

		return nil, &ResponseError{Reason: reason, Detail: err.Error(), Err: err}
	}

	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}

	return &Response{
		URL:         url,
		Status:      resp.StatusCode,
		Headers:     headers,
		ContentType: ContentTypeFromHeaders(headers),
		Body:        decodeBody(data, headers["content-type"]),
	}, nil
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

func (r *Response) String() string {
	return fmt.Sprintf("SEC Response:\n\t\tStatus: %s\n\t\tURL: %s\n\t\tContent-Type: %s\n\t\tBody Length: %d bytes",
		statusLine(r.Status), r.URL, r.ContentType, len(r.Body))
}
