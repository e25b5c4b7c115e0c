package secapi

import (
	"bytes"
	"io"
	"mime"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// decodeBody converts data to UTF-8 using the charset of contentType, falling back
// to detection. Undecodable data is returned unchanged.
func decodeBody(data []byte, contentType string) string {
	label := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		label = params["charset"]
	}

	if label == "" && utf8.Valid(data) {
		return string(data)
	}

	reader, _ := utf8Reader(data, label)

	decoded, err := io.ReadAll(reader)
	if err != nil || !utf8.Valid(decoded) {
		return string(data)
	}

	return string(decoded)
}

// utf8Reader returns a reader decoding data to UTF-8 and the charset it used. The
// given label is tried first, then the charset detected by chardet.
func utf8Reader(data []byte, label string) (io.Reader, string) {
	if label != "" {
		if decoded, err := charset.NewReaderLabel(label, bytes.NewReader(data)); err == nil {
			return decoded, label
		}
	}

	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return bytes.NewReader(data), "utf-8"
	}

	decoded, err := charset.NewReaderLabel(best.Charset, bytes.NewReader(data))
	if err != nil {
		return bytes.NewReader(data), "utf-8"
	}

	return decoded, best.Charset
}
