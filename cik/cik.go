// Package cik implements the SEC Central Index Key, the 10-digit identifier assigned
// to every filer.
package cik

import (
	"strings"
)

// Length is the number of digits in a normalized CIK.
const Length = 10

// Well-known CIKs.
const (
	BerkshireHathaway       = "1067983"
	BerkshireHathawayPadded = "0001067983"
)

// CIK is a validated Central Index Key. Its string form is always exactly Length
// ASCII digits.
type CIK struct {
	value string
}

// New validates and normalizes raw. Surrounding whitespace is ignored, non-digit
// characters are rejected and shorter values are left-padded with zeros.
func New(raw string) (CIK, error) {
	trimmed := strings.TrimSpace(raw)

	if !isDigits(trimmed) {
		return CIK{}, &Error{Reason: ReasonNonNumeric, Input: raw}
	}

	if len(trimmed) > Length {
		return CIK{}, &Error{Reason: ReasonMaxLengthExceeded, Input: raw, Length: len(trimmed)}
	}

	return CIK{value: strings.Repeat("0", Length-len(trimmed)) + trimmed}, nil
}

// MustNew is like New but panics on invalid input. Use it for hardcoded values only.
func MustNew(raw string) CIK {
	c, err := New(raw)
	if err != nil {
		panic(err)
	}

	return c
}

// IsValid reports whether s already is a normalized CIK.
func IsValid(s string) bool {
	return len(s) == Length && isDigits(s)
}

// Value returns the normalized digits.
func (c CIK) Value() string {
	return c.value
}

// IsZero reports whether c was never validated.
func (c CIK) IsZero() bool {
	return c.value == ""
}

func (c CIK) String() string {
	return c.value
}

// MarshalText implements encoding.TextMarshaler.
func (c CIK) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, validating the text.
func (c *CIK) UnmarshalText(text []byte) error {
	parsed, err := New(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

func isDigits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
