package cik

import "fmt"

// Reason classifies why a raw CIK was rejected.
type Reason int

const (
	// ReasonMaxLengthExceeded means the digits do not fit in Length characters.
	ReasonMaxLengthExceeded Reason = iota + 1
	// ReasonNonNumeric means the input contains something other than digits.
	ReasonNonNumeric
)

// Error is returned when a raw CIK cannot be normalized.
type Error struct {
	Reason Reason
	// Input is the raw value as given, before trimming.
	Input string
	// Length is the offending length for ReasonMaxLengthExceeded.
	Length int
}

func (e *Error) Error() string {
	return fmt.Sprintf("[CikError] Invalid CIK: Reason: '%s'. Input: '%s'.", e.ReasonText(), e.Input)
}

// ReasonText renders the rejection reason.
func (e *Error) ReasonText() string {
	switch e.Reason {
	case ReasonMaxLengthExceeded:
		return fmt.Sprintf("CIK cannot exceed %d digits. Got: '%d'", Length, e.Length)
	case ReasonNonNumeric:
		// The misspelling is part of the published message format.
		return "CIK contains non-numeric chracters."
	default:
		return "unknown reason"
	}
}
