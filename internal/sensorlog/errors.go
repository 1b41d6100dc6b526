package sensorlog

import (
	"errors"
	"fmt"
)

// ErrNotFinite is the cause of a NumericFormatError for NaN or infinite
// values.
var ErrNotFinite = errors.New("value is not finite")

// MalformedLineError reports a marker line that does not have the expected
// field layout.
type MalformedLineError struct {
	Line   int // 1-based
	Kind   LineKind
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: malformed %s line: %s", e.Line, e.Kind, e.Reason)
}

// NumericFormatError reports a numeric field that could not be parsed.
type NumericFormatError struct {
	Line  int // 1-based
	Field string
	Value string
	Err   error
}

func (e *NumericFormatError) Error() string {
	return fmt.Sprintf("line %d: invalid %s value %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *NumericFormatError) Unwrap() error {
	return e.Err
}
