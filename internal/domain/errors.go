package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationLineNotFound means the header text has no LOCATION line.
	ErrLocationLineNotFound = errors.New("metadata line not found")

	// ErrMalformedLocationLine means the LOCATION line is truncated or lacks a WMO index.
	ErrMalformedLocationLine = errors.New("malformed metadata line")

	// ErrNonNumericField means a coordinate, offset, or elevation field is not a number.
	ErrNonNumericField = errors.New("non-numeric field")
)

// FetchError reports a weather file whose header could not be retrieved after
// every attempt.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: giving up after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a header whose LOCATION line could not be turned into a
// Location. Field is set for ErrNonNumericField.
type ParseError struct {
	URL   string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s: %v %q", e.URL, e.Err, e.Field)
	}
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SkippedFeature reports an index feature with no usable weather file URL.
type SkippedFeature struct {
	Index  int
	Reason string
}

func (e *SkippedFeature) Error() string {
	return fmt.Sprintf("feature %d skipped: %s", e.Index, e.Reason)
}
