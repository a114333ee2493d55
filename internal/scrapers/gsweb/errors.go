package gsweb

import (
	"errors"
	"fmt"
)

// ErrNotSupported is returned for data the school website does not publish.
var ErrNotSupported = errors.New("not supported by the school website")

// HolidayError means the plan does not exist because the website shows the
// holiday placeholder instead of a date.
type HolidayError struct {
	Date string
}

func (e *HolidayError) Error() string {
	return fmt.Sprintf("no substitution plan because of holidays (%q)", e.Date)
}

// NoEntriesError means the plan was readable but contained no substitutions.
type NoEntriesError struct{}

func (e *NoEntriesError) Error() string {
	return "substitution plan has no entries"
}

// ParseError is returned when a document does not have the expected layout.
type ParseError struct {
	Document string
	Strategy string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Strategy == "" {
		return fmt.Sprintf("parse %s: %s", e.Document, e.Err.Error())
	}
	return fmt.Sprintf("parse %s (%s): %s", e.Document, e.Strategy, e.Err.Error())
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsHoliday reports whether err carries a HolidayError.
func IsHoliday(err error) bool {
	var holiday *HolidayError
	return errors.As(err, &holiday)
}

// IsNoEntries reports whether err carries a NoEntriesError.
func IsNoEntries(err error) bool {
	var noEntries *NoEntriesError
	return errors.As(err, &noEntries)
}
