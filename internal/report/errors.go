// Package report writes and reads the JSON reports kept in the library's
// logs directory.
package report

import "fmt"

// Error represents a report read or write failure
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("report error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("report error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrNoProblemList is returned when no encoding scan has been recorded.
var ErrNoProblemList = &Error{Message: "no encoding problem list, run scan first"}
