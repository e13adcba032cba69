// Package placement moves files into destination directories without ever
// overwriting an existing file.
package placement

import "fmt"

// Error represents a failed move. The source file is left where it was.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("placement error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("placement error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
