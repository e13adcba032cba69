// Package encoding resolves text files of unknown legacy encodings to UTF-8
// and repairs them in place behind a verified backup.
package encoding

import "fmt"

// Error represents a general encoding error
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("encoding error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("encoding error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UnresolvedError is returned when no candidate encoding decodes a file
// plausibly. The file is left untouched.
type UnresolvedError struct {
	Path  string
	Tried []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("encoding unresolved: %s (tried %d candidates)", e.Path, len(e.Tried))
}

// RepairIOError is returned when an in-place repair fails. The original file
// is intact and any backup already written is kept.
type RepairIOError struct {
	Path  string
	Stage Stage
	Cause error
}

func (e *RepairIOError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repair failed at %s: %s: %v", e.Stage, e.Path, e.Cause)
	}
	return fmt.Sprintf("repair failed at %s: %s", e.Stage, e.Path)
}

func (e *RepairIOError) Unwrap() error {
	return e.Cause
}
