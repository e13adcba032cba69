package config

import (
	"fmt"
	"strings"
)

// InvalidError reports every problem found while validating a configuration.
// A run must not touch any file when its configuration is invalid.
type InvalidError struct {
	Problems []string
	Cause    error
}

func (e *InvalidError) Error() string {
	if len(e.Problems) == 0 && e.Cause != nil {
		return fmt.Sprintf("config error: %v", e.Cause)
	}
	return fmt.Sprintf("config error: %s", strings.Join(e.Problems, "; "))
}

func (e *InvalidError) Unwrap() error {
	return e.Cause
}
