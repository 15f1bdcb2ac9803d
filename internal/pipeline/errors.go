package pipeline

import "fmt"

// RunError indicates a whole run could not proceed or produced nothing.
type RunError struct {
	Message string
	Cause   error
}

func (e *RunError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("run error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("run error: %s", e.Message)
}

func (e *RunError) Unwrap() error {
	return e.Cause
}
