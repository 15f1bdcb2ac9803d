package analysis

import "fmt"

// ParseError indicates the model reply could not be turned into a usable
// analysis result even after repair.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ModelError indicates the model call itself failed (network, quota,
// provider outage). Callers fall back to heuristics on this error.
type ModelError struct {
	Message string
	Cause   error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis model error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis model error: %s", e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}
