package driver

import "fmt"

// RenderError indicates a page failed to render in the browser.
type RenderError struct {
	URL   string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error for %s: %v", e.URL, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// InteractionError indicates a page rendered but the search interaction
// could not be completed.
type InteractionError struct {
	URL     string
	Message string
	Cause   error
}

func (e *InteractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("interaction error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("interaction error for %s: %s", e.URL, e.Message)
}

func (e *InteractionError) Unwrap() error {
	return e.Cause
}
