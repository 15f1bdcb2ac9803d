package discovery

import "fmt"

// LinkExtractionError represents a failure in extracting links from HTML.
type LinkExtractionError struct {
	Message string
	Cause   error
}

func (e *LinkExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("link extraction error: %s", e.Message)
}

func (e *LinkExtractionError) Unwrap() error {
	return e.Cause
}

// CacheError represents a failure reading or writing the discovery cache.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("discovery cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("discovery cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}
