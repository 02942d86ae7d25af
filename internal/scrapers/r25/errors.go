package r25

import (
	"fmt"
)

// ConfigurationError is returned before any request is made when the scraper
// cannot be set up from the values it was given.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("r25: invalid configuration: %s: %s", e.Field, e.Reason)
}

// RequestFailedError is a page fetch that did not produce a 2xx response.
// Status is 0 when no response was received at all.
type RequestFailedError struct {
	Status      int
	BodySnippet string
	Err         error
}

func (e *RequestFailedError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("r25: request failed: %v", e.Err)
	}
	if e.BodySnippet == "" {
		return fmt.Sprintf("r25: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("r25: request failed with status %d: %s", e.Status, e.BodySnippet)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// ParseFailedError is a response body that could not be read as a reservations document.
type ParseFailedError struct {
	Reason string
	Err    error
}

func (e *ParseFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("r25: parse failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("r25: parse failed: %s", e.Reason)
}

func (e *ParseFailedError) Unwrap() error {
	return e.Err
}

// SkipError means a raw record was unusable and has been left out of the results.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("r25: skipped record: %s", e.Reason)
}

// WindowError wraps the failure that aborted the scrape of a window.
type WindowError struct {
	Window DateWindow
	Page   int
	Err    error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("r25: scrape of window %s failed on page %d: %v", e.Window, e.Page, e.Err)
}

func (e *WindowError) Unwrap() error {
	return e.Err
}
