package webdriver

import (
	"errors"
	"fmt"
)

// Sentinel errors for the driver failure modes the automation flow
// distinguishes. Wire-level errors wrap one of these so callers can use
// errors.Is regardless of which endpoint produced the failure.
var (
	// ErrNoSuchElement means a required element could not be found;
	// the page layout may have changed.
	ErrNoSuchElement = errors.New("no such element")

	// ErrNotInteractable means an element was found but could not be
	// interacted with, typically because an overlay obscures it.
	ErrNotInteractable = errors.New("element not interactable")

	// ErrTimeout means an element did not reach the awaited state
	// within the deadline; the site is likely slow or unresponsive.
	ErrTimeout = errors.New("timed out waiting for element")

	// ErrStaleElement means an element reference outlived the DOM node
	// it pointed at. Waits retry on this.
	ErrStaleElement = errors.New("stale element reference")

	// ErrSession means a session could not be created or has been
	// discarded, usually a browser crash.
	ErrSession = errors.New("browser session error")
)

// DriverError is a decoded W3C error response.
type DriverError struct {
	// Code is the W3C error string, e.g. "no such element".
	Code string

	// Message is the driver's human-readable description.
	Message string

	// Status is the HTTP status the driver responded with.
	Status int
}

// Error satisfies the error interface.
func (e *DriverError) Error() string {
	return fmt.Sprintf("webdriver: %s (%s)", e.Code, e.Message)
}

// Unwrap maps the W3C error string onto the matching sentinel, so
// errors.Is(err, ErrNoSuchElement) works on wrapped driver errors.
func (e *DriverError) Unwrap() error {
	switch e.Code {
	case "no such element":
		return ErrNoSuchElement
	case "element not interactable", "element click intercepted":
		return ErrNotInteractable
	case "timeout", "script timeout":
		return ErrTimeout
	case "stale element reference":
		return ErrStaleElement
	case "invalid session id", "session not created", "unknown error":
		return ErrSession
	default:
		return nil
	}
}
