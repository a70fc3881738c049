// Package webdriver is a minimal W3C WebDriver client.
//
// It speaks the wire protocol directly to a driver's HTTP endpoint
// (geckodriver by default) with the standard library HTTP client: session
// lifecycle, navigation, element lookup and interaction, script
// execution, and screenshots. Only the subset of the protocol needed by
// the portal automation flow is implemented.
//
// Driver errors are decoded from the W3C error envelope and mapped onto
// sentinel errors (ErrNoSuchElement, ErrTimeout, ErrNotInteractable) so
// callers can translate automation failures into user-facing messages
// without string matching.
package webdriver
