// Package portal automates the registry portal's name-check form.
//
// The form is a generated single-page application whose element ids are
// long build artifacts, so all locators live in a JSONC profile (comments
// allowed) rather than in code: an embedded default profile matches the
// current portal build, and an on-disk profile can override it when the
// portal is redeployed without recompiling the service.
//
// Flow runs the fixed sequence of form steps the original check requires
// and ScrapeTabs collects the three result tables the auto-check
// populates. StatusCheck probes the portal over plain HTTP before a
// browser session is spent on it.
package portal
