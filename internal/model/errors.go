package model

import "fmt"

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	// This is also the exit code when the container runtime is missing,
	// per the bootstrap contract: diagnose to stderr, exit 1, attempt
	// no build step.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the settings, bootstrap manifest, or
	// portal profile could not be loaded or validated.
	ExitConfigError ExitCode = 2

	// ExitRuntimeMissing indicates the Docker daemon is not accessible.
	ExitRuntimeMissing ExitCode = 3

	// ExitPortalError indicates the portal automation failed at a
	// defined step (element missing, timeout, blocked interaction).
	ExitPortalError ExitCode = 4

	// ExitDriverError indicates the WebDriver endpoint could not be
	// reached or a session could not be created.
	ExitDriverError ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
