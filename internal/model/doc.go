// Package model defines the domain types and value objects for the
// namegate service.
//
// This package contains pure data structures with no external dependencies:
// check payloads and results, the verdict enum, the scraped-portal data
// shape, and the name formatting rules shared by the HTTP API and the CLI.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
