// Package main is the entry point for the namegate CLI.
//
// The binary bundles the HTTP API server (serve), the local deployment
// orchestrator (bootstrap), and a one-shot terminal check (check). All
// functionality lives in the internal/cli package, which defines cobra
// commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during release builds and default to development values otherwise.
package main

import (
	"github.com/shivansh-labs/namegate/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
