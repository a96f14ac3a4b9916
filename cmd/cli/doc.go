// Package cli constructs the git-reauthor command-line interface, wiring the
// Cobra root command, configuration loader, and structured logging primitives.
// It exposes helpers to build reusable application instances and to execute
// the command with signal-aware cancellation.
package cli
