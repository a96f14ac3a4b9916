// Package ui provides interactive terminal helpers for the git-reauthor CLI.
//
// The confirmation prompter gates destructive operations behind an explicit
// affirmative response while detailed telemetry continues to flow through
// structured loggers.
package ui
