// Package reauthor implements the identity rewrite workflow used by the
// git-reauthor CLI.
//
// It exposes CommandBuilder for wiring the root Cobra command, Service for
// driving the workflow programmatically, and supporting abstractions for the
// repository inspector, rewrite engine, and confirmation collaborators.
package reauthor
