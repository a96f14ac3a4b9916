// Package gitrepo contains helpers for interrogating Git repositories.
//
// It exposes RepositoryInspector for confirming work tree membership and for
// listing commits attributed to a particular author, backed by the structured
// command execution provided by execshell.
package gitrepo
