// Package mailmap models author identity changes as git mailmap documents.
//
// IdentitySpec validates a requested change, and BuildDocument derives the
// ordered mailmap entries that git-filter-repo consumes when rewriting
// history.
package mailmap
