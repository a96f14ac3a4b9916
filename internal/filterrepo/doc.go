// Package filterrepo wraps invocations of the git-filter-repo tool.
//
// Client probes for the tool's availability and applies mailmap-driven
// history rewrites, translating failures into typed errors that surface
// installation guidance to CLI users.
package filterrepo
