// Package utils exposes reusable helpers consumed across the CLI.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging, plus the
// CommandContextAccessor used to thread configuration metadata through
// command execution contexts.
package utils
