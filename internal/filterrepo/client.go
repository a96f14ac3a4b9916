package filterrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pders01/git-reauthor/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant = "filter-repo executor not configured"
	mailmapPathRequiredMessageConstant   = "mailmap path required"
	unavailableMessageConstant           = "git-filter-repo is not available on PATH; install it with 'pip install git-filter-repo' or your system package manager"
	unavailableWithCauseTemplateConstant = "%s: %s"
	rewriteFailedTemplateConstant        = "history rewrite failed: %s"
	versionFlagConstant                  = "--version"
	mailmapFlagConstant                  = "--mailmap"
	forceFlagConstant                    = "--force"
	refsFlagConstant                     = "--refs"
)

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrMailmapPathRequired indicates a rewrite was requested without a mailmap file.
var ErrMailmapPathRequired = errors.New(mailmapPathRequiredMessageConstant)

// FilterRepoExecutor describes the git-filter-repo operations required by the client.
type FilterRepoExecutor interface {
	ExecuteFilterRepo(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// UnavailableError indicates git-filter-repo could not be located or probed.
type UnavailableError struct {
	Cause error
}

// Error describes the missing tool along with installation guidance.
func (unavailable UnavailableError) Error() string {
	if unavailable.Cause == nil {
		return unavailableMessageConstant
	}
	return fmt.Sprintf(unavailableWithCauseTemplateConstant, unavailableMessageConstant, unavailable.Cause)
}

// Unwrap exposes the underlying probe failure.
func (unavailable UnavailableError) Unwrap() error {
	return unavailable.Cause
}

// RewriteError indicates a history rewrite invocation failed.
type RewriteError struct {
	Cause error
}

// Error describes the rewrite failure.
func (rewrite RewriteError) Error() string {
	return fmt.Sprintf(rewriteFailedTemplateConstant, rewrite.Cause)
}

// Unwrap exposes the underlying rewrite failure.
func (rewrite RewriteError) Unwrap() error {
	return rewrite.Cause
}

// Options describe a history rewrite invocation.
type Options struct {
	MailmapPath      string
	RevisionRange    string
	WorkingDirectory string
}

// Client invokes git-filter-repo through the injected executor.
type Client struct {
	executor FilterRepoExecutor
}

// NewClient validates dependencies and constructs a Client.
func NewClient(executor FilterRepoExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// EnsureAvailable probes for git-filter-repo using its version flag.
func (client *Client) EnsureAvailable(executionContext context.Context) error {
	commandDetails := execshell.CommandDetails{Arguments: []string{versionFlagConstant}}

	_, executionError := client.executor.ExecuteFilterRepo(executionContext, commandDetails)
	if executionError != nil {
		return UnavailableError{Cause: executionError}
	}

	return nil
}

// Apply rewrites repository history using the supplied mailmap file.
//
// The rewrite always runs with the force flag because the tool otherwise
// refuses to operate on clones with existing history. When a revision range is
// provided the rewrite is restricted to those refs.
func (client *Client) Apply(executionContext context.Context, options Options) error {
	trimmedMailmapPath := strings.TrimSpace(options.MailmapPath)
	if len(trimmedMailmapPath) == 0 {
		return ErrMailmapPathRequired
	}

	commandArguments := []string{mailmapFlagConstant, trimmedMailmapPath, forceFlagConstant}

	trimmedRevisionRange := strings.TrimSpace(options.RevisionRange)
	if len(trimmedRevisionRange) > 0 {
		commandArguments = append(commandArguments, refsFlagConstant, trimmedRevisionRange)
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        commandArguments,
		WorkingDirectory: strings.TrimSpace(options.WorkingDirectory),
	}

	_, executionError := client.executor.ExecuteFilterRepo(executionContext, commandDetails)
	if executionError != nil {
		return RewriteError{Cause: executionError}
	}

	return nil
}
