package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pders01/git-reauthor/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant   = "git executor not configured"
	authorEmailRequiredMessageConstant     = "author email required"
	workTreeCheckFailedTemplateConstant    = "failed to determine repository state: %w"
	commitListingFailedTemplateConstant    = "failed to list commits: %w"
	gitRevParseCommandConstant             = "rev-parse"
	gitWorkTreeFlagConstant                = "--is-inside-work-tree"
	gitLogCommandConstant                  = "log"
	gitAllRefsFlagConstant                 = "--all"
	gitPrettyFormatFlagConstant            = "--pretty=format:%h%x09%ae%x09%s"
	gitAuthorFlagTemplateConstant          = "--author=%s"
	gitMaxCountFlagTemplateConstant        = "--max-count=%d"
	workTreeAffirmativeOutputConstant      = "true"
	commitRecordFieldSeparatorConstant     = "\t"
	commitRecordSeparatorConstant          = "\n"
	commitRecordExpectedFieldCountConstant = 3
)

// ErrExecutorNotConfigured indicates the inspector was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrAuthorEmailRequired indicates a commit listing was requested without an author email.
var ErrAuthorEmailRequired = errors.New(authorEmailRequiredMessageConstant)

// GitExecutor describes the git operations required by the inspector.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommitSummary describes a single commit surfaced during history inspection.
type CommitSummary struct {
	AbbreviatedHash string
	AuthorEmail     string
	Subject         string
}

// CommitListOptions captures the parameters for listing authored commits.
type CommitListOptions struct {
	AuthorEmail      string
	RevisionRange    string
	MaxCount         int
	WorkingDirectory string
}

// RepositoryInspector interrogates git repositories through an injected executor.
type RepositoryInspector struct {
	executor GitExecutor
}

// NewRepositoryInspector validates dependencies and constructs a RepositoryInspector.
func NewRepositoryInspector(executor GitExecutor) (*RepositoryInspector, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryInspector{executor: executor}, nil
}

// IsInsideWorkTree reports whether the working directory resides inside a git work tree.
func (inspector *RepositoryInspector) IsInsideWorkTree(executionContext context.Context, workingDirectory string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseCommandConstant, gitWorkTreeFlagConstant},
		WorkingDirectory: strings.TrimSpace(workingDirectory),
	}

	executionResult, executionError := inspector.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, fmt.Errorf(workTreeCheckFailedTemplateConstant, executionError)
	}

	return strings.TrimSpace(executionResult.StandardOutput) == workTreeAffirmativeOutputConstant, nil
}

// ListAuthoredCommits returns commit summaries for history entries authored by the requested email.
func (inspector *RepositoryInspector) ListAuthoredCommits(executionContext context.Context, options CommitListOptions) ([]CommitSummary, error) {
	trimmedAuthorEmail := strings.TrimSpace(options.AuthorEmail)
	if len(trimmedAuthorEmail) == 0 {
		return nil, ErrAuthorEmailRequired
	}

	commandArguments := []string{
		gitLogCommandConstant,
		gitPrettyFormatFlagConstant,
		fmt.Sprintf(gitAuthorFlagTemplateConstant, trimmedAuthorEmail),
	}
	if options.MaxCount > 0 {
		commandArguments = append(commandArguments, fmt.Sprintf(gitMaxCountFlagTemplateConstant, options.MaxCount))
	}

	trimmedRevisionRange := strings.TrimSpace(options.RevisionRange)
	if len(trimmedRevisionRange) > 0 {
		commandArguments = append(commandArguments, trimmedRevisionRange)
	} else {
		commandArguments = append(commandArguments, gitAllRefsFlagConstant)
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        commandArguments,
		WorkingDirectory: strings.TrimSpace(options.WorkingDirectory),
	}

	executionResult, executionError := inspector.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil, fmt.Errorf(commitListingFailedTemplateConstant, executionError)
	}

	return parseCommitRecords(executionResult.StandardOutput), nil
}

func parseCommitRecords(commandOutput string) []CommitSummary {
	commitSummaries := []CommitSummary{}
	for _, record := range strings.Split(commandOutput, commitRecordSeparatorConstant) {
		trimmedRecord := strings.TrimRight(record, "\r")
		if len(strings.TrimSpace(trimmedRecord)) == 0 {
			continue
		}

		recordFields := strings.SplitN(trimmedRecord, commitRecordFieldSeparatorConstant, commitRecordExpectedFieldCountConstant)
		if len(recordFields) < commitRecordExpectedFieldCountConstant {
			continue
		}

		commitSummaries = append(commitSummaries, CommitSummary{
			AbbreviatedHash: strings.TrimSpace(recordFields[0]),
			AuthorEmail:     strings.TrimSpace(recordFields[1]),
			Subject:         recordFields[2],
		})
	}
	return commitSummaries
}
