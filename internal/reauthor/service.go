package reauthor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/pders01/git-reauthor/internal/filterrepo"
	"github.com/pders01/git-reauthor/internal/gitrepo"
	"github.com/pders01/git-reauthor/internal/mailmap"
)

const (
	inspectorNotConfiguredMessageConstant   = "repository inspector not configured"
	engineNotConfiguredMessageConstant      = "rewrite engine not configured"
	prompterNotConfiguredMessageConstant    = "confirmation prompter not configured"
	outputNotConfiguredMessageConstant      = "output writer not configured"
	notInsideWorkTreeMessageConstant        = "not inside a git work tree; run git-reauthor from within a repository"
	workTreeVerificationTemplateConstant    = "failed to verify repository: %w"
	temporaryMailmapFailureTemplateConstant = "failed to create temporary mailmap: %w"
	rewriteFailureTemplateConstant          = "failed to rewrite history: %w"
	confirmationFailureTemplateConstant     = "failed to read confirmation: %w"
)

const (
	targetIdentityTemplateConstant        = "Target identity: %s\n"
	revisionRangeTemplateConstant         = "Revision range: %s\n"
	allCommitsLabelConstant               = "ALL commits"
	authoredCommitsHeaderTemplateConstant = "\nCommits authored by %s:\n"
	commitLineTemplateConstant            = "%s %s <%s>\n"
	noMatchingCommitsMessageConstant      = "(no matching commits)\n"
	mailmapHeaderMessageConstant          = "\nGenerated mailmap:\n"
	dryRunNoticeMessageConstant           = "\nDry run: no changes applied.\n"
	confirmationPromptConstant            = "\nProceed with history rewrite? [y/N] "
	abortNoticeMessageConstant            = "Aborted: no changes applied.\n"
	completionNoticeMessageConstant       = "\nHistory rewrite complete.\n"
	forcePushReminderMessageConstant      = "Remember to force-push the rewritten history, e.g. git push --force-with-lease --all\n"
	namedIdentityTemplateConstant         = "%s <%s>"
	emailOnlyIdentityTemplateConstant     = "<%s>"
	temporaryMailmapPatternConstant       = "git-reauthor-mailmap-*"
	previewQuerySkippedMessageConstant    = "commit preview query failed"
	mailmapCleanupWarningMessageConstant  = "failed to remove temporary mailmap"
	authorEmailFieldNameConstant          = "author_email"
	mailmapPathFieldNameConstant          = "mailmap_path"
)

// ErrInspectorNotConfigured indicates the repository inspector dependency was missing.
var ErrInspectorNotConfigured = errors.New(inspectorNotConfiguredMessageConstant)

// ErrEngineNotConfigured indicates the rewrite engine dependency was missing.
var ErrEngineNotConfigured = errors.New(engineNotConfiguredMessageConstant)

// ErrPrompterNotConfigured indicates the confirmation prompter dependency was missing.
var ErrPrompterNotConfigured = errors.New(prompterNotConfiguredMessageConstant)

// ErrOutputNotConfigured indicates the output writer dependency was missing.
var ErrOutputNotConfigured = errors.New(outputNotConfiguredMessageConstant)

// ErrNotInsideWorkTree indicates the working directory is not part of a git repository.
var ErrNotInsideWorkTree = errors.New(notInsideWorkTreeMessageConstant)

// RepositoryInspector describes the repository questions answered before rewriting.
type RepositoryInspector interface {
	IsInsideWorkTree(executionContext context.Context, workingDirectory string) (bool, error)
	ListAuthoredCommits(executionContext context.Context, options gitrepo.CommitListOptions) ([]gitrepo.CommitSummary, error)
}

// RewriteEngine describes the history rewrite capability.
type RewriteEngine interface {
	EnsureAvailable(executionContext context.Context) error
	Apply(executionContext context.Context, options filterrepo.Options) error
}

// ConfirmationPrompter describes the interactive confirmation capability.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// Dependencies enumerates external collaborators required for identity rewrites.
type Dependencies struct {
	Inspector RepositoryInspector
	Engine    RewriteEngine
	Prompter  ConfirmationPrompter
	Output    io.Writer
	Logger    *zap.Logger
}

// Options configures an identity rewrite operation.
type Options struct {
	OldEmails        []string
	NewName          string
	NewEmail         string
	RevisionRange    string
	WorkingDirectory string
	DryRun           bool
	AssumeYes        bool
	PreviewLimit     int
}

// Result captures the observable outcomes of a rewrite request.
type Result struct {
	DryRun  bool
	Aborted bool
	Applied bool
}

// Service coordinates identity rewrites by previewing history, generating a
// mailmap, and delegating the rewrite to the configured engine.
type Service struct {
	inspector RepositoryInspector
	engine    RewriteEngine
	prompter  ConfirmationPrompter
	output    io.Writer
	logger    *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Inspector == nil {
		return nil, ErrInspectorNotConfigured
	}
	if dependencies.Engine == nil {
		return nil, ErrEngineNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	if dependencies.Output == nil {
		return nil, ErrOutputNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		inspector: dependencies.Inspector,
		engine:    dependencies.Engine,
		prompter:  dependencies.Prompter,
		output:    dependencies.Output,
		logger:    logger,
	}, nil
}

// Execute previews the requested identity change, then applies it unless the
// operation runs dry or the user declines the confirmation prompt.
func (service *Service) Execute(executionContext context.Context, options Options) (Result, error) {
	specification, specificationError := mailmap.NewIdentitySpec(options.OldEmails, options.NewName, options.NewEmail)
	if specificationError != nil {
		return Result{}, specificationError
	}

	if availabilityError := service.engine.EnsureAvailable(executionContext); availabilityError != nil {
		return Result{}, availabilityError
	}

	insideWorkTree, workTreeError := service.inspector.IsInsideWorkTree(executionContext, options.WorkingDirectory)
	if workTreeError != nil {
		return Result{}, fmt.Errorf(workTreeVerificationTemplateConstant, workTreeError)
	}
	if !insideWorkTree {
		return Result{}, ErrNotInsideWorkTree
	}

	service.printPreview(executionContext, specification, options)

	document := mailmap.BuildDocument(specification)
	mailmapContent := document.Render()

	fmt.Fprint(service.output, mailmapHeaderMessageConstant)
	fmt.Fprint(service.output, mailmapContent)

	if options.DryRun {
		fmt.Fprint(service.output, dryRunNoticeMessageConstant)
		return Result{DryRun: true}, nil
	}

	if !options.AssumeYes {
		confirmed, confirmationError := service.prompter.Confirm(confirmationPromptConstant)
		if confirmationError != nil {
			return Result{}, fmt.Errorf(confirmationFailureTemplateConstant, confirmationError)
		}
		if !confirmed {
			fmt.Fprint(service.output, abortNoticeMessageConstant)
			return Result{Aborted: true}, nil
		}
	}

	mailmapPath, temporaryFileError := service.writeTemporaryMailmap(mailmapContent)
	if temporaryFileError != nil {
		return Result{}, fmt.Errorf(temporaryMailmapFailureTemplateConstant, temporaryFileError)
	}
	defer service.removeTemporaryMailmap(mailmapPath)

	rewriteOptions := filterrepo.Options{
		MailmapPath:      mailmapPath,
		RevisionRange:    strings.TrimSpace(options.RevisionRange),
		WorkingDirectory: options.WorkingDirectory,
	}
	if rewriteError := service.engine.Apply(executionContext, rewriteOptions); rewriteError != nil {
		return Result{}, fmt.Errorf(rewriteFailureTemplateConstant, rewriteError)
	}

	fmt.Fprint(service.output, completionNoticeMessageConstant)
	fmt.Fprint(service.output, forcePushReminderMessageConstant)

	return Result{Applied: true}, nil
}

func (service *Service) printPreview(executionContext context.Context, specification mailmap.IdentitySpec, options Options) {
	fmt.Fprintf(service.output, targetIdentityTemplateConstant, describeTargetIdentity(specification))
	fmt.Fprintf(service.output, revisionRangeTemplateConstant, describeRevisionRange(options.RevisionRange))

	for _, oldEmail := range specification.OldEmails() {
		fmt.Fprintf(service.output, authoredCommitsHeaderTemplateConstant, oldEmail)

		commitSummaries, listError := service.inspector.ListAuthoredCommits(executionContext, gitrepo.CommitListOptions{
			AuthorEmail:      oldEmail,
			RevisionRange:    strings.TrimSpace(options.RevisionRange),
			MaxCount:         options.PreviewLimit,
			WorkingDirectory: options.WorkingDirectory,
		})
		if listError != nil {
			service.logger.Debug(previewQuerySkippedMessageConstant, zap.String(authorEmailFieldNameConstant, oldEmail), zap.Error(listError))
			fmt.Fprint(service.output, noMatchingCommitsMessageConstant)
			continue
		}
		if len(commitSummaries) == 0 {
			fmt.Fprint(service.output, noMatchingCommitsMessageConstant)
			continue
		}

		for _, commitSummary := range commitSummaries {
			fmt.Fprintf(service.output, commitLineTemplateConstant, commitSummary.AbbreviatedHash, commitSummary.Subject, commitSummary.AuthorEmail)
		}
	}
}

func (service *Service) writeTemporaryMailmap(content string) (string, error) {
	temporaryFile, createError := os.CreateTemp("", temporaryMailmapPatternConstant)
	if createError != nil {
		return "", createError
	}

	if _, writeError := temporaryFile.WriteString(content); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryFile.Name())
		return "", writeError
	}

	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryFile.Name())
		return "", closeError
	}

	return temporaryFile.Name(), nil
}

func (service *Service) removeTemporaryMailmap(mailmapPath string) {
	removeError := os.Remove(mailmapPath)
	if removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		service.logger.Warn(mailmapCleanupWarningMessageConstant, zap.String(mailmapPathFieldNameConstant, mailmapPath), zap.Error(removeError))
	}
}

func describeTargetIdentity(specification mailmap.IdentitySpec) string {
	if len(specification.NewName()) > 0 && len(specification.NewEmail()) > 0 {
		return fmt.Sprintf(namedIdentityTemplateConstant, specification.NewName(), specification.NewEmail())
	}
	if len(specification.NewEmail()) > 0 {
		return fmt.Sprintf(emailOnlyIdentityTemplateConstant, specification.NewEmail())
	}
	return specification.NewName()
}

func describeRevisionRange(revisionRange string) string {
	trimmedRange := strings.TrimSpace(revisionRange)
	if len(trimmedRange) == 0 {
		return allCommitsLabelConstant
	}
	return trimmedRange
}
