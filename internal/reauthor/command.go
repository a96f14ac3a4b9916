package reauthor

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pders01/git-reauthor/internal/execshell"
	"github.com/pders01/git-reauthor/internal/filterrepo"
	"github.com/pders01/git-reauthor/internal/gitrepo"
	"github.com/pders01/git-reauthor/internal/ui"
	flagutils "github.com/pders01/git-reauthor/internal/utils/flags"
)

const (
	commandUseConstant                = "git-reauthor"
	commandShortDescriptionConstant   = "Rewrite author identities across git history"
	commandLongDescriptionConstant    = "git-reauthor maps one or more historical author emails to a replacement identity by generating a mailmap and delegating the history rewrite to git-filter-repo."
	commandExampleConstant            = "git-reauthor --old-email old@example.com --new-email new@example.com --new-name \"Casey Example\""
	oldEmailFlagNameConstant          = "old-email"
	oldEmailFlagShorthandConstant     = "o"
	oldEmailFlagUsageConstant         = "Author email to replace (repeatable)"
	newEmailFlagNameConstant          = "new-email"
	newEmailFlagShorthandConstant     = "e"
	newEmailFlagUsageConstant         = "Replacement author email"
	newNameFlagNameConstant           = "new-name"
	newNameFlagShorthandConstant      = "n"
	newNameFlagUsageConstant          = "Replacement author name"
	rangeFlagNameConstant             = "range"
	rangeFlagShorthandConstant        = "r"
	rangeFlagUsageConstant            = "Restrict the rewrite to a revision range (for example HEAD~10..HEAD)"
	missingOldEmailsMessageConstant   = "at least one --old-email is required"
	missingReplacementMessageConstant = "supply --new-name, --new-email, or both"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the git-reauthor command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Inspector                    RepositoryInspector
	Engine                       RewriteEngine
	Prompter                     ConfirmationPrompter
	CommandEventsObserver        execshell.CommandEventObserver
}

// Build constructs the git-reauthor command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	command.Flags().StringArrayP(oldEmailFlagNameConstant, oldEmailFlagShorthandConstant, nil, oldEmailFlagUsageConstant)
	command.Flags().StringP(newEmailFlagNameConstant, newEmailFlagShorthandConstant, "", newEmailFlagUsageConstant)
	command.Flags().StringP(newNameFlagNameConstant, newNameFlagShorthandConstant, "", newNameFlagUsageConstant)
	command.Flags().StringP(rangeFlagNameConstant, rangeFlagShorthandConstant, "", rangeFlagUsageConstant)

	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.ExecutionFlagDefinitions{
		DryRun: flagutils.ExecutionFlagDefinition{
			Name:      flagutils.DryRunFlagName,
			Usage:     flagutils.DryRunFlagUsage,
			Shorthand: flagutils.DryRunFlagShorthand,
			Enabled:   true,
		},
		AssumeYes: flagutils.ExecutionFlagDefinition{
			Name:      flagutils.AssumeYesFlagName,
			Usage:     flagutils.AssumeYesFlagUsage,
			Shorthand: flagutils.AssumeYesFlagShorthand,
			Enabled:   true,
		},
	})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	oldEmails, oldEmailsFlagError := command.Flags().GetStringArray(oldEmailFlagNameConstant)
	if oldEmailsFlagError != nil {
		return oldEmailsFlagError
	}
	newEmail, newEmailFlagError := command.Flags().GetString(newEmailFlagNameConstant)
	if newEmailFlagError != nil {
		return newEmailFlagError
	}
	newName, newNameFlagError := command.Flags().GetString(newNameFlagNameConstant)
	if newNameFlagError != nil {
		return newNameFlagError
	}
	revisionRange, rangeFlagError := command.Flags().GetString(rangeFlagNameConstant)
	if rangeFlagError != nil {
		return rangeFlagError
	}

	trimmedOldEmails := trimNonEmpty(oldEmails)
	trimmedNewName := strings.TrimSpace(newName)
	trimmedNewEmail := strings.TrimSpace(newEmail)

	if len(trimmedOldEmails) == 0 {
		if command != nil {
			_ = command.Help()
		}
		return errors.New(missingOldEmailsMessageConstant)
	}
	if len(trimmedNewName) == 0 && len(trimmedNewEmail) == 0 {
		if command != nil {
			_ = command.Help()
		}
		return errors.New(missingReplacementMessageConstant)
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(flagutils.DryRunFlagName) {
		dryRunFlagValue, dryRunFlagError := command.Flags().GetBool(flagutils.DryRunFlagName)
		if dryRunFlagError != nil {
			return dryRunFlagError
		}
		dryRun = dryRunFlagValue
	}

	assumeYes := configuration.AssumeYes
	if command.Flags().Changed(flagutils.AssumeYesFlagName) {
		assumeYesFlagValue, assumeYesFlagError := command.Flags().GetBool(flagutils.AssumeYesFlagName)
		if assumeYesFlagError != nil {
			return assumeYesFlagError
		}
		assumeYes = assumeYesFlagValue
	}

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	inspector, engine, collaboratorError := builder.resolveCollaborators(logger, humanReadableLogging)
	if collaboratorError != nil {
		return collaboratorError
	}

	prompter := builder.Prompter
	if prompter == nil {
		prompter = ui.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
	}

	service, serviceCreationError := NewService(Dependencies{
		Inspector: inspector,
		Engine:    engine,
		Prompter:  prompter,
		Output:    command.OutOrStdout(),
		Logger:    logger,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	_, executionError := service.Execute(command.Context(), Options{
		OldEmails:     trimmedOldEmails,
		NewName:       trimmedNewName,
		NewEmail:      trimmedNewEmail,
		RevisionRange: strings.TrimSpace(revisionRange),
		DryRun:        dryRun,
		AssumeYes:     assumeYes,
		PreviewLimit:  configuration.PreviewLimit,
	})
	return executionError
}

func (builder *CommandBuilder) resolveCollaborators(logger *zap.Logger, humanReadableLogging bool) (RepositoryInspector, RewriteEngine, error) {
	inspector := builder.Inspector
	engine := builder.Engine
	if inspector != nil && engine != nil {
		return inspector, engine, nil
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
	if executorError != nil {
		return nil, nil, executorError
	}

	if builder.CommandEventsObserver != nil {
		shellExecutor.SetCommandEventObserver(builder.CommandEventsObserver)
	}

	if inspector == nil {
		repositoryInspector, inspectorError := gitrepo.NewRepositoryInspector(shellExecutor)
		if inspectorError != nil {
			return nil, nil, inspectorError
		}
		inspector = repositoryInspector
	}

	if engine == nil {
		filterRepoClient, clientError := filterrepo.NewClient(shellExecutor)
		if clientError != nil {
			return nil, nil, clientError
		}
		engine = filterRepoClient
	}

	return inspector, engine, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func trimNonEmpty(values []string) []string {
	trimmedValues := make([]string, 0, len(values))
	for _, value := range values {
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) > 0 {
			trimmedValues = append(trimmedValues, trimmedValue)
		}
	}
	return trimmedValues
}
