package tests

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationBinaryNameConstant                    = "git-reauthor-integration"
	integrationBuildTimeout                          = 120 * time.Second
	integrationCommandTimeout                        = 30 * time.Second
	integrationSubtestNameTemplateConstant           = "%d_%s"
	integrationEnvironmentAssignmentTemplateConstant = "%s=%s"
	integrationPathEnvironmentNameConstant           = "PATH"

	integrationGitExecutableConstant     = "git"
	integrationInitArgumentConstant      = "init"
	integrationInitialBranchFlagConstant = "--initial-branch=main"
	integrationRepositoryFlagConstant    = "-C"
	integrationCommitArgumentConstant    = "commit"
	integrationAllowEmptyFlagConstant    = "--allow-empty"
	integrationMessageFlagConstant       = "-m"
	integrationAuthorNameEnvConstant     = "GIT_AUTHOR_NAME"
	integrationAuthorEmailEnvConstant    = "GIT_AUTHOR_EMAIL"
	integrationCommitterNameEnvConstant  = "GIT_COMMITTER_NAME"
	integrationCommitterEmailEnvConstant = "GIT_COMMITTER_EMAIL"

	integrationStubExecutableNameConstant  = "git-filter-repo"
	integrationStubRecordFileNameConstant  = "invocations.log"
	integrationStubMailmapCopyNameConstant = "mailmap.copy"
	integrationStubScriptTemplateConstant  = "#!/bin/sh\nprintf '%%s\\n' \"$*\" >> \"%s\"\nif [ \"$1\" = \"--version\" ]; then\n  echo \"2.47.0\"\nfi\nif [ \"$1\" = \"--mailmap\" ]; then\n  cat \"$2\" >> \"%s\"\nfi\nexit 0\n"
)

type integrationCommandOptions struct {
	WorkingDirectory     string
	EnvironmentOverrides map[string]string
	StandardInput        string
}

func integrationModuleRoot(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(workingDirectory)
}

func buildIntegrationBinary(testInstance *testing.T, repositoryRoot string) string {
	testInstance.Helper()

	binaryPath := filepath.Join(testInstance.TempDir(), integrationBinaryNameConstant)

	buildContext, cancelBuild := context.WithTimeout(context.Background(), integrationBuildTimeout)
	defer cancelBuild()

	buildCommand := exec.CommandContext(buildContext, "go", "build", "-o", binaryPath, ".")
	buildCommand.Dir = repositoryRoot
	outputBytes, buildError := buildCommand.CombinedOutput()
	require.NoError(testInstance, buildError, string(outputBytes))

	return binaryPath
}

func runBinaryIntegrationCommand(testInstance *testing.T, binaryPath string, options integrationCommandOptions, timeout time.Duration, arguments []string) (string, error) {
	testInstance.Helper()

	executionContext, cancelExecution := context.WithTimeout(context.Background(), timeout)
	defer cancelExecution()

	command := exec.CommandContext(executionContext, binaryPath, arguments...)
	if len(options.WorkingDirectory) > 0 {
		command.Dir = options.WorkingDirectory
	}

	environment := append([]string{}, os.Environ()...)
	for environmentName, environmentValue := range options.EnvironmentOverrides {
		environment = append(environment, fmt.Sprintf(integrationEnvironmentAssignmentTemplateConstant, environmentName, environmentValue))
	}
	command.Env = environment

	if len(options.StandardInput) > 0 {
		command.Stdin = strings.NewReader(options.StandardInput)
	}

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func filterStructuredOutput(rawOutput string) string {
	lines := strings.Split(rawOutput, "\n")
	var filtered []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "{") {
			continue
		}
		filtered = append(filtered, line)
	}
	if len(filtered) == 0 {
		return ""
	}
	return strings.Join(filtered, "\n") + "\n"
}

func createIntegrationRepository(testInstance *testing.T) string {
	testInstance.Helper()

	repositoryPath := testInstance.TempDir()
	runGitIntegrationCommand(testInstance, nil, integrationInitArgumentConstant, integrationInitialBranchFlagConstant, repositoryPath)
	return repositoryPath
}

func commitIntegrationChange(testInstance *testing.T, repositoryPath string, subject string, authorName string, authorEmail string) {
	testInstance.Helper()

	identityOverrides := map[string]string{
		integrationAuthorNameEnvConstant:     authorName,
		integrationAuthorEmailEnvConstant:    authorEmail,
		integrationCommitterNameEnvConstant:  authorName,
		integrationCommitterEmailEnvConstant: authorEmail,
	}
	runGitIntegrationCommand(testInstance, identityOverrides, integrationRepositoryFlagConstant, repositoryPath, integrationCommitArgumentConstant, integrationAllowEmptyFlagConstant, integrationMessageFlagConstant, subject)
}

func runGitIntegrationCommand(testInstance *testing.T, environmentOverrides map[string]string, arguments ...string) {
	testInstance.Helper()

	command := exec.Command(integrationGitExecutableConstant, arguments...)
	environment := append([]string{}, os.Environ()...)
	for environmentName, environmentValue := range environmentOverrides {
		environment = append(environment, fmt.Sprintf(integrationEnvironmentAssignmentTemplateConstant, environmentName, environmentValue))
	}
	command.Env = environment

	outputBytes, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(outputBytes))
}

type filterRepoStub struct {
	directory       string
	recordPath      string
	mailmapCopyPath string
}

func writeFilterRepoStub(testInstance *testing.T) filterRepoStub {
	testInstance.Helper()

	stubDirectory := testInstance.TempDir()
	recordPath := filepath.Join(stubDirectory, integrationStubRecordFileNameConstant)
	mailmapCopyPath := filepath.Join(stubDirectory, integrationStubMailmapCopyNameConstant)

	stubScript := fmt.Sprintf(integrationStubScriptTemplateConstant, recordPath, mailmapCopyPath)
	stubPath := filepath.Join(stubDirectory, integrationStubExecutableNameConstant)
	require.NoError(testInstance, os.WriteFile(stubPath, []byte(stubScript), 0o755))

	return filterRepoStub{directory: stubDirectory, recordPath: recordPath, mailmapCopyPath: mailmapCopyPath}
}

func (stub filterRepoStub) pathVariable() string {
	return stub.directory + string(os.PathListSeparator) + os.Getenv(integrationPathEnvironmentNameConstant)
}

func (stub filterRepoStub) recordedInvocations(testInstance *testing.T) []string {
	testInstance.Helper()

	contentBytes, readError := os.ReadFile(stub.recordPath)
	if os.IsNotExist(readError) {
		return nil
	}
	require.NoError(testInstance, readError)

	var invocations []string
	for _, line := range strings.Split(string(contentBytes), "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		invocations = append(invocations, line)
	}
	return invocations
}

func (stub filterRepoStub) copiedMailmap(testInstance *testing.T) string {
	testInstance.Helper()

	contentBytes, readError := os.ReadFile(stub.mailmapCopyPath)
	if os.IsNotExist(readError) {
		return ""
	}
	require.NoError(testInstance, readError)
	return string(contentBytes)
}
