package gitrepo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pders01/git-reauthor/internal/execshell"
	"github.com/pders01/git-reauthor/internal/gitrepo"
)

const (
	testWorkingDirectoryConstant  = "/workspace/repo"
	testAuthorEmailConstant       = "old@example.com"
	testRevisionRangeConstant     = "v1.0.0..HEAD"
	commandKeySeparatorConstant   = " "
	workTreeCommandKeyConstant    = "rev-parse --is-inside-work-tree"
	authoredLogCommandKeyConstant = "log --pretty=format:%h%x09%ae%x09%s --author=old@example.com --all"
	rangedLogCommandKeyConstant   = "log --pretty=format:%h%x09%ae%x09%s --author=old@example.com v1.0.0..HEAD"
	limitedLogCommandKeyConstant  = "log --pretty=format:%h%x09%ae%x09%s --author=old@example.com --max-count=2 --all"
)

type stubGitExecutor struct {
	executionResults map[string]execshell.ExecutionResult
	executionErrors  map[string]error
	recordedCommands []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	commandKey := strings.Join(details.Arguments, commandKeySeparatorConstant)
	if executionError, errorExists := executor.executionErrors[commandKey]; errorExists {
		return execshell.ExecutionResult{}, executionError
	}
	if executionResult, resultExists := executor.executionResults[commandKey]; resultExists {
		return executionResult, nil
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewRepositoryInspectorRequiresExecutor(testInstance *testing.T) {
	inspector, creationError := gitrepo.NewRepositoryInspector(nil)
	require.Error(testInstance, creationError)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
	require.Nil(testInstance, inspector)
}

func TestRepositoryInspectorIsInsideWorkTree(testInstance *testing.T) {
	testCases := []struct {
		name           string
		commandOutput  string
		commandError   error
		expectedResult bool
		expectError    bool
	}{
		{
			name:           "inside_work_tree",
			commandOutput:  "true\n",
			expectedResult: true,
		},
		{
			name:           "outside_work_tree",
			commandOutput:  "false\n",
			expectedResult: false,
		},
		{
			name: "command_failure_reports_not_a_repository",
			commandError: execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: execshell.CommandGit},
				Result:  execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: not a git repository"},
			},
			expectedResult: false,
		},
		{
			name: "execution_failure_propagates",
			commandError: execshell.CommandExecutionError{
				Command: execshell.ShellCommand{Name: execshell.CommandGit},
			},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			stubExecutor := &stubGitExecutor{
				executionResults: map[string]execshell.ExecutionResult{
					workTreeCommandKeyConstant: {StandardOutput: testCase.commandOutput, ExitCode: 0},
				},
			}
			if testCase.commandError != nil {
				stubExecutor.executionErrors = map[string]error{workTreeCommandKeyConstant: testCase.commandError}
			}

			inspector, creationError := gitrepo.NewRepositoryInspector(stubExecutor)
			require.NoError(testInstance, creationError)

			insideWorkTree, checkError := inspector.IsInsideWorkTree(context.Background(), testWorkingDirectoryConstant)
			if testCase.expectError {
				require.Error(testInstance, checkError)
				return
			}

			require.NoError(testInstance, checkError)
			require.Equal(testInstance, testCase.expectedResult, insideWorkTree)

			require.Len(testInstance, stubExecutor.recordedCommands, 1)
			require.Equal(testInstance, testWorkingDirectoryConstant, stubExecutor.recordedCommands[0].WorkingDirectory)
		})
	}
}

func TestRepositoryInspectorListAuthoredCommitsParsesRecords(testInstance *testing.T) {
	commandOutput := "abc1234\told@example.com\tInitial commit\ndef5678\told@example.com\tAdd feature\twith tab\n\nmalformed-line\n"

	stubExecutor := &stubGitExecutor{
		executionResults: map[string]execshell.ExecutionResult{
			authoredLogCommandKeyConstant: {StandardOutput: commandOutput, ExitCode: 0},
		},
	}

	inspector, creationError := gitrepo.NewRepositoryInspector(stubExecutor)
	require.NoError(testInstance, creationError)

	commitSummaries, listError := inspector.ListAuthoredCommits(context.Background(), gitrepo.CommitListOptions{
		AuthorEmail:      testAuthorEmailConstant,
		WorkingDirectory: testWorkingDirectoryConstant,
	})
	require.NoError(testInstance, listError)
	require.Len(testInstance, commitSummaries, 2)

	require.Equal(testInstance, "abc1234", commitSummaries[0].AbbreviatedHash)
	require.Equal(testInstance, testAuthorEmailConstant, commitSummaries[0].AuthorEmail)
	require.Equal(testInstance, "Initial commit", commitSummaries[0].Subject)

	require.Equal(testInstance, "def5678", commitSummaries[1].AbbreviatedHash)
	require.Equal(testInstance, "Add feature\twith tab", commitSummaries[1].Subject)
}

func TestRepositoryInspectorListAuthoredCommitsRestrictsRange(testInstance *testing.T) {
	stubExecutor := &stubGitExecutor{
		executionResults: map[string]execshell.ExecutionResult{
			rangedLogCommandKeyConstant: {StandardOutput: "abc1234\told@example.com\tInitial commit", ExitCode: 0},
		},
	}

	inspector, creationError := gitrepo.NewRepositoryInspector(stubExecutor)
	require.NoError(testInstance, creationError)

	commitSummaries, listError := inspector.ListAuthoredCommits(context.Background(), gitrepo.CommitListOptions{
		AuthorEmail:      testAuthorEmailConstant,
		RevisionRange:    testRevisionRangeConstant,
		WorkingDirectory: testWorkingDirectoryConstant,
	})
	require.NoError(testInstance, listError)
	require.Len(testInstance, commitSummaries, 1)

	require.Len(testInstance, stubExecutor.recordedCommands, 1)
	recordedArguments := stubExecutor.recordedCommands[0].Arguments
	require.Contains(testInstance, recordedArguments, testRevisionRangeConstant)
	require.NotContains(testInstance, recordedArguments, "--all")
}

func TestRepositoryInspectorListAuthoredCommitsAppliesMaxCount(testInstance *testing.T) {
	stubExecutor := &stubGitExecutor{
		executionResults: map[string]execshell.ExecutionResult{
			limitedLogCommandKeyConstant: {StandardOutput: "", ExitCode: 0},
		},
	}

	inspector, creationError := gitrepo.NewRepositoryInspector(stubExecutor)
	require.NoError(testInstance, creationError)

	commitSummaries, listError := inspector.ListAuthoredCommits(context.Background(), gitrepo.CommitListOptions{
		AuthorEmail:      testAuthorEmailConstant,
		MaxCount:         2,
		WorkingDirectory: testWorkingDirectoryConstant,
	})
	require.NoError(testInstance, listError)
	require.Empty(testInstance, commitSummaries)

	require.Len(testInstance, stubExecutor.recordedCommands, 1)
	require.Contains(testInstance, stubExecutor.recordedCommands[0].Arguments, "--max-count=2")
}

func TestRepositoryInspectorListAuthoredCommitsRequiresAuthorEmail(testInstance *testing.T) {
	stubExecutor := &stubGitExecutor{}

	inspector, creationError := gitrepo.NewRepositoryInspector(stubExecutor)
	require.NoError(testInstance, creationError)

	commitSummaries, listError := inspector.ListAuthoredCommits(context.Background(), gitrepo.CommitListOptions{})
	require.Error(testInstance, listError)
	require.ErrorIs(testInstance, listError, gitrepo.ErrAuthorEmailRequired)
	require.Nil(testInstance, commitSummaries)
	require.Empty(testInstance, stubExecutor.recordedCommands)
}

func TestRepositoryInspectorListAuthoredCommitsPropagatesQueryFailure(testInstance *testing.T) {
	stubExecutor := &stubGitExecutor{
		executionErrors: map[string]error{
			authoredLogCommandKeyConstant: execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: execshell.CommandGit},
				Result:  execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: bad revision"},
			},
		},
	}

	inspector, creationError := gitrepo.NewRepositoryInspector(stubExecutor)
	require.NoError(testInstance, creationError)

	commitSummaries, listError := inspector.ListAuthoredCommits(context.Background(), gitrepo.CommitListOptions{
		AuthorEmail:      testAuthorEmailConstant,
		WorkingDirectory: testWorkingDirectoryConstant,
	})
	require.Error(testInstance, listError)
	require.Nil(testInstance, commitSummaries)
}
