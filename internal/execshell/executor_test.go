package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/mirrormerge/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionIgnoredFailureCaseNameConstant  = "ignored_failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testStatusArgumentConstant                   = "status"
	testPorcelainArgumentConstant                = "--porcelain"
	testWorkingDirectoryConstant                 = "/workspace/chromium_org"
	testStandardOutputConstant                   = "UU content/browser.cc\n"
	testStandardErrorOutputConstant              = "fatal: not a git repository"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
	testGitInvocationCommandLineConstant         = "/usr/local/bin/git -c core.quotepath=off"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingEventObserver struct {
	started   int
	completed int
	failed    int
}

func (eventObserver *recordingEventObserver) CommandStarted(execshell.ShellCommand) {
	eventObserver.started++
}

func (eventObserver *recordingEventObserver) CommandCompleted(execshell.ShellCommand, execshell.ExecutionResult) {
	eventObserver.completed++
}

func (eventObserver *recordingEventObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	eventObserver.failed++
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.Error(testInstance, creationError)
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		ignoreExitStatus bool
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedOutput   string
		expectedLogCount int
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: testStandardOutputConstant,
				ExitCode:       0,
			},
			expectedOutput:   testStandardOutputConstant,
			expectedLogCount: 2,
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: testStandardOutputConstant,
				StandardError:  testStandardErrorOutputConstant,
				ExitCode:       128,
			},
			expectErrorType:  execshell.CommandFailedError{},
			expectedLogCount: 2,
		},
		{
			name:             testExecutionIgnoredFailureCaseNameConstant,
			ignoreExitStatus: true,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: testStandardOutputConstant,
				StandardError:  testStandardErrorOutputConstant,
				ExitCode:       1,
			},
			expectedOutput:   testStandardOutputConstant,
			expectedLogCount: 2,
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedLogCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			shellExecutor, creationError := execshell.NewShellExecutor(logger, recordingRunner)
			require.NoError(testInstance, creationError)

			commandDetails := execshell.CommandDetails{
				Arguments:        []string{testStatusArgumentConstant, testPorcelainArgumentConstant},
				WorkingDirectory: testWorkingDirectoryConstant,
				IgnoreExitStatus: testCase.ignoreExitStatus,
			}
			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), commandDetails)

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.expectedOutput, executionResult.StandardOutput)
			}

			require.Len(testInstance, observerLogs.All(), testCase.expectedLogCount)
			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, testWorkingDirectoryConstant, recordingRunner.recordedCommands[0].Details.WorkingDirectory)
		})
	}
}

func TestCommandFailedErrorReportsCommandAndStandardError(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{
		executionResult: execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant + "\n", ExitCode: 128},
	}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments:        []string{testStatusArgumentConstant, testPorcelainArgumentConstant},
		WorkingDirectory: testWorkingDirectoryConstant,
	})

	var commandFailure execshell.CommandFailedError
	require.ErrorAs(testInstance, executionError, &commandFailure)
	require.Equal(testInstance, 128, commandFailure.Result.ExitCode)
	require.Equal(
		testInstance,
		"git status --porcelain (in /workspace/chromium_org) failed with exit code 128: fatal: not a git repository",
		executionError.Error(),
	)
}

func TestShellExecutorAppliesGitInvocation(testInstance *testing.T) {
	invocation, parseError := execshell.ParseInvocation(testGitInvocationCommandLineConstant)
	require.NoError(testInstance, parseError)

	recordingRunner := &recordingCommandRunner{}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, execshell.WithGitInvocation(invocation))
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{testStatusArgumentConstant}})
	require.NoError(testInstance, executionError)

	require.Len(testInstance, recordingRunner.recordedCommands, 1)
	recordedCommand := recordingRunner.recordedCommands[0]
	require.Equal(testInstance, execshell.CommandName("/usr/local/bin/git"), recordedCommand.Name)
	require.Equal(testInstance, []string{"-c", "core.quotepath=off", testStatusArgumentConstant}, recordedCommand.Details.Arguments)
}

func TestParseInvocationRejectsEmptyCommandLine(testInstance *testing.T) {
	_, parseError := execshell.ParseInvocation("   ")
	require.Error(testInstance, parseError)
}

func TestShellExecutorNotifiesCustomObserver(testInstance *testing.T) {
	eventObserver := &recordingEventObserver{}
	recordingRunner := &recordingCommandRunner{executionError: errors.New("exec: git: not found")}

	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, execshell.WithCommandEventObserver(eventObserver))
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{testStatusArgumentConstant}})
	require.Error(testInstance, executionError)

	require.Equal(testInstance, 1, eventObserver.started)
	require.Equal(testInstance, 0, eventObserver.completed)
	require.Equal(testInstance, 1, eventObserver.failed)
}
