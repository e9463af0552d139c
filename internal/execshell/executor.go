package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"
	"go.uber.org/zap"
)

const (
	gitCommandNameConstant                  = "git"
	loggerNotConfiguredMessageConstant      = "shell executor requires a logger"
	runnerNotConfiguredMessageConstant      = "shell executor requires a command runner"
	invocationEmptyMessageConstant          = "command invocation must not be empty"
	invocationParseErrorTemplateConstant    = "unable to parse command invocation %q: %w"
	commandFailedErrorTemplateConstant      = "%s failed with exit code %d%s"
	commandExecutionErrorTemplateConstant   = "%s failed: %s"
	commandStartedLogMessageConstant        = "command started"
	commandCompletedLogMessageConstant      = "command completed"
	commandExitedWithFailureMessageConstant = "command exited with failure"
	commandExecutionFailedMessageConstant   = "command execution failed"
	logFieldCommandNameConstant             = "command"
	logFieldArgumentsConstant               = "arguments"
	logFieldWorkingDirectoryConstant        = "working_directory"
	logFieldExitCodeConstant                = "exit_code"
	logFieldStandardErrorConstant           = "stderr"
)

// CommandName identifies an external executable.
type CommandName string

// CommandGit is the default version-control executable.
const CommandGit CommandName = CommandName(gitCommandNameConstant)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)

// CommandDetails describes a single invocation of an external command.
type CommandDetails struct {
	Arguments        []string
	WorkingDirectory string
	// IgnoreExitStatus returns the captured output even when the command exits non-zero.
	IgnoreExitStatus bool
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of a finished command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs shell commands and reports their results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error includes the literal command, exit code and captured standard error.
func (failure CommandFailedError) Error() string {
	formatter := CommandMessageFormatter{}
	return fmt.Sprintf(
		commandFailedErrorTemplateConstant,
		formatter.formatCommandLabel(failure.Command),
		failure.Result.ExitCode,
		formatter.formatStandardErrorSuffix(failure.Result.StandardError),
	)
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	formatter := CommandMessageFormatter{}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, formatter.formatCommandLabel(failure.Command), formatter.describeFailure(failure.Cause))
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// Invocation describes how an executable is launched, including arguments prepended to every call.
type Invocation struct {
	Name             CommandName
	LeadingArguments []string
}

// ParseInvocation splits a shell-style command line such as "git -c core.quotepath=off".
func ParseInvocation(commandLine string) (Invocation, error) {
	trimmedCommandLine := strings.TrimSpace(commandLine)
	if len(trimmedCommandLine) == 0 {
		return Invocation{}, errors.New(invocationEmptyMessageConstant)
	}

	tokens, splitError := shlex.Split(trimmedCommandLine)
	if splitError != nil {
		return Invocation{}, fmt.Errorf(invocationParseErrorTemplateConstant, trimmedCommandLine, splitError)
	}
	if len(tokens) == 0 {
		return Invocation{}, errors.New(invocationEmptyMessageConstant)
	}

	return Invocation{Name: CommandName(tokens[0]), LeadingArguments: append([]string{}, tokens[1:]...)}, nil
}

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(*ShellExecutor)

// WithCommandEventObserver replaces the structured logging observer.
func WithCommandEventObserver(observer CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// WithGitInvocation overrides the executable and leading arguments used for git commands.
func WithGitInvocation(invocation Invocation) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if len(strings.TrimSpace(string(invocation.Name))) == 0 {
			return
		}
		executor.gitInvocation = Invocation{Name: invocation.Name, LeadingArguments: append([]string{}, invocation.LeadingArguments...)}
	}
}

// ShellExecutor runs external commands synchronously and enforces the exit status contract.
type ShellExecutor struct {
	logger        *zap.Logger
	runner        CommandRunner
	observer      CommandEventObserver
	gitInvocation Invocation
}

// NewShellExecutor constructs a ShellExecutor around the provided runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:        logger,
		runner:        runner,
		observer:      structuredCommandEventObserver{logger: logger},
		gitInvocation: Invocation{Name: CommandGit},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}

	return executor, nil
}

// Execute runs the command and waits for it to finish.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.observer.CommandStarted(command)

	result, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, result)

	if result.ExitCode != 0 && !command.Details.IgnoreExitStatus {
		return ExecutionResult{}, CommandFailedError{Command: command, Result: result}
	}

	return result, nil
}

// ExecuteGit runs git with the configured invocation.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	gitDetails := details
	if len(executor.gitInvocation.LeadingArguments) > 0 {
		gitDetails.Arguments = append(append([]string{}, executor.gitInvocation.LeadingArguments...), details.Arguments...)
	}
	return executor.Execute(executionContext, ShellCommand{Name: executor.gitInvocation.Name, Details: gitDetails})
}

type structuredCommandEventObserver struct {
	logger *zap.Logger
}

func (observer structuredCommandEventObserver) CommandStarted(command ShellCommand) {
	observer.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (observer structuredCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		observer.logger.Debug(
			commandCompletedLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
			zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		)
		return
	}

	observer.logger.Warn(
		commandExitedWithFailureMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
	)
}

func (observer structuredCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	observer.logger.Error(
		commandExecutionFailedMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		zap.Error(failure),
	)
}
