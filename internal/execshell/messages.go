package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	pathListSeparatorConstant               = ", "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitStatusSubcommandNameConstant = "status"
	gitRemoveSubcommandNameConstant = "rm"
	gitAddSubcommandNameConstant    = "add"
	gitCommitSubcommandNameConstant = "commit"
	gitPushSubcommandNameConstant   = "push"
	gitMessageFlagConstant          = "-m"
)

const (
	gitStatusStartTemplateConstant            = "Inspecting merge status in %s"
	gitStatusSuccessTemplateConstant          = "Inspected merge status in %s"
	gitStatusFailureTemplateConstant          = "Failed to inspect merge status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant = "Unable to inspect merge status in %s: %s"
	gitRemoveStartTemplateConstant            = "Removing %s in %s"
	gitRemoveSuccessTemplateConstant          = "Removed %s in %s"
	gitRemoveFailureTemplateConstant          = "Failed to remove %s in %s (exit code %d%s)"
	gitRemoveExecutionFailureTemplateConstant = "Unable to remove %s in %s: %s"
	gitAddStartTemplateConstant               = "Adding %s in %s"
	gitAddSuccessTemplateConstant             = "Added %s in %s"
	gitAddFailureTemplateConstant             = "Failed to add %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant    = "Unable to add %s in %s: %s"
	gitCommitStartTemplateConstant            = "Committing merge in %s with message %q"
	gitCommitSuccessTemplateConstant          = "Committed merge in %s with message %q"
	gitCommitFailureTemplateConstant          = "Failed to commit merge in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant = "Unable to commit merge in %s with message %q: %s"
	gitPushStartTemplateConstant              = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant            = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant            = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant   = "Unable to push %s to %s from %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	subcommand, subcommandArguments := formatter.splitGitSubcommand(command.Details.Arguments)
	workingDirectory := formatter.describeWorkingDirectory(command)

	var templates [4]string
	var values []any
	switch subcommand {
	case gitStatusSubcommandNameConstant:
		templates = [4]string{gitStatusStartTemplateConstant, gitStatusSuccessTemplateConstant, gitStatusFailureTemplateConstant, gitStatusExecutionFailureTemplateConstant}
		values = []any{workingDirectory}
	case gitRemoveSubcommandNameConstant:
		templates = [4]string{gitRemoveStartTemplateConstant, gitRemoveSuccessTemplateConstant, gitRemoveFailureTemplateConstant, gitRemoveExecutionFailureTemplateConstant}
		values = []any{formatter.describePaths(subcommandArguments), workingDirectory}
	case gitAddSubcommandNameConstant:
		templates = [4]string{gitAddStartTemplateConstant, gitAddSuccessTemplateConstant, gitAddFailureTemplateConstant, gitAddExecutionFailureTemplateConstant}
		values = []any{formatter.describePaths(subcommandArguments), workingDirectory}
	case gitCommitSubcommandNameConstant:
		templates = [4]string{gitCommitStartTemplateConstant, gitCommitSuccessTemplateConstant, gitCommitFailureTemplateConstant, gitCommitExecutionFailureTemplateConstant}
		values = []any{workingDirectory, findFlagValue(subcommandArguments, gitMessageFlagConstant)}
	case gitPushSubcommandNameConstant:
		templates = [4]string{gitPushStartTemplateConstant, gitPushSuccessTemplateConstant, gitPushFailureTemplateConstant, gitPushExecutionFailureTemplateConstant}
		values = []any{
			formatter.ensureValue(formatter.argumentAtIndex(subcommandArguments, 1)),
			formatter.ensureValue(formatter.argumentAtIndex(subcommandArguments, 0)),
			workingDirectory,
		}
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart, messageStageSuccess:
		return fmt.Sprintf(templates[stage], values...)
	case messageStageFailure:
		return fmt.Sprintf(templates[stage], append(values, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))...)
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates[stage], append(values, formatter.describeFailure(failure))...)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

// splitGitSubcommand skips leading global options such as "-c key=value".
func (formatter CommandMessageFormatter) splitGitSubcommand(arguments []string) (string, []string) {
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := strings.TrimSpace(arguments[argumentIndex])
		if argument == "-c" || argument == "-C" {
			argumentIndex++
			continue
		}
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		return argument, arguments[argumentIndex+1:]
	}
	return emptyStringConstant, nil
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) describePaths(arguments []string) string {
	paths := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		paths = append(paths, trimmedArgument)
	}
	return formatter.ensureValue(strings.Join(paths, pathListSeparatorConstant))
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if strings.TrimSpace(arguments[argumentIndex]) == flag {
			return arguments[argumentIndex+1]
		}
	}
	return emptyStringConstant
}
