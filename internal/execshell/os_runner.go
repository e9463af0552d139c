package execshell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// OSCommandRunner executes commands as operating system processes.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run starts the process, waits for it, and captures stdout and stderr into separate buffers.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), append([]string{}, command.Details.Arguments...)...)
	process.Dir = command.Details.WorkingDirectory

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	process.Stdout = &standardOutputBuffer
	process.Stderr = &standardErrorBuffer

	exitCode := 0
	if runError := process.Run(); runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		exitCode = exitError.ExitCode()
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       exitCode,
	}, nil
}
