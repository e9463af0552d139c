package shared

import (
	"context"

	"github.com/temirov/mirrormerge/internal/execshell"
)

// GitExecutor exposes the subset of shell execution used by merge services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ConfirmationResult captures the outcome of a yes/no prompt.
type ConfirmationResult struct {
	Confirmed bool
}

// ConfirmationPrompter collects operator confirmations prior to outward-facing actions.
type ConfirmationPrompter interface {
	Confirm(prompt string) (ConfirmationResult, error)
}

// LinePrompter shows a prompt and returns one line typed by the operator.
type LinePrompter interface {
	ReadLine(prompt string) (string, error)
}
