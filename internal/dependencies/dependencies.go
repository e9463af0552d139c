package dependencies

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/mirrormerge/internal/execshell"
	"github.com/temirov/mirrormerge/internal/registry"
	"github.com/temirov/mirrormerge/internal/shared"
	"github.com/temirov/mirrormerge/internal/ui"
	"github.com/temirov/mirrormerge/internal/workspace"
)

const (
	gitInvocationErrorTemplateConstant   = "invalid git command configuration: %w"
	registryNotConfiguredMessageConstant = "repository registry is not configured"
	layoutNotConfiguredMessageConstant   = "workspace root is not configured"
)

// ErrRegistryNotConfigured indicates a command ran before the registry was built.
var ErrRegistryNotConfigured = errors.New(registryNotConfiguredMessageConstant)

// ErrLayoutNotConfigured indicates a command ran before the workspace root was resolved.
var ErrLayoutNotConfigured = errors.New(layoutNotConfiguredMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RegistryProvider supplies the registry built during application start-up.
type RegistryProvider func() *registry.Registry

// LayoutProvider supplies the resolved workspace layout.
type LayoutProvider func() (workspace.Layout, bool)

// ResolveLogger returns the provided logger or a no-op logger.
func ResolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// A blank gitCommand runs plain git; human-readable logging renders command events as sentences.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadableLogging bool, gitCommand string) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	executorOptions := make([]execshell.ShellExecutorOption, 0, 2)
	if len(strings.TrimSpace(gitCommand)) > 0 {
		invocation, invocationError := execshell.ParseInvocation(gitCommand)
		if invocationError != nil {
			return nil, fmt.Errorf(gitInvocationErrorTemplateConstant, invocationError)
		}
		executorOptions = append(executorOptions, execshell.WithGitInvocation(invocation))
	}
	if humanReadableLogging {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, executorOptions...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRegistry returns the registry supplied by the provider.
func ResolveRegistry(provider RegistryProvider) (*registry.Registry, error) {
	if provider == nil {
		return nil, ErrRegistryNotConfigured
	}
	repositoryRegistry := provider()
	if repositoryRegistry == nil {
		return nil, ErrRegistryNotConfigured
	}
	return repositoryRegistry, nil
}

// ResolveLayout returns the workspace layout supplied by the provider.
func ResolveLayout(provider LayoutProvider) (workspace.Layout, error) {
	if provider == nil {
		return workspace.Layout{}, ErrLayoutNotConfigured
	}
	layout, available := provider()
	if !available {
		return workspace.Layout{}, ErrLayoutNotConfigured
	}
	return layout, nil
}
