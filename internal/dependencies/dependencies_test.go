package dependencies_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/mirrormerge/internal/dependencies"
	"github.com/temirov/mirrormerge/internal/execshell"
	"github.com/temirov/mirrormerge/internal/registry"
	"github.com/temirov/mirrormerge/internal/shared"
	"github.com/temirov/mirrormerge/internal/workspace"
)

const (
	testWorkspaceRootConstant = "/srv/android/external/chromium_org"
)

type stubGitExecutor struct{}

func (stubGitExecutor) ExecuteGit(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func TestResolveLoggerFallsBackToNop(testInstance *testing.T) {
	require.NotNil(testInstance, dependencies.ResolveLogger(nil))
	require.NotNil(testInstance, dependencies.ResolveLogger(func() *zap.Logger { return nil }))

	logger := zap.NewExample()
	require.Same(testInstance, logger, dependencies.ResolveLogger(func() *zap.Logger { return logger }))
}

func TestResolveGitExecutor(testInstance *testing.T) {
	existingExecutor := stubGitExecutor{}

	testCases := []struct {
		name                 string
		existing             shared.GitExecutor
		humanReadableLogging bool
		gitCommand           string
		expectError          bool
	}{
		{name: "existing_executor_preserved", existing: existingExecutor},
		{name: "default_git"},
		{name: "wrapped_git_with_console_events", humanReadableLogging: true, gitCommand: "git -c core.quotepath=off"},
		{name: "unterminated_quote", gitCommand: "git -c 'core.quotepath=off", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolvedExecutor, resolveError := dependencies.ResolveGitExecutor(testCase.existing, zap.NewNop(), testCase.humanReadableLogging, testCase.gitCommand)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)

			if testCase.existing != nil {
				require.Equal(testInstance, testCase.existing, resolvedExecutor)
				return
			}
			require.IsType(testInstance, &execshell.ShellExecutor{}, resolvedExecutor)
		})
	}
}

func TestResolveRegistryAndLayout(testInstance *testing.T) {
	_, missingRegistryError := dependencies.ResolveRegistry(nil)
	require.ErrorIs(testInstance, missingRegistryError, dependencies.ErrRegistryNotConfigured)

	_, nilRegistryError := dependencies.ResolveRegistry(func() *registry.Registry { return nil })
	require.ErrorIs(testInstance, nilRegistryError, dependencies.ErrRegistryNotConfigured)

	repositoryRegistry, registryError := registry.NewRegistry(registry.DefaultDeclarations())
	require.NoError(testInstance, registryError)
	resolvedRegistry, resolveError := dependencies.ResolveRegistry(func() *registry.Registry { return repositoryRegistry })
	require.NoError(testInstance, resolveError)
	require.Same(testInstance, repositoryRegistry, resolvedRegistry)

	_, missingLayoutError := dependencies.ResolveLayout(nil)
	require.ErrorIs(testInstance, missingLayoutError, dependencies.ErrLayoutNotConfigured)

	_, unresolvedLayoutError := dependencies.ResolveLayout(func() (workspace.Layout, bool) { return workspace.Layout{}, false })
	require.ErrorIs(testInstance, unresolvedLayoutError, dependencies.ErrLayoutNotConfigured)

	layout, layoutError := dependencies.ResolveLayout(func() (workspace.Layout, bool) {
		return workspace.NewLayout(testWorkspaceRootConstant), true
	})
	require.NoError(testInstance, layoutError)
	require.Equal(testInstance, testWorkspaceRootConstant, layout.Root())
}
