package prune

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/mirrormerge/internal/execshell"
	"github.com/temirov/mirrormerge/internal/registry"
	"github.com/temirov/mirrormerge/internal/shared"
)

const (
	gitRemoveSubcommandConstant           = "rm"
	gitRecursiveForceFlagConstant         = "-rf"
	gitIgnoreUnmatchFlagConstant          = "--ignore-unmatch"
	pruneReportTemplateConstant           = "Pruning %s:\n  %s\n"
	reportPathSeparatorConstant           = "\n  "
	gitExecutorMissingMessageConstant     = "prune service requires a git executor"
	registryMissingMessageConstant        = "prune service requires a repository registry"
	undeclaredRepositoryTemplateConstant  = "repository %s is not declared in the registry"
	fullHistoryRepositoryTemplateConstant = "repository %s keeps full history and cannot be pruned"
	pruneFailedTemplateConstant           = "unable to prune %s: %w"
	nothingToPruneMessageConstant         = "no prune targets configured"
	pruneCompletedMessageConstant         = "prune targets removed"
	logFieldRepositoryConstant            = "repository"
	logFieldTargetsConstant               = "targets"
)

// ErrGitExecutorNotConfigured indicates the service was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRegistryNotConfigured indicates the service was constructed without a registry.
var ErrRegistryNotConfigured = errors.New(registryMissingMessageConstant)

// DirectoryResolver maps a registry path to its working directory.
type DirectoryResolver interface {
	RepositoryDirectory(repositoryPath registry.RepositoryPath) string
}

// Dependencies captures the collaborators required by the prune service.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	Registry    *registry.Registry
	Directories DirectoryResolver
	Logger      *zap.Logger
	Output      io.Writer
}

// Options selects the repository to prune.
type Options struct {
	Repository registry.RepositoryPath
}

// Result lists what was removed.
type Result struct {
	Repository registry.RepositoryPath
	Targets    []string
}

// Service removes prune targets of flat-history repositories.
type Service struct {
	gitExecutor shared.GitExecutor
	registry    *registry.Registry
	directories DirectoryResolver
	logger      *zap.Logger
	reporter    shared.Reporter
}

// NewService validates dependencies and constructs the service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.Registry == nil || dependencies.Directories == nil {
		return nil, ErrRegistryNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		gitExecutor: dependencies.GitExecutor,
		registry:    dependencies.Registry,
		directories: dependencies.Directories,
		logger:      logger,
		reporter:    shared.NewWriterReporter(dependencies.Output),
	}, nil
}

// Prune runs a single batched removal of the repository's prune targets inside its directory.
// Repositories without targets issue no command.
func (service *Service) Prune(executionContext context.Context, options Options) (Result, error) {
	repositoryPath := registry.RepositoryPath(strings.TrimSpace(string(options.Repository)))
	policy, declared := service.registry.HistoryPolicyOf(repositoryPath)
	if !declared {
		return Result{}, fmt.Errorf(undeclaredRepositoryTemplateConstant, repositoryPath)
	}
	if policy != registry.HistoryPolicyFlat {
		return Result{}, fmt.Errorf(fullHistoryRepositoryTemplateConstant, repositoryPath)
	}

	targets := service.registry.PruneTargetsOf(repositoryPath)
	result := Result{Repository: repositoryPath}
	if len(targets) == 0 {
		service.logger.Debug(nothingToPruneMessageConstant, zap.String(logFieldRepositoryConstant, string(repositoryPath)))
		return result, nil
	}

	service.reporter.Printf(pruneReportTemplateConstant, repositoryPath, strings.Join(targets, reportPathSeparatorConstant))
	removeArguments := append([]string{gitRemoveSubcommandConstant, gitRecursiveForceFlagConstant, gitIgnoreUnmatchFlagConstant}, targets...)
	_, removeError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        removeArguments,
		WorkingDirectory: service.directories.RepositoryDirectory(repositoryPath),
	})
	if removeError != nil {
		return result, fmt.Errorf(pruneFailedTemplateConstant, repositoryPath, removeError)
	}

	result.Targets = targets
	service.logger.Info(
		pruneCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, string(repositoryPath)),
		zap.Strings(logFieldTargetsConstant, targets),
	)
	return result, nil
}

// PruneAll prunes every flat-history repository in registry order and stops at the first failure.
func (service *Service) PruneAll(executionContext context.Context) ([]Result, error) {
	var results []Result
	for _, repositoryPath := range service.registry.AllRepositories() {
		if policy, _ := service.registry.HistoryPolicyOf(repositoryPath); policy != registry.HistoryPolicyFlat {
			continue
		}
		result, pruneError := service.Prune(executionContext, Options{Repository: repositoryPath})
		if pruneError != nil {
			return results, pruneError
		}
		if len(result.Targets) > 0 {
			results = append(results, result)
		}
	}
	return results, nil
}
