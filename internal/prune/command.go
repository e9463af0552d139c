package prune

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/mirrormerge/internal/dependencies"
	"github.com/temirov/mirrormerge/internal/registry"
	"github.com/temirov/mirrormerge/internal/shared"
	"github.com/temirov/mirrormerge/internal/utils"
)

const (
	commandUseConstant                    = "prune"
	commandShortDescriptionConstant       = "Remove configured subtrees from flat-history repositories"
	commandLongDescriptionConstant        = "prune deletes the prune targets of a flat-history repository, or of every flat-history repository when none is named."
	commandExecutionErrorTemplateConstant = "prune failed: %w"
	unexpectedArgumentsMessageConstant    = "prune does not accept positional arguments"
	flagRepositoryNameConstant            = "repository"
	flagRepositoryDescriptionConstant     = "Registry path of the flat-history repository to prune"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// CommandBuilder assembles the prune cobra command.
type CommandBuilder struct {
	LoggerProvider               dependencies.LoggerProvider
	HumanReadableLoggingProvider func() bool
	GitCommandProvider           func() string
	RegistryProvider             dependencies.RegistryProvider
	LayoutProvider               dependencies.LayoutProvider
	GitExecutor                  shared.GitExecutor
}

// Build constructs the prune command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	repositoryRegistry, registryError := dependencies.ResolveRegistry(builder.RegistryProvider)
	if registryError != nil {
		return registryError
	}
	layout, layoutError := dependencies.ResolveLayout(builder.LayoutProvider)
	if layoutError != nil {
		return layoutError
	}

	logger := dependencies.ResolveLogger(builder.LoggerProvider)
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	gitCommand := ""
	if builder.GitCommandProvider != nil {
		gitCommand = builder.GitCommandProvider()
	}
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging, gitCommand)
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(Dependencies{
		GitExecutor: gitExecutor,
		Registry:    repositoryRegistry,
		Directories: layout,
		Logger:      logger,
		Output:      utils.NewFlushingWriter(command.OutOrStdout()),
	})
	if serviceError != nil {
		return serviceError
	}

	repositoryValue, _ := command.Flags().GetString(flagRepositoryNameConstant)
	trimmedRepository := strings.TrimSpace(repositoryValue)
	if len(trimmedRepository) == 0 {
		if _, pruneError := service.PruneAll(command.Context()); pruneError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, pruneError)
		}
		return nil
	}

	if _, pruneError := service.Prune(command.Context(), Options{Repository: registry.RepositoryPath(trimmedRepository)}); pruneError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, pruneError)
	}
	return nil
}
