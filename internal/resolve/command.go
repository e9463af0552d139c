package resolve

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
	commandUseConstant                    = "resolve"
	commandShortDescriptionConstant       = "Resolve merge conflicts in a managed repository and commit the merge"
	commandLongDescriptionConstant        = "resolve keeps local deletions, re-adds paths renamed upstream, waits for the operator to fix remaining conflicts, and commits the merge."
	commandExecutionErrorTemplateConstant = "conflict resolution failed: %w"
	unexpectedArgumentsMessageConstant    = "resolve does not accept positional arguments"
	undeclaredRepositoryTemplateConstant  = "repository %s is not declared in the registry"
	flagMessageNameConstant               = "message"
	flagMessageDescriptionConstant        = "Default commit message used unless the operator enters another"
	flagRepositoryNameConstant            = "repository"
	flagRepositoryDescriptionConstant     = "Registry path of the repository to resolve (\".\" for the root)"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// CommandBuilder assembles the resolve cobra command.
type CommandBuilder struct {
	LoggerProvider               dependencies.LoggerProvider
	HumanReadableLoggingProvider func() bool
	GitCommandProvider           func() string
	RegistryProvider             dependencies.RegistryProvider
	LayoutProvider               dependencies.LayoutProvider
	ConfigurationProvider        func() CommandConfiguration
	GitExecutor                  shared.GitExecutor
	Operator                     shared.LinePrompter
	SessionIdentifierGenerator   SessionIdentifierGenerator
}

// Build constructs the resolve command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagMessageNameConstant, "", flagMessageDescriptionConstant)
	command.Flags().String(flagRepositoryNameConstant, string(registry.RootRepositoryPath), flagRepositoryDescriptionConstant)

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

	configuration := builder.resolveConfiguration()
	commitMessage := configuration.CommitMessage
	if command.Flags().Changed(flagMessageNameConstant) {
		messageValue, _ := command.Flags().GetString(flagMessageNameConstant)
		if len(strings.TrimSpace(messageValue)) > 0 {
			commitMessage = messageValue
		}
	}

	repositoryValue, _ := command.Flags().GetString(flagRepositoryNameConstant)
	repositoryPath := registry.RepositoryPath(strings.TrimSpace(repositoryValue))
	if _, declared := repositoryRegistry.HistoryPolicyOf(repositoryPath); !declared {
		return fmt.Errorf(undeclaredRepositoryTemplateConstant, repositoryPath)
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

	output := utils.NewFlushingWriter(command.OutOrStdout())
	operator := builder.Operator
	if operator == nil {
		operator = shared.NewIOPrompter(command.InOrStdin(), output)
	}

	service, serviceError := NewService(Dependencies{
		GitExecutor:                gitExecutor,
		Operator:                   operator,
		Logger:                     logger,
		Output:                     output,
		SessionIdentifierGenerator: builder.SessionIdentifierGenerator,
	})
	if serviceError != nil {
		return serviceError
	}

	_, resolveError := service.Resolve(command.Context(), Options{
		RepositoryDirectory:  layout.RepositoryDirectory(repositoryPath),
		DefaultCommitMessage: commitMessage,
	})
	if resolveError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, resolveError)
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}
