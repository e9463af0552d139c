package publish

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/mirrormerge/internal/dependencies"
	"github.com/temirov/mirrormerge/internal/shared"
	"github.com/temirov/mirrormerge/internal/utils"
)

const (
	commandUseConstant                    = "publish"
	commandShortDescriptionConstant       = "Push the merged branch of every managed repository to the shared remote"
	commandLongDescriptionConstant        = "publish confirms with the operator, then pushes source:destination from the root and every third-party repository in registry order, stopping at the first failure."
	commandExecutionErrorTemplateConstant = "publish failed: %w"
	unexpectedArgumentsMessageConstant    = "publish does not accept positional arguments"
	flagSourceNameConstant                = "source"
	flagSourceDescriptionConstant         = "Local reference to push"
	flagDestinationNameConstant           = "destination"
	flagDestinationDescriptionConstant    = "Remote reference to update (defaults to the source reference)"
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Remote alias to push to"
	flagAssumeYesNameConstant             = "yes"
	flagAssumeYesShorthandConstant        = "y"
	flagAssumeYesDescriptionConstant      = "Push without asking for confirmation"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// PrompterFactory creates confirmation prompters scoped to a cobra command.
type PrompterFactory func(*cobra.Command) shared.ConfirmationPrompter

// CommandBuilder assembles the publish cobra command.
type CommandBuilder struct {
	LoggerProvider               dependencies.LoggerProvider
	HumanReadableLoggingProvider func() bool
	GitCommandProvider           func() string
	RegistryProvider             dependencies.RegistryProvider
	LayoutProvider               dependencies.LayoutProvider
	ConfigurationProvider        func() CommandConfiguration
	GitExecutor                  shared.GitExecutor
	PrompterFactory              PrompterFactory
}

// Build constructs the publish command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagSourceNameConstant, "", flagSourceDescriptionConstant)
	command.Flags().String(flagDestinationNameConstant, "", flagDestinationDescriptionConstant)
	command.Flags().String(flagRemoteNameConstant, "", flagRemoteDescriptionConstant)
	command.Flags().BoolP(flagAssumeYesNameConstant, flagAssumeYesShorthandConstant, false, flagAssumeYesDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options := builder.parseOptions(command)

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

	output := utils.NewFlushingWriter(command.OutOrStdout())
	coordinator, coordinatorError := NewCoordinator(Dependencies{
		GitExecutor: gitExecutor,
		Prompter:    builder.resolvePrompter(command),
		Registry:    repositoryRegistry,
		Directories: layout,
		Logger:      logger,
		Output:      output,
	})
	if coordinatorError != nil {
		return coordinatorError
	}

	result, publishError := coordinator.Publish(command.Context(), options)
	RenderReport(output, result)
	if publishError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, publishError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) Options {
	configuration := builder.resolveConfiguration()

	sourceValue, _ := command.Flags().GetString(flagSourceNameConstant)
	destinationValue, _ := command.Flags().GetString(flagDestinationNameConstant)
	if len(strings.TrimSpace(destinationValue)) == 0 {
		destinationValue = sourceValue
	}

	remoteName := configuration.RemoteName
	if command.Flags().Changed(flagRemoteNameConstant) {
		remoteValue, _ := command.Flags().GetString(flagRemoteNameConstant)
		if len(strings.TrimSpace(remoteValue)) > 0 {
			remoteName = strings.TrimSpace(remoteValue)
		}
	}

	assumeYes := configuration.AssumeYes
	if command.Flags().Changed(flagAssumeYesNameConstant) {
		assumeYes, _ = command.Flags().GetBool(flagAssumeYesNameConstant)
	}

	return Options{
		ConfirmationPolicy:   shared.ConfirmationPolicyFromBool(assumeYes),
		SourceReference:      sourceValue,
		DestinationReference: destinationValue,
		RemoteName:           remoteName,
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command) shared.ConfirmationPrompter {
	if builder.PrompterFactory != nil {
		if prompter := builder.PrompterFactory(command); prompter != nil {
			return prompter
		}
	}
	return shared.NewIOPrompter(command.InOrStdin(), utils.NewFlushingWriter(command.OutOrStdout()))
}
