package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/mirrormerge/internal/prune"
	"github.com/temirov/mirrormerge/internal/publish"
	"github.com/temirov/mirrormerge/internal/registry"
	"github.com/temirov/mirrormerge/internal/resolve"
	"github.com/temirov/mirrormerge/internal/shared"
	"github.com/temirov/mirrormerge/internal/utils"
	"github.com/temirov/mirrormerge/internal/workspace"
)

const (
	applicationNameConstant                 = "mirror-merge"
	applicationShortDescriptionConstant     = "Merge upstream changes into mirrored repositories and publish the result"
	applicationLongDescriptionConstant      = "mirror-merge resolves merge conflicts, prunes flattened repositories and pushes a consistent set of branches across the mirrored repository constellation."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	registryFlagNameConstant                = "registry"
	registryFlagUsageConstant               = "Override the repository registry manifest (YAML or TOML)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	workspaceConfigurationKeyConstant       = "workspace"
	registryManifestConfigKeyConstant       = "registry.manifest"
	toolsConfigurationKeyConstant           = "tools"
	resolveConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".resolve"
	publishConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".publish"
	environmentPrefixConstant               = "MIRRORMERGE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	workspaceResolvedMessageConstant        = "workspace resolved"
	workspaceRootFieldConstant              = "workspace_root"
	repositoryCountFieldConstant            = "repository_count"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	registryLoadErrorTemplateConstant       = "unable to load repository registry: %w"
	registryBuildErrorTemplateConstant      = "invalid repository registry: %w"
	workspaceResolveErrorTemplateConstant   = "unable to locate workspace: %w"
	commandBuildErrorTemplateConstant       = "unable to build command: %w"
	rootCommandInfoMessageConstant          = "mirror-merge CLI executed"
	rootCommandDebugMessageConstant         = "mirror-merge CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	helpCommandNameConstant                 = "help"
	completionCommandNameConstant           = "completion"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common    ApplicationCommonConfiguration `mapstructure:"common"`
	Workspace workspace.Configuration        `mapstructure:"workspace"`
	Registry  registry.ManifestConfiguration `mapstructure:"registry"`
	Tools     ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for individual subcommands.
type ApplicationToolsConfiguration struct {
	Resolve resolve.CommandConfiguration `mapstructure:"resolve"`
	Publish publish.CommandConfiguration `mapstructure:"publish"`
}

// Application wires the Cobra root command, configuration loader, structured logger,
// repository registry and workspace layout.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	registryFlagValue     string
	repositoryRegistry    *registry.Registry
	layout                workspace.Layout
	layoutResolved        bool
	environmentLookup     workspace.EnvironmentLookup
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application, _ := newApplication(nil)
	return application
}

func newApplication(gitExecutor shared.GitExecutor) (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.registryFlagValue, registryFlagNameConstant, "", registryFlagUsageConstant)

	application.rootCommand = cobraCommand

	resolveBuilder := resolve.CommandBuilder{
		LoggerProvider:               application.loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		GitCommandProvider:           application.gitCommand,
		RegistryProvider:             application.registryProvider,
		LayoutProvider:               application.layoutProvider,
		ConfigurationProvider: func() resolve.CommandConfiguration {
			return application.configuration.Tools.Resolve
		},
		GitExecutor: gitExecutor,
	}
	if registrationError := application.registerCommand(resolveBuilder.Build); registrationError != nil {
		return application, registrationError
	}

	pruneBuilder := prune.CommandBuilder{
		LoggerProvider:               application.loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		GitCommandProvider:           application.gitCommand,
		RegistryProvider:             application.registryProvider,
		LayoutProvider:               application.layoutProvider,
		GitExecutor:                  gitExecutor,
	}
	if registrationError := application.registerCommand(pruneBuilder.Build); registrationError != nil {
		return application, registrationError
	}

	publishBuilder := publish.CommandBuilder{
		LoggerProvider:               application.loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		GitCommandProvider:           application.gitCommand,
		RegistryProvider:             application.registryProvider,
		LayoutProvider:               application.layoutProvider,
		ConfigurationProvider: func() publish.CommandConfiguration {
			return application.configuration.Tools.Publish
		},
		GitExecutor: gitExecutor,
	}
	if registrationError := application.registerCommand(publishBuilder.Build); registrationError != nil {
		return application, registrationError
	}

	repositoriesBuilder := RepositoriesCommandBuilder{
		RegistryProvider: application.registryProvider,
		LayoutProvider:   application.layoutProvider,
	}
	if registrationError := application.registerCommand(repositoriesBuilder.Build); registrationError != nil {
		return application, registrationError
	}

	return application, nil
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	application, buildError := newApplication(nil)
	if buildError != nil {
		return buildError
	}
	return application.Execute()
}

func (application *Application) registerCommand(build func() (*cobra.Command, error)) error {
	command, buildError := build()
	if buildError != nil {
		return fmt.Errorf(commandBuildErrorTemplateConstant, buildError)
	}
	application.rootCommand.AddCommand(command)
	return nil
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:   string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:  string(utils.LogFormatStructured),
		registryManifestConfigKeyConstant: "",
	}
	for configurationKey, configurationValue := range workspace.DefaultConfigurationValues(workspaceConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range resolve.DefaultConfigurationValues(resolveConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range publish.DefaultConfigurationValues(publishConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, registryFlagNameConstant) {
		application.configuration.Registry.ManifestPath = application.registryFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if !application.requiresWorkspace(command) {
		return nil
	}

	return application.initializeWorkspace()
}

// initializeWorkspace builds the registry and locates the workspace root. Both failures are fatal.
func (application *Application) initializeWorkspace() error {
	declarations, declarationsError := registry.LoadDeclarations(application.configuration.Registry.ManifestPath)
	if declarationsError != nil {
		return fmt.Errorf(registryLoadErrorTemplateConstant, declarationsError)
	}

	repositoryRegistry, registryError := registry.NewRegistry(declarations)
	if registryError != nil {
		return fmt.Errorf(registryBuildErrorTemplateConstant, registryError)
	}
	application.repositoryRegistry = repositoryRegistry

	layout, layoutError := workspace.NewResolver(application.environmentLookup, nil).Resolve(application.configuration.Workspace)
	if layoutError != nil {
		return fmt.Errorf(workspaceResolveErrorTemplateConstant, layoutError)
	}
	application.layout = layout
	application.layoutResolved = true

	application.logger.Debug(
		workspaceResolvedMessageConstant,
		zap.String(workspaceRootFieldConstant, layout.Root()),
		zap.Int(repositoryCountFieldConstant, len(repositoryRegistry.AllRepositories())),
	)
	return nil
}

func (application *Application) requiresWorkspace(command *cobra.Command) bool {
	if command == nil || command == command.Root() {
		return false
	}
	switch command.Name() {
	case helpCommandNameConstant, completionCommandNameConstant:
		return false
	default:
		return true
	}
}

func (application *Application) loggerProvider() *zap.Logger {
	return application.logger
}

func (application *Application) registryProvider() *registry.Registry {
	return application.repositoryRegistry
}

func (application *Application) layoutProvider() (workspace.Layout, bool) {
	return application.layout, application.layoutResolved
}

func (application *Application) gitCommand() string {
	return application.configuration.Workspace.GitCommand
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
