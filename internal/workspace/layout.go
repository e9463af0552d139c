package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/mirrormerge/internal/registry"
)

const (
	defaultRootEnvironmentVariableConstant = "ANDROID_BUILD_TOP"
	defaultRootSubdirectoryConstant        = "external/chromium_org"
	defaultGitCommandConstant              = "git"
	missingEnvironmentTemplateConstant     = "required environment variable %s is not set"
	homeDirectorySymbolConstant            = "~"
)

// Configuration describes where the managed repositories live.
type Configuration struct {
	RootEnvironmentVariable string `mapstructure:"root_environment_variable"`
	RootSubdirectory        string `mapstructure:"root_subdirectory"`
	GitCommand              string `mapstructure:"git_command"`
}

// DefaultConfiguration returns the Android tree layout.
func DefaultConfiguration() Configuration {
	return Configuration{
		RootEnvironmentVariable: defaultRootEnvironmentVariableConstant,
		RootSubdirectory:        defaultRootSubdirectoryConstant,
		GitCommand:              defaultGitCommandConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + ".root_environment_variable": defaults.RootEnvironmentVariable,
		rootKey + ".root_subdirectory":         defaults.RootSubdirectory,
		rootKey + ".git_command":               defaults.GitCommand,
	}
}

// MissingEnvironmentError reports that the required root location is absent.
type MissingEnvironmentError struct {
	VariableName string
}

// Error names the missing variable.
func (missingError *MissingEnvironmentError) Error() string {
	return fmt.Sprintf(missingEnvironmentTemplateConstant, missingError.VariableName)
}

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(variableName string) (string, bool)

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// Resolver turns the workspace configuration into a Layout.
type Resolver struct {
	lookup                EnvironmentLookup
	homeDirectoryProvider HomeDirectoryProvider
}

// NewResolver constructs a Resolver; nil collaborators fall back to the process environment.
func NewResolver(lookup EnvironmentLookup, homeDirectoryProvider HomeDirectoryProvider) *Resolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if homeDirectoryProvider == nil {
		homeDirectoryProvider = os.UserHomeDir
	}
	return &Resolver{lookup: lookup, homeDirectoryProvider: homeDirectoryProvider}
}

// Resolve reads the root location from the environment and joins the configured subdirectory.
func (resolver *Resolver) Resolve(configuration Configuration) (Layout, error) {
	variableName := strings.TrimSpace(configuration.RootEnvironmentVariable)
	if len(variableName) == 0 {
		variableName = defaultRootEnvironmentVariableConstant
	}

	environmentValue, present := resolver.lookup(variableName)
	trimmedValue := strings.TrimSpace(environmentValue)
	if !present || len(trimmedValue) == 0 {
		return Layout{}, &MissingEnvironmentError{VariableName: variableName}
	}

	rootDirectory := filepath.Join(resolver.expandHome(trimmedValue), strings.TrimSpace(configuration.RootSubdirectory))
	return NewLayout(rootDirectory), nil
}

func (resolver *Resolver) expandHome(candidatePath string) string {
	if candidatePath != homeDirectorySymbolConstant && !strings.HasPrefix(candidatePath, homeDirectorySymbolConstant+string(os.PathSeparator)) && !strings.HasPrefix(candidatePath, homeDirectorySymbolConstant+"/") {
		return candidatePath
	}

	homeDirectory, homeError := resolver.homeDirectoryProvider()
	if homeError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, homeDirectorySymbolConstant))
}

// Layout locates repository working directories under the workspace root.
type Layout struct {
	root string
}

// NewLayout constructs a Layout rooted at rootDirectory.
func NewLayout(rootDirectory string) Layout {
	return Layout{root: filepath.Clean(rootDirectory)}
}

// Root returns the workspace root directory.
func (layout Layout) Root() string {
	return layout.root
}

// RepositoryDirectory returns the working directory of a managed repository.
func (layout Layout) RepositoryDirectory(repositoryPath registry.RepositoryPath) string {
	return filepath.Join(layout.root, string(repositoryPath))
}
