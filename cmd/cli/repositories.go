package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/temirov/mirrormerge/internal/dependencies"
	"github.com/temirov/mirrormerge/internal/registry"
	"github.com/temirov/mirrormerge/internal/utils"
)

const (
	repositoriesCommandUseConstant              = "repositories"
	repositoriesCommandShortDescriptionConstant = "List managed repositories grouped by history policy"
	repositoriesCommandLongDescriptionConstant  = "repositories prints the repository registry as a tree: flat repositories with their prune targets, then full-history repositories, each with its working directory."
	repositoriesUnexpectedArgumentsConstant     = "repositories does not accept positional arguments"
)

var errRepositoriesUnexpectedArguments = errors.New(repositoriesUnexpectedArgumentsConstant)

// RepositoriesCommandBuilder assembles the repositories cobra command.
type RepositoriesCommandBuilder struct {
	RegistryProvider dependencies.RegistryProvider
	LayoutProvider   dependencies.LayoutProvider
}

// Build constructs the repositories command.
func (builder *RepositoriesCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   repositoriesCommandUseConstant,
		Short: repositoriesCommandShortDescriptionConstant,
		Long:  repositoriesCommandLongDescriptionConstant,
		RunE:  builder.run,
	}, nil
}

func (builder *RepositoriesCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errRepositoriesUnexpectedArguments
	}

	repositoryRegistry, registryError := dependencies.ResolveRegistry(builder.RegistryProvider)
	if registryError != nil {
		return registryError
	}
	layout, layoutError := dependencies.ResolveLayout(builder.LayoutProvider)
	if layoutError != nil {
		return layoutError
	}

	printer := registry.TreePrinter{
		Writer:    utils.NewFlushingWriter(command.OutOrStdout()),
		Root:      layout.Root(),
		Directory: layout,
	}
	return printer.Print(repositoryRegistry)
}
