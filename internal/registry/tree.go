package registry

import (
	"fmt"
	"io"

	"github.com/xlab/treeprint"
)

const (
	treeFlatBranchLabelConstant   = "flat history"
	treeFullBranchLabelConstant   = "full history"
	treePruneMetaLabelConstant    = "prune"
	treeDirectoryTemplateConstant = "%s (%s)"
)

// DirectoryResolver maps a repository to its working directory.
type DirectoryResolver interface {
	RepositoryDirectory(repositoryPath RepositoryPath) string
}

// TreePrinter renders the registry grouped by history policy.
type TreePrinter struct {
	Writer    io.Writer
	Root      string
	Directory DirectoryResolver
}

// Print writes the tree. Flat repositories list their prune targets as children.
func (printer TreePrinter) Print(registry *Registry) error {
	tree := treeprint.NewWithRoot(printer.Root)
	flatBranch := tree.AddBranch(treeFlatBranchLabelConstant)
	fullBranch := tree.AddBranch(treeFullBranchLabelConstant)

	for _, repositoryPath := range registry.AllRepositories() {
		policy, _ := registry.HistoryPolicyOf(repositoryPath)
		label := printer.describe(repositoryPath)
		if policy == HistoryPolicyFull {
			fullBranch.AddNode(label)
			continue
		}

		pruneTargets := registry.PruneTargetsOf(repositoryPath)
		if len(pruneTargets) == 0 {
			flatBranch.AddNode(label)
			continue
		}
		repositoryBranch := flatBranch.AddBranch(label)
		for _, pruneTarget := range pruneTargets {
			repositoryBranch.AddMetaNode(treePruneMetaLabelConstant, pruneTarget)
		}
	}

	_, writeError := io.WriteString(printer.Writer, tree.String())
	return writeError
}

func (printer TreePrinter) describe(repositoryPath RepositoryPath) string {
	if printer.Directory == nil {
		return string(repositoryPath)
	}
	return fmt.Sprintf(treeDirectoryTemplateConstant, repositoryPath, printer.Directory.RepositoryDirectory(repositoryPath))
}
