package registry

import (
	"fmt"
	"path"
	"strings"
)

const (
	// RootRepositoryPath is the sentinel identifier of the root repository.
	RootRepositoryPath RepositoryPath = "."

	historyPolicyFlatLabelConstant             = "flat"
	historyPolicyFullLabelConstant             = "full"
	historyPolicyUnknownLabelConstant          = "unknown"
	configurationErrorTemplateConstant         = "invalid repository registry: %s: %s"
	emptyRepositoryPathMessageConstant         = "repository path must not be empty"
	rootListedAsThirdPartyMessageConstant      = "root repository cannot be declared as a third-party project"
	duplicateRepositoryMessageConstant         = "repository declared more than once"
	pruneRuleWithoutFlatHistoryMessageConstant = "prune rules are only allowed for repositories with flat history"
	emptyPruneTargetMessageConstant            = "prune targets must not be empty"
)

// RepositoryPath names a managed repository relative to the workspace root.
type RepositoryPath string

// HistoryPolicy describes how a repository's upstream history is retained on merge.
type HistoryPolicy int

// Supported history policies.
const (
	HistoryPolicyFlat HistoryPolicy = iota
	HistoryPolicyFull
)

// String returns the configuration label of the policy.
func (policy HistoryPolicy) String() string {
	switch policy {
	case HistoryPolicyFlat:
		return historyPolicyFlatLabelConstant
	case HistoryPolicyFull:
		return historyPolicyFullLabelConstant
	default:
		return historyPolicyUnknownLabelConstant
	}
}

// ConfigurationError reports an inconsistent registry declaration.
type ConfigurationError struct {
	RepositoryPath RepositoryPath
	Message        string
}

// Error describes the offending repository and rule.
func (configurationError *ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.RepositoryPath, configurationError.Message)
}

// Declarations lists third-party repositories by history policy plus the prune rules of flat repositories.
// The root repository is implied and always has flat history.
type Declarations struct {
	FlatHistory []string            `yaml:"flat_history" toml:"flat_history"`
	FullHistory []string            `yaml:"full_history" toml:"full_history"`
	Prune       map[string][]string `yaml:"prune" toml:"prune"`
}

// Registry is the immutable classification of managed repositories.
type Registry struct {
	allRepositories        []RepositoryPath
	thirdPartyRepositories []RepositoryPath
	historyPolicies        map[RepositoryPath]HistoryPolicy
	pruneTargets           map[RepositoryPath][]string
}

// NewRegistry validates the declarations and builds the registry. Any inconsistency is a *ConfigurationError.
func NewRegistry(declarations Declarations) (*Registry, error) {
	registry := &Registry{
		allRepositories:        []RepositoryPath{RootRepositoryPath},
		thirdPartyRepositories: make([]RepositoryPath, 0, len(declarations.FlatHistory)+len(declarations.FullHistory)),
		historyPolicies:        map[RepositoryPath]HistoryPolicy{RootRepositoryPath: HistoryPolicyFlat},
		pruneTargets:           make(map[RepositoryPath][]string, len(declarations.Prune)),
	}

	if declarationError := registry.declare(declarations.FlatHistory, HistoryPolicyFlat); declarationError != nil {
		return nil, declarationError
	}
	if declarationError := registry.declare(declarations.FullHistory, HistoryPolicyFull); declarationError != nil {
		return nil, declarationError
	}

	for rawPath, rawTargets := range declarations.Prune {
		repositoryPath := normalizeRepositoryPath(rawPath)
		policy, declared := registry.historyPolicies[repositoryPath]
		if !declared || policy != HistoryPolicyFlat {
			return nil, &ConfigurationError{RepositoryPath: repositoryPath, Message: pruneRuleWithoutFlatHistoryMessageConstant}
		}

		targets := make([]string, 0, len(rawTargets))
		for _, rawTarget := range rawTargets {
			trimmedTarget := strings.TrimSpace(rawTarget)
			if len(trimmedTarget) == 0 {
				return nil, &ConfigurationError{RepositoryPath: repositoryPath, Message: emptyPruneTargetMessageConstant}
			}
			targets = append(targets, trimmedTarget)
		}
		registry.pruneTargets[repositoryPath] = append(registry.pruneTargets[repositoryPath], targets...)
	}

	return registry, nil
}

func (registry *Registry) declare(rawPaths []string, policy HistoryPolicy) error {
	for _, rawPath := range rawPaths {
		if len(strings.TrimSpace(rawPath)) == 0 {
			return &ConfigurationError{RepositoryPath: RepositoryPath(rawPath), Message: emptyRepositoryPathMessageConstant}
		}

		repositoryPath := normalizeRepositoryPath(rawPath)
		if repositoryPath == RootRepositoryPath {
			return &ConfigurationError{RepositoryPath: repositoryPath, Message: rootListedAsThirdPartyMessageConstant}
		}
		if _, alreadyDeclared := registry.historyPolicies[repositoryPath]; alreadyDeclared {
			return &ConfigurationError{RepositoryPath: repositoryPath, Message: duplicateRepositoryMessageConstant}
		}

		registry.historyPolicies[repositoryPath] = policy
		registry.thirdPartyRepositories = append(registry.thirdPartyRepositories, repositoryPath)
		registry.allRepositories = append(registry.allRepositories, repositoryPath)
	}
	return nil
}

// AllRepositories returns the root followed by every third-party repository in declaration order.
func (registry *Registry) AllRepositories() []RepositoryPath {
	return append([]RepositoryPath{}, registry.allRepositories...)
}

// ThirdPartyRepositories returns flat-history then full-history third-party repositories in declaration order.
func (registry *Registry) ThirdPartyRepositories() []RepositoryPath {
	return append([]RepositoryPath{}, registry.thirdPartyRepositories...)
}

// HistoryPolicyOf reports the policy of a declared repository.
func (registry *Registry) HistoryPolicyOf(repositoryPath RepositoryPath) (HistoryPolicy, bool) {
	policy, declared := registry.historyPolicies[normalizeRepositoryPath(string(repositoryPath))]
	return policy, declared
}

// PruneTargetsOf returns the subpaths deleted when flattening the repository, in declared order.
func (registry *Registry) PruneTargetsOf(repositoryPath RepositoryPath) []string {
	return append([]string{}, registry.pruneTargets[normalizeRepositoryPath(string(repositoryPath))]...)
}

func normalizeRepositoryPath(rawPath string) RepositoryPath {
	trimmedPath := strings.TrimSpace(rawPath)
	if len(trimmedPath) == 0 {
		return RepositoryPath(trimmedPath)
	}
	return RepositoryPath(path.Clean(trimmedPath))
}
