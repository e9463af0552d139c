package publish

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
	gitPushSubcommandConstant         = "push"
	refspecTemplateConstant           = "%s:%s"
	confirmationPromptConstant        = "Merge complete; push to server? [y|n]: "
	pushingBannerConstant             = "Pushing to server ...\n"
	repositoryLineTemplateConstant    = "%s\n"
	defaultRemoteNameConstant         = "goog"
	gitExecutorMissingMessageConstant = "publish coordinator requires a git executor"
	registryMissingMessageConstant    = "publish coordinator requires a repository registry"
	prompterMissingMessageConstant    = "publish coordinator requires a confirmation prompter unless confirmation is assumed"
	sourceMissingMessageConstant      = "source reference must be provided"
	destinationMissingMessageConstant = "destination reference must be provided"
	confirmationErrorTemplateConstant = "unable to confirm publish: %w"
	pushFailedTemplateConstant        = "push of %s failed: %w"
	publishDeclinedMessageConstant    = "publish declined by operator"
	repositoryPushedMessageConstant   = "repository pushed"
	publishCompletedMessageConstant   = "publish completed"
	logFieldRepositoryConstant        = "repository"
	logFieldRemoteConstant            = "remote"
	logFieldRefspecConstant           = "refspec"
	logFieldPushedCountConstant       = "pushed_count"
)

// ErrGitExecutorNotConfigured indicates the coordinator was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRegistryNotConfigured indicates the coordinator was constructed without a registry.
var ErrRegistryNotConfigured = errors.New(registryMissingMessageConstant)

// ErrPrompterNotConfigured indicates a prompt was required but no prompter was supplied.
var ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)

// ErrSourceReferenceRequired indicates the options omitted the local reference.
var ErrSourceReferenceRequired = errors.New(sourceMissingMessageConstant)

// ErrDestinationReferenceRequired indicates the options omitted the remote reference.
var ErrDestinationReferenceRequired = errors.New(destinationMissingMessageConstant)

// PushStatus describes what happened to one repository during a publish.
type PushStatus string

// Push statuses.
const (
	PushStatusPushed  PushStatus = "pushed"
	PushStatusFailed  PushStatus = "failed"
	PushStatusPending PushStatus = "pending"
)

// DirectoryResolver maps a registry path to its working directory.
type DirectoryResolver interface {
	RepositoryDirectory(repositoryPath registry.RepositoryPath) string
}

// Dependencies captures the collaborators required by the coordinator.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	Prompter    shared.ConfirmationPrompter
	Registry    *registry.Registry
	Directories DirectoryResolver
	Logger      *zap.Logger
	Output      io.Writer
}

// Options configures one publish.
type Options struct {
	ConfirmationPolicy   shared.ConfirmationPolicy
	SourceReference      string
	DestinationReference string
	RemoteName           string
}

// RepositoryOutcome records the push status of a single repository.
type RepositoryOutcome struct {
	Repository registry.RepositoryPath
	Directory  string
	Status     PushStatus
	Failure    error
}

// Result summarizes a publish. Outcomes is empty when the operator declined.
type Result struct {
	Confirmed  bool
	RemoteName string
	Refspec    string
	Outcomes   []RepositoryOutcome
}

// PushedRepositories lists the repositories that reached the remote, in push order.
func (result Result) PushedRepositories() []registry.RepositoryPath {
	var pushed []registry.RepositoryPath
	for _, outcome := range result.Outcomes {
		if outcome.Status == PushStatusPushed {
			pushed = append(pushed, outcome.Repository)
		}
	}
	return pushed
}

// Coordinator runs the confirmation-gated ordered push.
type Coordinator struct {
	gitExecutor shared.GitExecutor
	prompter    shared.ConfirmationPrompter
	registry    *registry.Registry
	directories DirectoryResolver
	logger      *zap.Logger
	reporter    shared.Reporter
}

// NewCoordinator validates dependencies and constructs the coordinator.
func NewCoordinator(dependencies Dependencies) (*Coordinator, error) {
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

	return &Coordinator{
		gitExecutor: dependencies.GitExecutor,
		prompter:    dependencies.Prompter,
		registry:    dependencies.Registry,
		directories: dependencies.Directories,
		logger:      logger,
		reporter:    shared.NewWriterReporter(dependencies.Output),
	}, nil
}

// Publish asks for confirmation unless assumed, then pushes source:destination to the remote
// from every repository in registry order. A declined confirmation returns a result with no
// outcomes and a nil error. The first push failure stops the fan-out and is returned.
func (coordinator *Coordinator) Publish(executionContext context.Context, options Options) (Result, error) {
	sourceReference := strings.TrimSpace(options.SourceReference)
	if len(sourceReference) == 0 {
		return Result{}, ErrSourceReferenceRequired
	}
	destinationReference := strings.TrimSpace(options.DestinationReference)
	if len(destinationReference) == 0 {
		return Result{}, ErrDestinationReferenceRequired
	}
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}

	result := Result{
		RemoteName: remoteName,
		Refspec:    fmt.Sprintf(refspecTemplateConstant, sourceReference, destinationReference),
	}

	if options.ConfirmationPolicy.ShouldPrompt() {
		if coordinator.prompter == nil {
			return result, ErrPrompterNotConfigured
		}
		confirmation, confirmationError := coordinator.prompter.Confirm(confirmationPromptConstant)
		if confirmationError != nil {
			return result, fmt.Errorf(confirmationErrorTemplateConstant, confirmationError)
		}
		if !confirmation.Confirmed {
			coordinator.logger.Info(publishDeclinedMessageConstant)
			return result, nil
		}
	}
	result.Confirmed = true

	repositories := coordinator.registry.AllRepositories()
	result.Outcomes = make([]RepositoryOutcome, 0, len(repositories))
	for _, repositoryPath := range repositories {
		result.Outcomes = append(result.Outcomes, RepositoryOutcome{
			Repository: repositoryPath,
			Directory:  coordinator.directories.RepositoryDirectory(repositoryPath),
			Status:     PushStatusPending,
		})
	}

	coordinator.reporter.Printf(pushingBannerConstant)
	for outcomeIndex := range result.Outcomes {
		outcome := &result.Outcomes[outcomeIndex]
		coordinator.reporter.Printf(repositoryLineTemplateConstant, outcome.Repository)

		_, pushError := coordinator.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        []string{gitPushSubcommandConstant, remoteName, result.Refspec},
			WorkingDirectory: outcome.Directory,
		})
		if pushError != nil {
			outcome.Status = PushStatusFailed
			outcome.Failure = pushError
			return result, fmt.Errorf(pushFailedTemplateConstant, outcome.Repository, pushError)
		}

		outcome.Status = PushStatusPushed
		coordinator.logger.Debug(
			repositoryPushedMessageConstant,
			zap.String(logFieldRepositoryConstant, string(outcome.Repository)),
			zap.String(logFieldRemoteConstant, remoteName),
			zap.String(logFieldRefspecConstant, result.Refspec),
		)
	}

	coordinator.logger.Info(
		publishCompletedMessageConstant,
		zap.String(logFieldRemoteConstant, remoteName),
		zap.String(logFieldRefspecConstant, result.Refspec),
		zap.Int(logFieldPushedCountConstant, len(result.Outcomes)),
	)
	return result, nil
}
