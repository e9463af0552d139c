package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/mirrormerge/internal/conflicts"
	"github.com/temirov/mirrormerge/internal/execshell"
	"github.com/temirov/mirrormerge/internal/shared"
)

const (
	gitStatusSubcommandConstant               = "status"
	gitPorcelainFlagConstant                  = "--porcelain"
	gitRemoveSubcommandConstant               = "rm"
	gitRecursiveForceFlagConstant             = "-rf"
	gitIgnoreUnmatchFlagConstant              = "--ignore-unmatch"
	gitAddSubcommandConstant                  = "add"
	gitForceFlagConstant                      = "-f"
	gitCommitSubcommandConstant               = "commit"
	gitMessageFlagConstant                    = "-m"
	conflictPromptTemplateConstant            = "The following conflicts exist and must be resolved.\n\n%s\n\nWhen done, enter a commit message or press enter to use the default ('%s').\n\n"
	keepingOursReportTemplateConstant         = "Keeping ours for the following locally deleted files.\n  %s\n"
	addingTheirsReportTemplateConstant        = "Adding theirs for the following locally deleted files.\n  %s\n"
	reportPathSeparatorConstant               = "\n  "
	conflictLineSeparatorConstant             = "\n"
	gitExecutorMissingMessageConstant         = "conflict resolver requires a git executor"
	operatorMissingMessageConstant            = "conflict resolver requires an operator prompter"
	repositoryDirectoryMissingMessageConstant = "repository directory must be provided"
	commitMessageMissingMessageConstant       = "default commit message must be provided"
	statusErrorTemplateConstant               = "unable to inspect merge status: %w"
	removeErrorTemplateConstant               = "unable to remove locally deleted paths: %w"
	addErrorTemplateConstant                  = "unable to re-add paths renamed upstream: %w"
	operatorErrorTemplateConstant             = "unable to read operator response: %w"
	commitErrorTemplateConstant               = "unable to commit merge: %w"
	sessionStartedMessageConstant             = "resolution session started"
	stateEnteredMessageConstant               = "resolution state entered"
	conflictsPendingMessageConstant           = "conflicts awaiting operator"
	commitMessageReplacedMessageConstant      = "commit message replaced by operator"
	sessionCommittedMessageConstant           = "resolution session committed"
	logFieldSessionConstant                   = "session_id"
	logFieldRepositoryConstant                = "repository"
	logFieldStateConstant                     = "state"
	logFieldConflictCountConstant             = "conflict_count"
	logFieldRoundConstant                     = "round"
	logFieldCommitMessageConstant             = "commit_message"
	stateScanningLabelConstant                = "scanning"
	stateAutoResolvingLabelConstant           = "auto-resolving"
	stateAwaitingHumanLabelConstant           = "awaiting-human"
	stateCommittedLabelConstant               = "committed"
	stateUnknownLabelConstant                 = "unknown"
)

// ErrGitExecutorNotConfigured indicates the service was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrOperatorNotConfigured indicates the service was constructed without an operator prompter.
var ErrOperatorNotConfigured = errors.New(operatorMissingMessageConstant)

// ErrRepositoryDirectoryRequired indicates the session options omitted the repository directory.
var ErrRepositoryDirectoryRequired = errors.New(repositoryDirectoryMissingMessageConstant)

// ErrCommitMessageRequired indicates the session options omitted the default commit message.
var ErrCommitMessageRequired = errors.New(commitMessageMissingMessageConstant)

// State identifies a step of a resolution session.
type State int

// Resolution states in the order a session first visits them.
const (
	StateScanning State = iota
	StateAutoResolving
	StateAwaitingHuman
	StateCommitted
)

// String returns the log label of the state.
func (state State) String() string {
	switch state {
	case StateScanning:
		return stateScanningLabelConstant
	case StateAutoResolving:
		return stateAutoResolvingLabelConstant
	case StateAwaitingHuman:
		return stateAwaitingHumanLabelConstant
	case StateCommitted:
		return stateCommittedLabelConstant
	default:
		return stateUnknownLabelConstant
	}
}

// SessionIdentifierGenerator produces identifiers that tag a session in logs.
type SessionIdentifierGenerator func() string

// Dependencies captures the collaborators required by the resolver.
type Dependencies struct {
	GitExecutor                shared.GitExecutor
	Operator                   shared.LinePrompter
	Logger                     *zap.Logger
	Output                     io.Writer
	SessionIdentifierGenerator SessionIdentifierGenerator
}

// Options configures one resolution session.
type Options struct {
	RepositoryDirectory  string
	DefaultCommitMessage string
}

// Result summarizes a committed session.
type Result struct {
	SessionIdentifier string
	CommitMessage     string
	AutoRemovedPaths  []string
	AutoAddedPaths    []string
	OperatorRounds    int
	States            []State
}

// Service runs resolution sessions.
type Service struct {
	gitExecutor        shared.GitExecutor
	operator           shared.LinePrompter
	logger             *zap.Logger
	reporter           shared.Reporter
	generateIdentifier SessionIdentifierGenerator
}

// NewService validates dependencies and constructs the resolver.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.Operator == nil {
		return nil, ErrOperatorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	generateIdentifier := dependencies.SessionIdentifierGenerator
	if generateIdentifier == nil {
		generateIdentifier = uuid.NewString
	}

	return &Service{
		gitExecutor:        dependencies.GitExecutor,
		operator:           dependencies.Operator,
		logger:             logger,
		reporter:           shared.NewWriterReporter(dependencies.Output),
		generateIdentifier: generateIdentifier,
	}, nil
}

type session struct {
	service       *Service
	options       Options
	logger        *zap.Logger
	commitMessage string
	result        Result
}

// Resolve runs a session to completion. Any git or operator failure aborts the session
// without committing; nothing is retried.
func (service *Service) Resolve(executionContext context.Context, options Options) (Result, error) {
	trimmedDirectory := strings.TrimSpace(options.RepositoryDirectory)
	if len(trimmedDirectory) == 0 {
		return Result{}, ErrRepositoryDirectoryRequired
	}
	if len(strings.TrimSpace(options.DefaultCommitMessage)) == 0 {
		return Result{}, ErrCommitMessageRequired
	}

	sessionIdentifier := service.generateIdentifier()
	activeSession := &session{
		service:       service,
		options:       Options{RepositoryDirectory: trimmedDirectory, DefaultCommitMessage: options.DefaultCommitMessage},
		logger:        service.logger.With(zap.String(logFieldSessionConstant, sessionIdentifier), zap.String(logFieldRepositoryConstant, trimmedDirectory)),
		commitMessage: options.DefaultCommitMessage,
		result:        Result{SessionIdentifier: sessionIdentifier},
	}
	activeSession.logger.Info(sessionStartedMessageConstant)

	if runError := activeSession.run(executionContext); runError != nil {
		return activeSession.result, runError
	}
	return activeSession.result, nil
}

func (activeSession *session) run(executionContext context.Context) error {
	initialRecords, scanError := activeSession.scan(executionContext)
	if scanError != nil {
		return scanError
	}

	if autoResolveError := activeSession.autoResolve(executionContext, initialRecords); autoResolveError != nil {
		return autoResolveError
	}

	for {
		records, rescanError := activeSession.scan(executionContext)
		if rescanError != nil {
			return rescanError
		}

		conflictLines := conflicts.Lines(records)
		if len(conflictLines) == 0 {
			break
		}

		if awaitError := activeSession.awaitOperator(conflictLines); awaitError != nil {
			return awaitError
		}
	}

	return activeSession.commit(executionContext)
}

func (activeSession *session) enter(state State) {
	activeSession.result.States = append(activeSession.result.States, state)
	activeSession.logger.Debug(stateEnteredMessageConstant, zap.Stringer(logFieldStateConstant, state))
}

func (activeSession *session) scan(executionContext context.Context) (iter.Seq[conflicts.ConflictRecord], error) {
	activeSession.enter(StateScanning)

	statusResult, statusError := activeSession.git(executionContext, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if statusError != nil {
		return nil, fmt.Errorf(statusErrorTemplateConstant, statusError)
	}
	return conflicts.Classify(statusResult.StandardOutput), nil
}

// autoResolve runs once per session, against the first scan only.
func (activeSession *session) autoResolve(executionContext context.Context, records iter.Seq[conflicts.ConflictRecord]) error {
	activeSession.enter(StateAutoResolving)

	deletedByUs := conflicts.PathsOfKind(records, conflicts.ConflictDeletedByUs)
	if len(deletedByUs) > 0 {
		activeSession.service.reporter.Printf(keepingOursReportTemplateConstant, strings.Join(deletedByUs, reportPathSeparatorConstant))
		removeArguments := append([]string{gitRemoveSubcommandConstant, gitRecursiveForceFlagConstant, gitIgnoreUnmatchFlagConstant}, deletedByUs...)
		if _, removeError := activeSession.git(executionContext, removeArguments...); removeError != nil {
			return fmt.Errorf(removeErrorTemplateConstant, removeError)
		}
		activeSession.result.AutoRemovedPaths = slices.Clone(deletedByUs)
	}

	renamedByThem := conflicts.PathsOfKind(records, conflicts.ConflictRenamedByThem)
	if len(renamedByThem) > 0 {
		activeSession.service.reporter.Printf(addingTheirsReportTemplateConstant, strings.Join(renamedByThem, reportPathSeparatorConstant))
		addArguments := append([]string{gitAddSubcommandConstant, gitForceFlagConstant}, renamedByThem...)
		if _, addError := activeSession.git(executionContext, addArguments...); addError != nil {
			return fmt.Errorf(addErrorTemplateConstant, addError)
		}
		activeSession.result.AutoAddedPaths = slices.Clone(renamedByThem)
	}

	return nil
}

func (activeSession *session) awaitOperator(conflictLines []string) error {
	activeSession.enter(StateAwaitingHuman)
	activeSession.result.OperatorRounds++
	activeSession.logger.Info(
		conflictsPendingMessageConstant,
		zap.Int(logFieldConflictCountConstant, len(conflictLines)),
		zap.Int(logFieldRoundConstant, activeSession.result.OperatorRounds),
	)

	prompt := fmt.Sprintf(conflictPromptTemplateConstant, strings.Join(conflictLines, conflictLineSeparatorConstant), activeSession.commitMessage)
	response, operatorError := activeSession.service.operator.ReadLine(prompt)
	if operatorError != nil {
		return fmt.Errorf(operatorErrorTemplateConstant, operatorError)
	}

	if len(strings.TrimSpace(response)) > 0 {
		activeSession.commitMessage = response
		activeSession.logger.Debug(commitMessageReplacedMessageConstant, zap.String(logFieldCommitMessageConstant, response))
	}
	return nil
}

func (activeSession *session) commit(executionContext context.Context) error {
	if _, commitError := activeSession.git(executionContext, gitCommitSubcommandConstant, gitMessageFlagConstant, activeSession.commitMessage); commitError != nil {
		return fmt.Errorf(commitErrorTemplateConstant, commitError)
	}

	activeSession.enter(StateCommitted)
	activeSession.result.CommitMessage = activeSession.commitMessage
	activeSession.logger.Info(sessionCommittedMessageConstant, zap.String(logFieldCommitMessageConstant, activeSession.commitMessage))
	return nil
}

func (activeSession *session) git(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return activeSession.service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: activeSession.options.RepositoryDirectory,
	})
}
