package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gikkon/internal/backend"
	"github.com/temirov/gikkon/internal/changeset"
	"github.com/temirov/gikkon/internal/filesync"
	"github.com/temirov/gikkon/internal/prompt"
	"github.com/temirov/gikkon/internal/utils"
)

const (
	// DefaultCommitMessage is used when the operator does not type a commit message.
	DefaultCommitMessage = "something changed"
	// DefaultRemote is the remote pushed to when none is configured.
	DefaultRemote = "origin"
	// DefaultBranch is the branch compared and pushed when none is configured.
	DefaultBranch = "main"

	unpushedQuestionConstant           = "You have unpushed changes. Do you want to push them first?"
	acceptQuestionConstant             = "Accept changes"
	revertQuestionConstant             = "Do you want to revert any files in the system?"
	commitMessageQuestionConstant      = "Write a custom commit message (or press Enter to use the default):"
	committedMessageConstant           = "Changes committed and pushed"
	abortedMessageConstant             = "Abort adding git files"
	cleanMessageConstant               = "Nothing to commit, the mirror matches HEAD"
	noRevertCandidatesMessageConstant  = "There are no modified or new files to revert"
	dryRunPushTemplateConstant         = "would stage, commit, and push pending changes to %s/%s"
	dryRunCommitTemplateConstant       = "would stage, commit, and push changes to %s/%s"
	dryRunDiscardMessageConstant       = "would discard working changes in the mirror"
	backendMissingMessageConstant      = "version control backend not configured"
	synchronizerMissingMessageConstant = "file synchronizer not configured"
	prompterMissingMessageConstant     = "prompter not configured"
	stateTransitionMessageConstant     = "reconciliation state"
	syncSummaryMessageConstant         = "mirror synchronized"
	cycleFailedMessageConstant         = "reconciliation cycle failed"
	logFieldStateConstant              = "state"
	logFieldCopiedConstant             = "copied"
	logFieldDeletedConstant            = "deleted"
	logFieldFailuresConstant           = "failures"
	logFieldLocalHeadConstant          = "local_head"
	logFieldRemoteHeadConstant         = "remote_head"
	headsDifferMessageConstant         = "local and remote heads differ"
	selectionFailureTemplateConstant   = "select revert entries: %w"
	syncFailureTemplateConstant        = "sync mirror: %w"
	revertFailureTemplateConstant      = "revert files: %w"
	promptFailureTemplateConstant      = "prompt: %w"
	lineTemplateConstant               = "%s\n"
)

// ErrBackendNotConfigured indicates the controller was built without a backend.
var ErrBackendNotConfigured = errors.New(backendMissingMessageConstant)

// ErrSynchronizerNotConfigured indicates the controller was built without a file synchronizer.
var ErrSynchronizerNotConfigured = errors.New(synchronizerMissingMessageConstant)

// ErrPrompterNotConfigured indicates the controller was built without a prompter.
var ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)

// Prompter asks the operator questions.
type Prompter interface {
	AskYesNo(question string, defaultAnswer bool) (bool, error)
	AskFreeText(question string, defaultAnswer string) (string, error)
	AskSelection(candidates []string) (prompt.Selection, error)
}

// Synchronizer moves file content between the live system and the mirror.
type Synchronizer interface {
	Sync(executionContext context.Context, options filesync.SyncOptions) (filesync.SyncReport, error)
	Revert(executionContext context.Context, entries []changeset.Entry) error
}

// ChangeSetRenderer formats a change set for the operator.
type ChangeSetRenderer interface {
	RenderChangeSet(changeSet changeset.ChangeSet) string
}

// Options configures a Controller.
type Options struct {
	Remote           string
	Branch           string
	CommitMessage    string
	DeleteNotPresent bool
	AskRollback      bool
	Mode             filesync.ExecutionMode
}

// Dependencies supplies the collaborators used by Controller.
type Dependencies struct {
	Backend      backend.Backend
	Synchronizer Synchronizer
	Prompter     Prompter
	Renderer     ChangeSetRenderer
	Logger       *zap.Logger
	Output       io.Writer
}

// Controller runs reconciliation cycles against the mirror repository.
type Controller struct {
	options      Options
	backend      backend.Backend
	synchronizer Synchronizer
	prompter     Prompter
	renderer     ChangeSetRenderer
	logger       *zap.Logger
	output       io.Writer
	history      []State
}

// NewController validates dependencies and fills option defaults.
func NewController(options Options, dependencies Dependencies) (*Controller, error) {
	if dependencies.Backend == nil {
		return nil, ErrBackendNotConfigured
	}
	if dependencies.Synchronizer == nil {
		return nil, ErrSynchronizerNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}

	resolvedOptions := options
	resolvedOptions.Remote = valueOrDefault(options.Remote, DefaultRemote)
	resolvedOptions.Branch = valueOrDefault(options.Branch, DefaultBranch)
	resolvedOptions.CommitMessage = valueOrDefault(options.CommitMessage, DefaultCommitMessage)

	renderer := dependencies.Renderer
	if renderer == nil {
		renderer = plainRenderer{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}

	return &Controller{
		options:      resolvedOptions,
		backend:      dependencies.Backend,
		synchronizer: dependencies.Synchronizer,
		prompter:     dependencies.Prompter,
		renderer:     renderer,
		logger:       logger,
		output:       utils.NewFlushingWriter(output),
	}, nil
}

// History returns the states visited by the most recent cycle.
func (controller *Controller) History() []State {
	return append([]State(nil), controller.history...)
}

// Backup pushes pending commits when asked, syncs live files into the mirror,
// and reviews the resulting changes with the operator.
func (controller *Controller) Backup(executionContext context.Context) (Outcome, error) {
	controller.begin()

	if ensureError := controller.ensureUpToDate(executionContext); ensureError != nil {
		return controller.fail(ensureError)
	}

	controller.transition(StateSyncing)
	report, syncError := controller.synchronizer.Sync(executionContext, filesync.SyncOptions{DeleteNotPresent: controller.options.DeleteNotPresent})
	if syncError != nil {
		return controller.fail(fmt.Errorf(syncFailureTemplateConstant, syncError))
	}
	controller.logger.Info(syncSummaryMessageConstant,
		zap.Int(logFieldCopiedConstant, len(report.Copied)),
		zap.Int(logFieldDeletedConstant, len(report.Deleted)),
		zap.Int(logFieldFailuresConstant, len(report.Failures)),
	)

	return controller.review(executionContext)
}

// Commit reviews the current mirror changes without syncing first.
func (controller *Controller) Commit(executionContext context.Context) (Outcome, error) {
	controller.begin()
	return controller.review(executionContext)
}

// Rollback offers to revert the current uncommitted mirror changes.
func (controller *Controller) Rollback(executionContext context.Context) (Outcome, error) {
	controller.begin()

	snapshot, inspectError := controller.inspect(executionContext)
	if inspectError != nil {
		return controller.fail(inspectError)
	}
	if snapshot.IsEmpty() {
		return controller.clean()
	}
	return controller.rollBack(executionContext)
}

func (controller *Controller) ensureUpToDate(executionContext context.Context) error {
	controller.transition(StateEnsureUpToDate)

	localHead, localError := controller.backend.LocalHead(executionContext, controller.options.Branch)
	if localError != nil {
		return localError
	}
	remoteHead, remoteError := controller.backend.RemoteHead(executionContext, controller.options.Remote, controller.options.Branch)
	if remoteError != nil {
		return remoteError
	}
	if localHead == remoteHead {
		return nil
	}
	controller.logger.Info(headsDifferMessageConstant,
		zap.String(logFieldLocalHeadConstant, localHead),
		zap.String(logFieldRemoteHeadConstant, remoteHead),
	)

	pushFirst, askError := controller.prompter.AskYesNo(unpushedQuestionConstant, true)
	if askError != nil {
		return fmt.Errorf(promptFailureTemplateConstant, askError)
	}
	if !pushFirst {
		return nil
	}
	if controller.options.Mode == filesync.ModeDryRun {
		return controller.printf(dryRunPushTemplateConstant, controller.options.Remote, controller.options.Branch)
	}

	if stageError := controller.backend.StageAll(executionContext); stageError != nil {
		return stageError
	}
	staged, snapshotError := backend.Snapshot(executionContext, controller.backend)
	if snapshotError != nil {
		return snapshotError
	}
	if !staged.IsEmpty() {
		if commitError := controller.backend.Commit(executionContext, controller.options.CommitMessage); commitError != nil {
			return commitError
		}
	}
	return controller.backend.Push(executionContext, controller.options.Remote, controller.options.Branch)
}

func (controller *Controller) review(executionContext context.Context) (Outcome, error) {
	snapshot, inspectError := controller.inspect(executionContext)
	if inspectError != nil {
		return controller.fail(inspectError)
	}
	if snapshot.IsEmpty() {
		return controller.clean()
	}

	controller.transition(StateReviewing)
	accepted, acceptError := controller.prompter.AskYesNo(acceptQuestionConstant, true)
	if acceptError != nil {
		return controller.fail(fmt.Errorf(promptFailureTemplateConstant, acceptError))
	}
	if accepted {
		return controller.commit(executionContext)
	}

	if !controller.options.AskRollback {
		return controller.abort()
	}
	revert, revertError := controller.prompter.AskYesNo(revertQuestionConstant, false)
	if revertError != nil {
		return controller.fail(fmt.Errorf(promptFailureTemplateConstant, revertError))
	}
	if !revert {
		return controller.abort()
	}
	return controller.rollBack(executionContext)
}

func (controller *Controller) inspect(executionContext context.Context) (changeset.ChangeSet, error) {
	controller.transition(StateInspecting)

	snapshot, snapshotError := backend.Snapshot(executionContext, controller.backend)
	if snapshotError != nil {
		return changeset.ChangeSet{}, snapshotError
	}
	if !snapshot.IsEmpty() {
		if _, writeError := io.WriteString(controller.output, controller.renderer.RenderChangeSet(snapshot)); writeError != nil {
			return changeset.ChangeSet{}, writeError
		}
	}
	return snapshot, nil
}

func (controller *Controller) commit(executionContext context.Context) (Outcome, error) {
	controller.transition(StateCommitting)

	if controller.options.Mode == filesync.ModeDryRun {
		if printError := controller.printf(dryRunCommitTemplateConstant, controller.options.Remote, controller.options.Branch); printError != nil {
			return controller.fail(printError)
		}
		return controller.finish(OutcomeCommitted)
	}

	message, messageError := controller.prompter.AskFreeText(commitMessageQuestionConstant, controller.options.CommitMessage)
	if messageError != nil {
		return controller.fail(fmt.Errorf(promptFailureTemplateConstant, messageError))
	}
	if stageError := controller.backend.StageAll(executionContext); stageError != nil {
		return controller.fail(stageError)
	}
	if commitError := controller.backend.Commit(executionContext, message); commitError != nil {
		return controller.fail(commitError)
	}
	if pushError := controller.backend.Push(executionContext, controller.options.Remote, controller.options.Branch); pushError != nil {
		return controller.fail(pushError)
	}
	if printError := controller.printf(committedMessageConstant); printError != nil {
		return controller.fail(printError)
	}
	return controller.finish(OutcomeCommitted)
}

func (controller *Controller) rollBack(executionContext context.Context) (Outcome, error) {
	controller.transition(StateRollingBack)

	snapshot, snapshotError := backend.Snapshot(executionContext, controller.backend)
	if snapshotError != nil {
		return controller.fail(snapshotError)
	}
	revertible := snapshot.Revertible()
	if len(revertible) == 0 {
		if printError := controller.printf(noRevertCandidatesMessageConstant); printError != nil {
			return controller.fail(printError)
		}
		controller.transition(StateAborted)
		return controller.finish(OutcomeAborted)
	}

	candidates := make([]string, 0, len(revertible))
	for _, entry := range revertible {
		candidates = append(candidates, entry.Path)
	}
	selection, selectionError := controller.prompter.AskSelection(candidates)
	if selectionError != nil {
		return controller.fail(fmt.Errorf(promptFailureTemplateConstant, selectionError))
	}
	if selection.Cancelled {
		return controller.finish(OutcomeRollbackCancelled)
	}

	selected, indexError := snapshot.SelectByIndexes(selection.Indexes)
	if indexError != nil {
		return controller.fail(fmt.Errorf(selectionFailureTemplateConstant, indexError))
	}

	if controller.options.Mode == filesync.ModeDryRun {
		if printError := controller.printf(dryRunDiscardMessageConstant); printError != nil {
			return controller.fail(printError)
		}
	} else if discardError := controller.backend.DiscardWorkingChanges(executionContext); discardError != nil {
		return controller.fail(discardError)
	}

	if revertError := controller.synchronizer.Revert(executionContext, selected); revertError != nil {
		return controller.fail(fmt.Errorf(revertFailureTemplateConstant, revertError))
	}
	return controller.finish(OutcomeRolledBack)
}

func (controller *Controller) clean() (Outcome, error) {
	controller.transition(StateClean)
	if printError := controller.printf(cleanMessageConstant); printError != nil {
		return controller.fail(printError)
	}
	return controller.finish(OutcomeClean)
}

func (controller *Controller) abort() (Outcome, error) {
	controller.transition(StateAborted)
	if printError := controller.printf(abortedMessageConstant); printError != nil {
		return controller.fail(printError)
	}
	return controller.finish(OutcomeAborted)
}

func (controller *Controller) begin() {
	controller.history = nil
	controller.transition(StateStart)
}

func (controller *Controller) finish(outcome Outcome) (Outcome, error) {
	controller.transition(StateEnd)
	return outcome, nil
}

func (controller *Controller) fail(cycleError error) (Outcome, error) {
	controller.logger.Error(cycleFailedMessageConstant, zap.Error(cycleError))
	controller.transition(StateEnd)
	return OutcomeAborted, cycleError
}

func (controller *Controller) transition(state State) {
	controller.history = append(controller.history, state)
	controller.logger.Debug(stateTransitionMessageConstant, zap.Stringer(logFieldStateConstant, state))
}

func (controller *Controller) printf(format string, arguments ...any) error {
	_, writeError := fmt.Fprintf(controller.output, lineTemplateConstant, fmt.Sprintf(format, arguments...))
	return writeError
}

type plainRenderer struct{}

func (plainRenderer) RenderChangeSet(changeSet changeset.ChangeSet) string {
	return changeSet.Render()
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
