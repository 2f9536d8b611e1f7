package reconcile_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gikkon/internal/backend"
	"github.com/temirov/gikkon/internal/changeset"
	"github.com/temirov/gikkon/internal/filesync"
	"github.com/temirov/gikkon/internal/prompt"
	"github.com/temirov/gikkon/internal/reconcile"
)

const (
	testLocalHeadConstant     = "1111111111111111111111111111111111111111"
	testRemoteHeadConstant    = "2222222222222222222222222222222222222222"
	testModifiedPathConstant  = "home/operator/.bashrc"
	testSecondPathConstant    = "etc/fstab"
	testUntrackedPathConstant = "home/operator/.vimrc"
	testDeletedPathConstant   = "etc/hosts"
	testCustomMessageConstant = "Tune Shell Prompt"
)

type fakeBackend struct {
	localHead     string
	remoteHead    string
	untracked     []string
	changed       []changeset.Entry
	failures      map[string]error
	calls         []string
	commitMessage string
}

func (versionControl *fakeBackend) record(operation string) error {
	versionControl.calls = append(versionControl.calls, operation)
	return versionControl.failures[operation]
}

func (versionControl *fakeBackend) LocalHead(context.Context, string) (string, error) {
	return versionControl.localHead, versionControl.record("local-head")
}

func (versionControl *fakeBackend) RemoteHead(context.Context, string, string) (string, error) {
	return versionControl.remoteHead, versionControl.record("remote-head")
}

func (versionControl *fakeBackend) ListUntracked(context.Context) ([]string, error) {
	if failure := versionControl.failures["status"]; failure != nil {
		return nil, failure
	}
	return append([]string(nil), versionControl.untracked...), nil
}

func (versionControl *fakeBackend) ListChanged(context.Context) ([]changeset.Entry, error) {
	return append([]changeset.Entry(nil), versionControl.changed...), nil
}

func (versionControl *fakeBackend) DiscardWorkingChanges(context.Context) error {
	if failure := versionControl.record("discard"); failure != nil {
		return failure
	}
	versionControl.changed = nil
	return nil
}

func (versionControl *fakeBackend) StageAll(context.Context) error {
	return versionControl.record("stage")
}

func (versionControl *fakeBackend) Commit(_ context.Context, message string) error {
	if failure := versionControl.record("commit"); failure != nil {
		return failure
	}
	versionControl.commitMessage = message
	versionControl.untracked = nil
	versionControl.changed = nil
	return nil
}

func (versionControl *fakeBackend) Push(context.Context, string, string) error {
	if failure := versionControl.record("push"); failure != nil {
		return failure
	}
	versionControl.remoteHead = versionControl.localHead
	return nil
}

type fakeSynchronizer struct {
	syncCalls       int
	syncOptions     filesync.SyncOptions
	syncError       error
	revertedEntries []changeset.Entry
	revertCalls     int
}

func (synchronizer *fakeSynchronizer) Sync(_ context.Context, options filesync.SyncOptions) (filesync.SyncReport, error) {
	synchronizer.syncCalls++
	synchronizer.syncOptions = options
	return filesync.SyncReport{}, synchronizer.syncError
}

func (synchronizer *fakeSynchronizer) Revert(_ context.Context, entries []changeset.Entry) error {
	synchronizer.revertCalls++
	synchronizer.revertedEntries = append(synchronizer.revertedEntries, entries...)
	return nil
}

type scriptedPrompter struct {
	yesNoAnswers     []bool
	freeTextAnswers  []string
	selections       []prompt.Selection
	questions        []string
	offeredSelection []string
}

func (prompter *scriptedPrompter) AskYesNo(question string, defaultAnswer bool) (bool, error) {
	prompter.questions = append(prompter.questions, question)
	if len(prompter.yesNoAnswers) == 0 {
		return defaultAnswer, nil
	}
	answer := prompter.yesNoAnswers[0]
	prompter.yesNoAnswers = prompter.yesNoAnswers[1:]
	return answer, nil
}

func (prompter *scriptedPrompter) AskFreeText(question string, defaultAnswer string) (string, error) {
	prompter.questions = append(prompter.questions, question)
	if len(prompter.freeTextAnswers) == 0 {
		return defaultAnswer, nil
	}
	answer := prompter.freeTextAnswers[0]
	prompter.freeTextAnswers = prompter.freeTextAnswers[1:]
	return answer, nil
}

func (prompter *scriptedPrompter) AskSelection(candidates []string) (prompt.Selection, error) {
	prompter.offeredSelection = append([]string(nil), candidates...)
	if len(prompter.selections) == 0 {
		return prompt.Selection{Cancelled: true}, nil
	}
	selection := prompter.selections[0]
	prompter.selections = prompter.selections[1:]
	return selection, nil
}

type controllerFixture struct {
	backend      *fakeBackend
	synchronizer *fakeSynchronizer
	prompter     *scriptedPrompter
	output       *bytes.Buffer
	controller   *reconcile.Controller
}

func newControllerFixture(testInstance *testing.T, options reconcile.Options, versionControl *fakeBackend, prompter *scriptedPrompter) controllerFixture {
	testInstance.Helper()
	synchronizer := &fakeSynchronizer{}
	output := &bytes.Buffer{}
	controller, creationError := reconcile.NewController(options, reconcile.Dependencies{
		Backend:      versionControl,
		Synchronizer: synchronizer,
		Prompter:     prompter,
		Output:       output,
	})
	require.NoError(testInstance, creationError)
	return controllerFixture{
		backend:      versionControl,
		synchronizer: synchronizer,
		prompter:     prompter,
		output:       output,
		controller:   controller,
	}
}

func dirtyBackend() *fakeBackend {
	return &fakeBackend{
		localHead:  testLocalHeadConstant,
		remoteHead: testLocalHeadConstant,
		untracked:  []string{testUntrackedPathConstant},
		changed: []changeset.Entry{
			{Status: changeset.StatusModified, Path: testModifiedPathConstant},
			{Status: changeset.StatusModified, Path: testSecondPathConstant},
		},
	}
}

func TestNewControllerValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		dependencies  reconcile.Dependencies
		expectedError error
	}{
		{
			name:          "missing_backend",
			dependencies:  reconcile.Dependencies{Synchronizer: &fakeSynchronizer{}, Prompter: &scriptedPrompter{}},
			expectedError: reconcile.ErrBackendNotConfigured,
		},
		{
			name:          "missing_synchronizer",
			dependencies:  reconcile.Dependencies{Backend: &fakeBackend{}, Prompter: &scriptedPrompter{}},
			expectedError: reconcile.ErrSynchronizerNotConfigured,
		},
		{
			name:          "missing_prompter",
			dependencies:  reconcile.Dependencies{Backend: &fakeBackend{}, Synchronizer: &fakeSynchronizer{}},
			expectedError: reconcile.ErrPrompterNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			_, creationError := reconcile.NewController(reconcile.Options{}, testCase.dependencies)
			require.ErrorIs(subtest, creationError, testCase.expectedError)
		})
	}
}

func TestBackupScenarios(testInstance *testing.T) {
	testCases := []struct {
		name            string
		options         reconcile.Options
		backend         func() *fakeBackend
		prompter        *scriptedPrompter
		expectedOutcome reconcile.Outcome
		expectedHistory []reconcile.State
		expectedCalls   []string
		verify          func(*testing.T, controllerFixture)
	}{
		{
			name:    "clean_mirror_ends_cycle",
			options: reconcile.Options{},
			backend: func() *fakeBackend {
				return &fakeBackend{localHead: testLocalHeadConstant, remoteHead: testLocalHeadConstant}
			},
			prompter:        &scriptedPrompter{},
			expectedOutcome: reconcile.OutcomeClean,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateClean, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Empty(testInstance, fixture.prompter.questions)
				require.Contains(testInstance, fixture.output.String(), "Nothing to commit")
			},
		},
		{
			name:            "accept_commits_with_default_message",
			options:         reconcile.Options{DeleteNotPresent: true},
			backend:         dirtyBackend,
			prompter:        &scriptedPrompter{yesNoAnswers: []bool{true}},
			expectedOutcome: reconcile.OutcomeCommitted,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateCommitting, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head", "stage", "commit", "push"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.True(testInstance, fixture.synchronizer.syncOptions.DeleteNotPresent)
				require.Equal(testInstance, reconcile.DefaultCommitMessage, fixture.backend.commitMessage)
				require.Equal(testInstance, []string{
					"Accept changes",
					"Write a custom commit message (or press Enter to use the default):",
				}, fixture.prompter.questions)
				output := fixture.output.String()
				require.Contains(testInstance, output, "Adding new files:\n+ "+testUntrackedPathConstant)
				require.Contains(testInstance, output, "Changing files:\n0 "+testModifiedPathConstant+"\n1 "+testSecondPathConstant)
				require.Contains(testInstance, output, "Changes committed and pushed\n")
			},
		},
		{
			name:            "accept_keeps_custom_message_case",
			options:         reconcile.Options{},
			backend:         dirtyBackend,
			prompter:        &scriptedPrompter{yesNoAnswers: []bool{true}, freeTextAnswers: []string{testCustomMessageConstant}},
			expectedOutcome: reconcile.OutcomeCommitted,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateCommitting, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head", "stage", "commit", "push"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Equal(testInstance, testCustomMessageConstant, fixture.backend.commitMessage)
			},
		},
		{
			name:            "decline_without_rollback_aborts",
			options:         reconcile.Options{},
			backend:         dirtyBackend,
			prompter:        &scriptedPrompter{yesNoAnswers: []bool{false}},
			expectedOutcome: reconcile.OutcomeAborted,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateAborted, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Contains(testInstance, fixture.output.String(), "Abort adding git files\n")
				require.Equal(testInstance, []string{"Accept changes"}, fixture.prompter.questions)
			},
		},
		{
			name:            "decline_rollback_question_aborts",
			options:         reconcile.Options{AskRollback: true},
			backend:         dirtyBackend,
			prompter:        &scriptedPrompter{yesNoAnswers: []bool{false, false}},
			expectedOutcome: reconcile.OutcomeAborted,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateAborted, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Equal(testInstance, []string{
					"Accept changes",
					"Do you want to revert any files in the system?",
				}, fixture.prompter.questions)
				require.Zero(testInstance, fixture.synchronizer.revertCalls)
			},
		},
		{
			name:    "rollback_reverts_selected_entries",
			options: reconcile.Options{AskRollback: true},
			backend: dirtyBackend,
			prompter: &scriptedPrompter{
				yesNoAnswers: []bool{false, true},
				selections:   []prompt.Selection{{Indexes: []int{2, 0}}},
			},
			expectedOutcome: reconcile.OutcomeRolledBack,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateRollingBack, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head", "discard"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Equal(testInstance,
					[]string{testModifiedPathConstant, testSecondPathConstant, testUntrackedPathConstant},
					fixture.prompter.offeredSelection,
				)
				require.Equal(testInstance, []changeset.Entry{
					{Status: changeset.StatusModified, Path: testModifiedPathConstant},
					{Status: changeset.StatusUntracked, Path: testUntrackedPathConstant},
				}, fixture.synchronizer.revertedEntries)
			},
		},
		{
			name:            "rollback_cancellation_keeps_mirror",
			options:         reconcile.Options{AskRollback: true},
			backend:         dirtyBackend,
			prompter:        &scriptedPrompter{yesNoAnswers: []bool{false, true}},
			expectedOutcome: reconcile.OutcomeRollbackCancelled,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateRollingBack, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Zero(testInstance, fixture.synchronizer.revertCalls)
			},
		},
		{
			name:    "rollback_without_revertible_entries_aborts",
			options: reconcile.Options{AskRollback: true},
			backend: func() *fakeBackend {
				return &fakeBackend{
					localHead:  testLocalHeadConstant,
					remoteHead: testLocalHeadConstant,
					changed:    []changeset.Entry{{Status: changeset.StatusDeleted, Path: testDeletedPathConstant}},
				}
			},
			prompter:        &scriptedPrompter{yesNoAnswers: []bool{false, true}},
			expectedOutcome: reconcile.OutcomeAborted,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateRollingBack,
				reconcile.StateAborted, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Contains(testInstance, fixture.output.String(), "There are no modified or new files to revert\n")
				require.Nil(testInstance, fixture.prompter.offeredSelection)
			},
		},
		{
			name:    "unpushed_heads_are_pushed_first",
			options: reconcile.Options{},
			backend: func() *fakeBackend {
				return &fakeBackend{localHead: testLocalHeadConstant, remoteHead: testRemoteHeadConstant}
			},
			prompter:        &scriptedPrompter{yesNoAnswers: []bool{true}},
			expectedOutcome: reconcile.OutcomeClean,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateClean, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head", "stage", "push"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Equal(testInstance, []string{"You have unpushed changes. Do you want to push them first?"}, fixture.prompter.questions)
			},
		},
		{
			name:    "unpushed_heads_commit_pending_changes",
			options: reconcile.Options{},
			backend: func() *fakeBackend {
				versionControl := dirtyBackend()
				versionControl.remoteHead = testRemoteHeadConstant
				return versionControl
			},
			prompter:        &scriptedPrompter{yesNoAnswers: []bool{true}},
			expectedOutcome: reconcile.OutcomeClean,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateClean, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head", "stage", "commit", "push"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Equal(testInstance, reconcile.DefaultCommitMessage, fixture.backend.commitMessage)
			},
		},
		{
			name:    "dry_run_describes_commit",
			options: reconcile.Options{Mode: filesync.ModeDryRun},
			backend: func() *fakeBackend {
				versionControl := dirtyBackend()
				versionControl.remoteHead = testRemoteHeadConstant
				return versionControl
			},
			prompter:        &scriptedPrompter{yesNoAnswers: []bool{true, true}},
			expectedOutcome: reconcile.OutcomeCommitted,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateCommitting, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				output := fixture.output.String()
				require.Contains(testInstance, output, "would stage, commit, and push pending changes to origin/main\n")
				require.Contains(testInstance, output, "would stage, commit, and push changes to origin/main\n")
			},
		},
		{
			name:    "dry_run_describes_discard",
			options: reconcile.Options{Mode: filesync.ModeDryRun, AskRollback: true},
			backend: dirtyBackend,
			prompter: &scriptedPrompter{
				yesNoAnswers: []bool{false, true},
				selections:   []prompt.Selection{{Indexes: []int{1}}},
			},
			expectedOutcome: reconcile.OutcomeRolledBack,
			expectedHistory: []reconcile.State{
				reconcile.StateStart, reconcile.StateEnsureUpToDate, reconcile.StateSyncing,
				reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateRollingBack, reconcile.StateEnd,
			},
			expectedCalls: []string{"local-head", "remote-head"},
			verify: func(testInstance *testing.T, fixture controllerFixture) {
				require.Contains(testInstance, fixture.output.String(), "would discard working changes in the mirror\n")
				require.Equal(testInstance,
					[]changeset.Entry{{Status: changeset.StatusModified, Path: testSecondPathConstant}},
					fixture.synchronizer.revertedEntries,
				)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			fixture := newControllerFixture(subtest, testCase.options, testCase.backend(), testCase.prompter)

			outcome, cycleError := fixture.controller.Backup(context.Background())
			require.NoError(subtest, cycleError)
			require.Equal(subtest, testCase.expectedOutcome, outcome)
			require.Equal(subtest, testCase.expectedHistory, fixture.controller.History())
			require.Equal(subtest, testCase.expectedCalls, fixture.backend.calls)
			require.Equal(subtest, 1, fixture.synchronizer.syncCalls)
			if testCase.verify != nil {
				testCase.verify(subtest, fixture)
			}
		})
	}
}

func TestBackupFailures(testInstance *testing.T) {
	statusFailure := backend.Unavailable("read status", errors.New("fatal: not a git repository"))
	pushFailure := backend.Unavailable("push", errors.New("rejected"))

	testCases := []struct {
		name          string
		configure     func(*fakeBackend, *fakeSynchronizer)
		expectedError error
		expectedCalls []string
	}{
		{
			name: "head_lookup_failure_stops_before_sync",
			configure: func(versionControl *fakeBackend, _ *fakeSynchronizer) {
				versionControl.failures = map[string]error{"local-head": backend.ErrUnavailable}
			},
			expectedError: backend.ErrUnavailable,
			expectedCalls: []string{"local-head"},
		},
		{
			name: "status_failure_stops_before_prompt",
			configure: func(versionControl *fakeBackend, _ *fakeSynchronizer) {
				versionControl.failures = map[string]error{"status": statusFailure}
			},
			expectedError: backend.ErrUnavailable,
			expectedCalls: []string{"local-head", "remote-head"},
		},
		{
			name: "push_failure_aborts_commit",
			configure: func(versionControl *fakeBackend, _ *fakeSynchronizer) {
				versionControl.failures = map[string]error{"push": pushFailure}
			},
			expectedError: backend.ErrUnavailable,
			expectedCalls: []string{"local-head", "remote-head", "stage", "commit", "push"},
		},
		{
			name: "fatal_elevation_failure_aborts_sync",
			configure: func(_ *fakeBackend, synchronizer *fakeSynchronizer) {
				synchronizer.syncError = &filesync.ElevationFailedError{Operation: "copy", Target: "/etc/hosts"}
			},
			expectedCalls: []string{"local-head", "remote-head"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			fixture := newControllerFixture(subtest, reconcile.Options{}, dirtyBackend(), &scriptedPrompter{yesNoAnswers: []bool{true}})
			testCase.configure(fixture.backend, fixture.synchronizer)

			outcome, cycleError := fixture.controller.Backup(context.Background())
			require.Error(subtest, cycleError)
			if testCase.expectedError != nil {
				require.ErrorIs(subtest, cycleError, testCase.expectedError)
			}
			require.Equal(subtest, reconcile.OutcomeAborted, outcome)
			require.Equal(subtest, testCase.expectedCalls, fixture.backend.calls)
			require.NotContains(subtest, fixture.output.String(), "Changes committed and pushed")
		})
	}
}

func TestCommitCycleSkipsSync(testInstance *testing.T) {
	fixture := newControllerFixture(testInstance, reconcile.Options{}, dirtyBackend(), &scriptedPrompter{yesNoAnswers: []bool{true}})

	outcome, cycleError := fixture.controller.Commit(context.Background())
	require.NoError(testInstance, cycleError)
	require.Equal(testInstance, reconcile.OutcomeCommitted, outcome)
	require.Zero(testInstance, fixture.synchronizer.syncCalls)
	require.Equal(testInstance, []string{"stage", "commit", "push"}, fixture.backend.calls)
	require.Equal(testInstance, []reconcile.State{
		reconcile.StateStart, reconcile.StateInspecting, reconcile.StateReviewing, reconcile.StateCommitting, reconcile.StateEnd,
	}, fixture.controller.History())
}

func TestRollbackCycle(testInstance *testing.T) {
	testCases := []struct {
		name            string
		backend         func() *fakeBackend
		selections      []prompt.Selection
		expectedOutcome reconcile.Outcome
		expectedReverts []changeset.Entry
	}{
		{
			name: "clean_mirror",
			backend: func() *fakeBackend {
				return &fakeBackend{}
			},
			expectedOutcome: reconcile.OutcomeClean,
		},
		{
			name:            "empty_selection_reverts_everything",
			backend:         dirtyBackend,
			selections:      []prompt.Selection{{Indexes: []int{0, 1, 2}}},
			expectedOutcome: reconcile.OutcomeRolledBack,
			expectedReverts: []changeset.Entry{
				{Status: changeset.StatusModified, Path: testModifiedPathConstant},
				{Status: changeset.StatusModified, Path: testSecondPathConstant},
				{Status: changeset.StatusUntracked, Path: testUntrackedPathConstant},
			},
		},
		{
			name:            "cancellation",
			backend:         dirtyBackend,
			expectedOutcome: reconcile.OutcomeRollbackCancelled,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			fixture := newControllerFixture(subtest, reconcile.Options{}, testCase.backend(), &scriptedPrompter{selections: testCase.selections})

			outcome, cycleError := fixture.controller.Rollback(context.Background())
			require.NoError(subtest, cycleError)
			require.Equal(subtest, testCase.expectedOutcome, outcome)
			require.Equal(subtest, testCase.expectedReverts, fixture.synchronizer.revertedEntries)
			require.Zero(subtest, fixture.synchronizer.syncCalls)
			require.Empty(subtest, fixture.prompter.questions)
		})
	}
}

func TestSelectionBeyondSnapshotIsReported(testInstance *testing.T) {
	fixture := newControllerFixture(testInstance, reconcile.Options{}, dirtyBackend(), &scriptedPrompter{
		selections: []prompt.Selection{{Indexes: []int{3}}},
	})

	_, cycleError := fixture.controller.Rollback(context.Background())
	require.ErrorIs(testInstance, cycleError, changeset.ErrIndexOutOfRange)
	require.Zero(testInstance, fixture.synchronizer.revertCalls)
	require.NotContains(testInstance, fixture.backend.calls, "discard")
}

func TestStateAndOutcomeNames(testInstance *testing.T) {
	require.Equal(testInstance, "rolling-back", reconcile.StateRollingBack.String())
	require.Equal(testInstance, "state(42)", reconcile.State(42).String())
	require.Equal(testInstance, "rollback-cancelled", reconcile.OutcomeRollbackCancelled.String())
}
