package reconcile

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gikkon/internal/dependencies"
	"github.com/temirov/gikkon/internal/settings"
	"github.com/temirov/gikkon/internal/ui"
	flagutils "github.com/temirov/gikkon/internal/utils/flags"
)

const (
	backupUseConstant                = "backup"
	backupShortDescriptionConstant   = "Copy changed live files into the mirror, review, commit, and push"
	backupLongDescriptionConstant    = "backup refreshes every tracked file from its live location, shows the resulting change set, and commits and pushes it once accepted. Declined changes can be reverted file by file."
	rollbackUseConstant              = "rollback"
	rollbackShortDescriptionConstant = "Restore live files from the committed mirror content"
	rollbackLongDescriptionConstant  = "rollback lists the pending mirror changes, reverts the selected files on the live system, and discards the working changes in the mirror."
	commitUseConstant                = "commit"
	commitShortDescriptionConstant   = "Commit and push pending mirror changes without syncing"
	commitLongDescriptionConstant    = "commit reviews the changes already present in the mirror and commits and pushes them once accepted."
	removeFlagNameConstant           = "remove"
	removeFlagShorthandConstant      = "r"
	removeFlagUsageConstant          = "Offer to delete mirror files whose live file no longer exists"
	askRollbackFlagNameConstant      = "ask-rollback"
	askRollbackFlagUsageConstant     = "Offer to revert live files when the change set is declined"
	commandFailureTemplateConstant   = "%s failed: %w"
	cycleFinishedMessageConstant     = "reconciliation finished"
	logFieldCommandConstant          = "command"
	logFieldOutcomeConstant          = "outcome"
	logFieldMirrorConstant           = "mirror"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the backup, rollback, and commit commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	GeneralConfigurationProvider func() settings.GeneralConfiguration
	ConfigurationProvider        func() CommandConfiguration
	Overrides                    dependencies.Overrides
}

type backupFlagValues struct {
	remove      bool
	askRollback bool
}

type cycleRunner func(controller *Controller, command *cobra.Command) (Outcome, error)

// BuildBackup constructs the backup command.
func (builder *CommandBuilder) BuildBackup() (*cobra.Command, error) {
	flagValues := &backupFlagValues{}
	command := &cobra.Command{
		Use:   backupUseConstant,
		Short: backupShortDescriptionConstant,
		Long:  backupLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration := builder.resolveConfiguration()
			if command.Flags().Changed(removeFlagNameConstant) {
				configuration.Remove = flagValues.remove
			}
			if command.Flags().Changed(askRollbackFlagNameConstant) {
				configuration.AskRollback = flagValues.askRollback
			}

			cycleOptions := Options{DeleteNotPresent: configuration.Remove, AskRollback: configuration.AskRollback}
			return builder.run(command, cycleOptions, func(controller *Controller, command *cobra.Command) (Outcome, error) {
				return controller.Backup(command.Context())
			})
		},
	}

	flagutils.AddToggleFlag(command.Flags(), &flagValues.remove, removeFlagNameConstant, removeFlagShorthandConstant, false, removeFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &flagValues.askRollback, askRollbackFlagNameConstant, "", false, askRollbackFlagUsageConstant)

	return command, nil
}

// BuildRollback constructs the rollback command.
func (builder *CommandBuilder) BuildRollback() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   rollbackUseConstant,
		Short: rollbackShortDescriptionConstant,
		Long:  rollbackLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, Options{}, func(controller *Controller, command *cobra.Command) (Outcome, error) {
				return controller.Rollback(command.Context())
			})
		},
	}

	return command, nil
}

// BuildCommit constructs the commit command.
func (builder *CommandBuilder) BuildCommit() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commitUseConstant,
		Short: commitShortDescriptionConstant,
		Long:  commitLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, Options{}, func(controller *Controller, command *cobra.Command) (Outcome, error) {
				return controller.Commit(command.Context())
			})
		},
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, cycleOptions Options, runCycle cycleRunner) error {
	logger := builder.resolveLogger()

	overrides := builder.Overrides
	if overrides.Input == nil {
		overrides.Input = command.InOrStdin()
	}
	if overrides.Output == nil {
		overrides.Output = command.OutOrStdout()
	}

	workspace, workspaceError := dependencies.BuildWorkspace(
		dependencies.WorkspaceOptions{
			General:              builder.resolveGeneralConfiguration(),
			Logger:               logger,
			HumanReadableLogging: builder.humanReadableLogging(),
		},
		overrides,
	)
	if workspaceError != nil {
		return workspaceError
	}

	versionControl, backendError := workspace.Backend()
	if backendError != nil {
		return backendError
	}

	cycleOptions.Remote = workspace.General.Remote
	cycleOptions.Branch = workspace.General.Branch
	cycleOptions.CommitMessage = workspace.General.CommitMessage
	cycleOptions.Mode = workspace.Mode

	controller, controllerError := NewController(cycleOptions, Dependencies{
		Backend:      versionControl,
		Synchronizer: workspace.Engine,
		Prompter:     workspace.Prompter,
		Renderer:     ui.NewPresenter(workspace.Output),
		Logger:       logger,
		Output:       workspace.Output,
	})
	if controllerError != nil {
		return controllerError
	}

	outcome, cycleError := runCycle(controller, command)
	if cycleError != nil {
		return fmt.Errorf(commandFailureTemplateConstant, command.Name(), cycleError)
	}

	logger.Debug(
		cycleFinishedMessageConstant,
		zap.String(logFieldCommandConstant, command.Name()),
		zap.String(logFieldMirrorConstant, workspace.MirrorRoot),
		zap.Stringer(logFieldOutcomeConstant, outcome),
	)
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveGeneralConfiguration() settings.GeneralConfiguration {
	if builder.GeneralConfigurationProvider == nil {
		return settings.DefaultGeneralConfiguration()
	}
	return builder.GeneralConfigurationProvider()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}
