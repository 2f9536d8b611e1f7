package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gikkon/internal/dependencies"
	"github.com/temirov/gikkon/internal/filesync"
	"github.com/temirov/gikkon/internal/settings"
	"github.com/temirov/gikkon/internal/ui"
	flagutils "github.com/temirov/gikkon/internal/utils/flags"
)

const (
	addUseConstant                    = "add <file>"
	addShortDescriptionConstant       = "Place a live file under mirror control"
	addLongDescriptionConstant        = "add copies a live file into its mirror location, creating parent directories in the mirror as needed. The file is committed by the next backup or commit."
	listUseConstant                   = "list"
	listShortDescriptionConstant      = "List the files tracked by the mirror"
	listLongDescriptionConstant       = "list prints the live path of every tracked file that exists on the system. With --repo-paths it prints mirror paths instead, and --show-all additionally includes files whose live copy is missing."
	diffUseConstant                   = "diff"
	diffShortDescriptionConstant      = "Preview live changes a backup would copy into the mirror"
	diffLongDescriptionConstant       = "diff compares every tracked file with its live copy and prints a line diff from the mirror content to the live content without modifying either tree."
	showAllFlagNameConstant           = "show-all"
	showAllFlagShorthandConstant      = "a"
	showAllFlagUsageConstant          = "Include files whose live copy is missing (requires --repo-paths)"
	repoPathsFlagNameConstant         = "repo-paths"
	repoPathsFlagShorthandConstant    = "r"
	repoPathsFlagUsageConstant        = "Print mirror paths instead of live paths"
	formatFlagNameConstant            = "format"
	formatFlagUsageConstant           = "Output format"
	addFailureTemplateConstant        = "add %s: %w"
	listFailureTemplateConstant       = "list tracked files: %w"
	diffFailureTemplateConstant       = "preview drift: %w"
	unsupportedFormatTemplateConstant = "%w: %q"
	unsupportedFormatMessageConstant  = "unsupported list format"
	jsonIndentConstant                = "  "
	lineTemplateConstant              = "%s\n"
	fileAddedMessageConstant          = "file placed under mirror control"
	logFieldLivePathConstant          = "live_path"
	logFieldMirrorPathConstant        = "mirror_path"
)

// ErrUnsupportedFormat indicates a list format other than text, yaml, or json.
var ErrUnsupportedFormat = errors.New(unsupportedFormatMessageConstant)

var listFormats = []string{FormatText, FormatYAML, FormatJSON}

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the add, list, and diff commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	GeneralConfigurationProvider func() settings.GeneralConfiguration
	ListConfigurationProvider    func() ListConfiguration
	Overrides                    dependencies.Overrides
}

type listFlagValues struct {
	showAll   bool
	repoPaths bool
	format    string
}

// BuildAdd constructs the add command.
func (builder *CommandBuilder) BuildAdd() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   addUseConstant,
		Short: addShortDescriptionConstant,
		Long:  addLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runAdd,
	}

	return command, nil
}

// BuildList constructs the list command.
func (builder *CommandBuilder) BuildList() (*cobra.Command, error) {
	flagValues := &listFlagValues{}
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runList(command, flagValues)
		},
	}

	flagutils.AddToggleFlag(command.Flags(), &flagValues.showAll, showAllFlagNameConstant, showAllFlagShorthandConstant, false, showAllFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &flagValues.repoPaths, repoPathsFlagNameConstant, repoPathsFlagShorthandConstant, false, repoPathsFlagUsageConstant)
	flagutils.AddChoiceFlag(command.Flags(), &flagValues.format, formatFlagNameConstant, FormatText, listFormats, formatFlagUsageConstant)

	return command, nil
}

// BuildDiff constructs the diff command.
func (builder *CommandBuilder) BuildDiff() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   diffUseConstant,
		Short: diffShortDescriptionConstant,
		Long:  diffLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runDiff,
	}

	return command, nil
}

func (builder *CommandBuilder) runAdd(command *cobra.Command, arguments []string) error {
	workspace, workspaceError := builder.buildWorkspace(command)
	if workspaceError != nil {
		return workspaceError
	}

	result, addError := workspace.Engine.Add(command.Context(), arguments[0])
	if addError != nil {
		return fmt.Errorf(addFailureTemplateConstant, arguments[0], addError)
	}

	workspace.Logger.Info(
		fileAddedMessageConstant,
		zap.String(logFieldLivePathConstant, result.LivePath),
		zap.String(logFieldMirrorPathConstant, result.MirrorPath),
	)
	return nil
}

func (builder *CommandBuilder) runList(command *cobra.Command, flagValues *listFlagValues) error {
	configuration := builder.resolveListConfiguration()
	if command.Flags().Changed(showAllFlagNameConstant) {
		configuration.ShowAll = flagValues.showAll
	}
	if command.Flags().Changed(repoPathsFlagNameConstant) {
		configuration.RepoPaths = flagValues.repoPaths
	}
	if command.Flags().Changed(formatFlagNameConstant) {
		configuration.Format = flagValues.format
	}

	workspace, workspaceError := builder.buildWorkspace(command)
	if workspaceError != nil {
		return workspaceError
	}

	listOptions := filesync.ListOptions{ShowAll: configuration.ShowAll, RepoPaths: configuration.RepoPaths}
	trackedFiles, listError := workspace.Engine.List(listOptions)
	if listError != nil {
		return fmt.Errorf(listFailureTemplateConstant, listError)
	}

	return writeTrackedFiles(workspace.Output, trackedFiles, listOptions, configuration.Format)
}

func (builder *CommandBuilder) runDiff(command *cobra.Command, arguments []string) error {
	workspace, workspaceError := builder.buildWorkspace(command)
	if workspaceError != nil {
		return workspaceError
	}

	drifts, driftError := workspace.Engine.Drift(command.Context())
	if driftError != nil {
		return fmt.Errorf(diffFailureTemplateConstant, driftError)
	}

	_, writeError := io.WriteString(workspace.Output, ui.NewPresenter(workspace.Output).RenderDrift(drifts))
	return writeError
}

func writeTrackedFiles(output io.Writer, trackedFiles []filesync.TrackedFile, listOptions filesync.ListOptions, format string) error {
	switch format {
	case FormatText:
		for _, trackedFile := range trackedFiles {
			if _, writeError := fmt.Fprintf(output, lineTemplateConstant, trackedFile.DisplayPath(listOptions)); writeError != nil {
				return writeError
			}
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(output)
		if encodeError := encoder.Encode(trackedFiles); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	case FormatJSON:
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", jsonIndentConstant)
		return encoder.Encode(trackedFiles)
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedFormat, format)
	}
}

func (builder *CommandBuilder) buildWorkspace(command *cobra.Command) (dependencies.Workspace, error) {
	overrides := builder.Overrides
	if overrides.Input == nil {
		overrides.Input = command.InOrStdin()
	}
	if overrides.Output == nil {
		overrides.Output = command.OutOrStdout()
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	return dependencies.BuildWorkspace(
		dependencies.WorkspaceOptions{
			General:              builder.resolveGeneralConfiguration(),
			Logger:               builder.resolveLogger(),
			HumanReadableLogging: humanReadableLogging,
		},
		overrides,
	)
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

func (builder *CommandBuilder) resolveGeneralConfiguration() settings.GeneralConfiguration {
	if builder.GeneralConfigurationProvider == nil {
		return settings.DefaultGeneralConfiguration()
	}
	return builder.GeneralConfigurationProvider()
}

func (builder *CommandBuilder) resolveListConfiguration() ListConfiguration {
	if builder.ListConfigurationProvider == nil {
		return DefaultListConfiguration()
	}
	provided := builder.ListConfigurationProvider()
	return provided.sanitize()
}
