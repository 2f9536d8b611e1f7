// Package flags provides helpers for binding the shared gikkon flags to Cobra commands.
package flags

import "github.com/spf13/cobra"

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagShorthand provides the shorthand for the dry-run flag.
	DryRunFlagShorthand = "d"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Print the file operations and git steps instead of performing them"
	// MirrorPathFlagName exposes the mirror repository path flag name.
	MirrorPathFlagName = "path"
	// MirrorPathFlagShorthand provides the shorthand for the mirror path flag.
	MirrorPathFlagShorthand = "p"
	// MirrorPathFlagUsage describes the mirror path flag purpose.
	MirrorPathFlagUsage = "Path to the git repository holding the mirrored configuration files"
)

// ExecutionFlagValues stores the values bound by BindExecutionFlags.
type ExecutionFlagValues struct {
	DryRun     bool
	MirrorPath string
}

// BindExecutionFlags attaches the dry-run toggle and mirror path flags to the command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionFlagValues) *ExecutionFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	persistentFlagSet := command.PersistentFlags()
	AddToggleFlag(persistentFlagSet, &values.DryRun, DryRunFlagName, DryRunFlagShorthand, defaults.DryRun, DryRunFlagUsage)
	persistentFlagSet.StringVarP(&values.MirrorPath, MirrorPathFlagName, MirrorPathFlagShorthand, defaults.MirrorPath, MirrorPathFlagUsage)

	return &values
}
