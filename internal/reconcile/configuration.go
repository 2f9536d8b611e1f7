package reconcile

const (
	backupConfigurationKeyConstant = "backup"
	removeKeyConstant              = "remove"
	askRollbackKeyConstant         = "ask_rollback"
	configurationKeySeparator      = "."
)

// CommandConfiguration captures the [backup] configuration section.
type CommandConfiguration struct {
	Remove      bool `mapstructure:"remove"`
	AskRollback bool `mapstructure:"ask_rollback"`
}

// DefaultCommandConfiguration provides the baseline [backup] values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Remove:      false,
		AskRollback: false,
	}
}

// DefaultConfigurationValues returns the viper defaults for the [backup] section.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		backupConfigurationKeyConstant + configurationKeySeparator + removeKeyConstant:      defaults.Remove,
		backupConfigurationKeyConstant + configurationKeySeparator + askRollbackKeyConstant: defaults.AskRollback,
	}
}
