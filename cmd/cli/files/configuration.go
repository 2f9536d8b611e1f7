package files

import "strings"

const (
	listConfigurationKeyConstant = "list"
	showAllKeyConstant           = "show_all"
	repoPathsKeyConstant         = "repo_paths"
	formatKeyConstant            = "format"
	configurationKeySeparator    = "."

	// FormatText prints one path per line.
	FormatText = "text"
	// FormatYAML prints tracked file records as a YAML sequence.
	FormatYAML = "yaml"
	// FormatJSON prints tracked file records as a JSON array.
	FormatJSON = "json"
)

// ListConfiguration captures the [list] configuration section.
type ListConfiguration struct {
	ShowAll   bool   `mapstructure:"show_all"`
	RepoPaths bool   `mapstructure:"repo_paths"`
	Format    string `mapstructure:"format"`
}

// DefaultListConfiguration provides the baseline [list] values.
func DefaultListConfiguration() ListConfiguration {
	return ListConfiguration{
		ShowAll:   false,
		RepoPaths: false,
		Format:    FormatText,
	}
}

// DefaultConfigurationValues returns the viper defaults for the [list] section.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultListConfiguration()
	return map[string]any{
		listKey(showAllKeyConstant):   defaults.ShowAll,
		listKey(repoPathsKeyConstant): defaults.RepoPaths,
		listKey(formatKeyConstant):    defaults.Format,
	}
}

func (configuration ListConfiguration) sanitize() ListConfiguration {
	sanitized := configuration
	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	if len(sanitized.Format) == 0 {
		sanitized.Format = FormatText
	}
	return sanitized
}

func listKey(key string) string {
	return listConfigurationKeyConstant + configurationKeySeparator + key
}
