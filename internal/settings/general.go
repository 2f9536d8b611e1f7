package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/gikkon/internal/backend"
	"github.com/temirov/gikkon/internal/elevation"
	pathutils "github.com/temirov/gikkon/internal/utils/path"
)

const (
	generalConfigurationKeyConstant         = "general"
	pathKeyConstant                         = "path"
	dryRunKeyConstant                       = "dry_run"
	remoteKeyConstant                       = "remote"
	branchKeyConstant                       = "branch"
	backendKeyConstant                      = "backend"
	elevationCommandKeyConstant             = "elevation_command"
	commitMessageKeyConstant                = "commit_message"
	keySeparatorConstant                    = "."
	defaultMirrorPathConstant               = "~/.config/gikkon/config"
	defaultRemoteConstant                   = "origin"
	defaultBranchConstant                   = "main"
	defaultCommitMessageConstant            = "something changed"
	mirrorPathRequiredMessageConstant       = "mirror path is not configured"
	mirrorPathNotFoundMessageConstant       = "mirror path does not exist or is not a directory"
	unsupportedBackendMessageConstant       = "unsupported version control backend"
	configurationErrorTemplateConstant      = "configuration %s: %v"
	configurationErrorValueTemplateConstant = "configuration %s=%q: %v"
	configurationErrorHintTemplateConstant  = "%s (%s)"
	mirrorPathHintConstant                  = "set general.path in the configuration file, GIKKON_GENERAL_PATH, or pass --path"
	mirrorPathMissingHintConstant           = "clone the mirror repository there or point --path at an existing clone"
)

// ErrMirrorPathRequired indicates no mirror repository path was configured.
var ErrMirrorPathRequired = errors.New(mirrorPathRequiredMessageConstant)

// ErrMirrorPathNotFound indicates the configured mirror repository path is missing.
var ErrMirrorPathNotFound = errors.New(mirrorPathNotFoundMessageConstant)

// ErrUnsupportedBackend indicates an unknown backend kind.
var ErrUnsupportedBackend = errors.New(unsupportedBackendMessageConstant)

// ConfigurationError reports an invalid configuration key together with a remediation hint.
type ConfigurationError struct {
	Key   string
	Value string
	Hint  string
	Err   error
}

// Error describes the offending key, its value when known, and the hint.
func (configurationError ConfigurationError) Error() string {
	var message string
	if len(configurationError.Value) == 0 {
		message = fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Key, configurationError.Err)
	} else {
		message = fmt.Sprintf(configurationErrorValueTemplateConstant, configurationError.Key, configurationError.Value, configurationError.Err)
	}
	if len(configurationError.Hint) == 0 {
		return message
	}
	return fmt.Sprintf(configurationErrorHintTemplateConstant, message, configurationError.Hint)
}

// Unwrap exposes the underlying sentinel.
func (configurationError ConfigurationError) Unwrap() error {
	return configurationError.Err
}

// ExpandedPath is a path whose leading ~ is expanded while configuration is decoded.
type ExpandedPath string

// GeneralConfiguration captures the [general] configuration section.
type GeneralConfiguration struct {
	Path             ExpandedPath `mapstructure:"path"`
	DryRun           bool         `mapstructure:"dry_run"`
	Remote           string       `mapstructure:"remote"`
	Branch           string       `mapstructure:"branch"`
	Backend          backend.Kind `mapstructure:"backend"`
	ElevationCommand string       `mapstructure:"elevation_command"`
	CommitMessage    string       `mapstructure:"commit_message"`
}

// DefaultGeneralConfiguration returns the baseline [general] values.
func DefaultGeneralConfiguration() GeneralConfiguration {
	return GeneralConfiguration{
		Path:             defaultMirrorPathConstant,
		DryRun:           false,
		Remote:           defaultRemoteConstant,
		Branch:           defaultBranchConstant,
		Backend:          backend.KindCLI,
		ElevationCommand: elevation.DefaultCommand,
		CommitMessage:    defaultCommitMessageConstant,
	}
}

// DefaultConfigurationValues returns the viper defaults for the [general] section.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultGeneralConfiguration()
	return map[string]any{
		generalKey(pathKeyConstant):             string(defaults.Path),
		generalKey(dryRunKeyConstant):           defaults.DryRun,
		generalKey(remoteKeyConstant):           defaults.Remote,
		generalKey(branchKeyConstant):           defaults.Branch,
		generalKey(backendKeyConstant):          string(defaults.Backend),
		generalKey(elevationCommandKeyConstant): defaults.ElevationCommand,
		generalKey(commitMessageKeyConstant):    defaults.CommitMessage,
	}
}

// Sanitize trims values and restores defaults for blank entries.
func (configuration GeneralConfiguration) Sanitize() GeneralConfiguration {
	defaults := DefaultGeneralConfiguration()
	sanitized := configuration

	sanitized.Path = ExpandedPath(strings.TrimSpace(string(configuration.Path)))
	sanitized.Remote = trimmedOrDefault(configuration.Remote, defaults.Remote)
	sanitized.Branch = trimmedOrDefault(configuration.Branch, defaults.Branch)
	sanitized.Backend = backend.Kind(trimmedOrDefault(string(configuration.Backend), string(defaults.Backend)))
	sanitized.ElevationCommand = trimmedOrDefault(configuration.ElevationCommand, defaults.ElevationCommand)
	sanitized.CommitMessage = trimmedOrDefault(configuration.CommitMessage, defaults.CommitMessage)

	return sanitized
}

// ResolveMirrorPath expands and validates the mirror path, returning its absolute form.
func (configuration GeneralConfiguration) ResolveMirrorPath(fileSystem afero.Fs, expander *pathutils.HomeExpander) (string, error) {
	rawPath := strings.TrimSpace(string(configuration.Path))
	if len(rawPath) == 0 {
		return "", ConfigurationError{Key: generalKey(pathKeyConstant), Hint: mirrorPathHintConstant, Err: ErrMirrorPathRequired}
	}

	absolutePath, absoluteError := expander.ExpandAbsolute(rawPath)
	if absoluteError != nil {
		return "", ConfigurationError{Key: generalKey(pathKeyConstant), Value: rawPath, Err: absoluteError}
	}

	isDirectory, statError := afero.IsDir(fileSystem, absolutePath)
	if statError != nil || !isDirectory {
		return "", ConfigurationError{
			Key:   generalKey(pathKeyConstant),
			Value: absolutePath,
			Hint:  mirrorPathMissingHintConstant,
			Err:   ErrMirrorPathNotFound,
		}
	}
	return absolutePath, nil
}

func generalKey(key string) string {
	return generalConfigurationKeyConstant + keySeparatorConstant + key
}

func trimmedOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
