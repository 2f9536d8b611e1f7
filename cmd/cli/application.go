package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gikkon/cmd/cli/files"
	"github.com/temirov/gikkon/internal/dependencies"
	"github.com/temirov/gikkon/internal/reconcile"
	"github.com/temirov/gikkon/internal/settings"
	"github.com/temirov/gikkon/internal/utils"
	flagutils "github.com/temirov/gikkon/internal/utils/flags"
	pathutils "github.com/temirov/gikkon/internal/utils/path"
)

const (
	applicationNameConstant                 = "gikkon"
	applicationShortDescriptionConstant     = "Keep configuration files in sync with a git mirror repository"
	applicationLongDescriptionConstant      = "gikkon mirrors configuration files from the live system into a git repository, reviews the changes, and commits and pushes them. Declined changes can be rolled back onto the live system."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a TOML configuration file."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "GIKKON"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "toml"
	configurationSearchPathConstant         = "~/.config/gikkon"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationMirrorFieldConstant        = "mirror_path"
	configurationBackendFieldConstant       = "backend"
	configurationDryRunFieldConstant        = "dry_run"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandDebugMessageConstant         = "gikkon invoked without a command"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	General settings.GeneralConfiguration  `mapstructure:"general"`
	Backup  reconcile.CommandConfiguration `mapstructure:"backup"`
	List    files.ListConfiguration        `mapstructure:"list"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	homeExpander          *pathutils.HomeExpander
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	executionFlags        *flagutils.ExecutionFlagValues
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return newApplication(dependencies.Overrides{})
}

func newApplication(overrides dependencies.Overrides) *Application {
	homeExpander := overrides.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{homeExpander.Expand(configurationSearchPathConstant)},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.SetDecodeHooks(
		settings.ExpandedPathDecodeHook(homeExpander),
		settings.BackendKindDecodeHook(),
	)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		homeExpander:        homeExpander,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	application.executionFlags = flagutils.BindExecutionFlags(cobraCommand, flagutils.ExecutionFlagValues{})

	reconcileBuilder := reconcile.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		GeneralConfigurationProvider: func() settings.GeneralConfiguration {
			return application.configuration.General
		},
		ConfigurationProvider: func() reconcile.CommandConfiguration {
			return application.configuration.Backup
		},
		Overrides: overrides,
	}
	reconcileBuilders := []func() (*cobra.Command, error){
		reconcileBuilder.BuildBackup,
		reconcileBuilder.BuildRollback,
		reconcileBuilder.BuildCommit,
	}

	filesBuilder := files.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		GeneralConfigurationProvider: func() settings.GeneralConfiguration {
			return application.configuration.General
		},
		ListConfigurationProvider: func() files.ListConfiguration {
			return application.configuration.List
		},
		Overrides: overrides,
	}
	filesBuilders := []func() (*cobra.Command, error){
		filesBuilder.BuildAdd,
		filesBuilder.BuildList,
		filesBuilder.BuildDiff,
	}

	for _, build := range append(reconcileBuilders, filesBuilders...) {
		subcommand, buildError := build()
		if buildError == nil {
			cobraCommand.AddCommand(subcommand)
		}
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy with the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy with explicit arguments.
// Toggle flags followed by a separate yes/no literal are folded into --flag=value form first.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(flagutils.NormalizeToggleArguments(arguments))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for _, sectionDefaults := range []map[string]any{
		settings.DefaultConfigurationValues(),
		reconcile.DefaultConfigurationValues(),
		files.DefaultConfigurationValues(),
	} {
		for configurationKey, configurationValue := range sectionDefaults {
			defaultValues[configurationKey] = configurationValue
		}
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, flagutils.DryRunFlagName) {
		application.configuration.General.DryRun = application.executionFlags.DryRun
	}

	if application.persistentFlagChanged(command, flagutils.MirrorPathFlagName) {
		application.configuration.General.Path = settings.ExpandedPath(application.homeExpander.Expand(application.executionFlags.MirrorPath))
	}

	application.configuration.General = application.configuration.General.Sanitize()

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(normalizeLoggingValue(application.configuration.Common.LogLevel)),
		utils.LogFormat(normalizeLoggingValue(application.configuration.Common.LogFormat)),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationMirrorFieldConstant, string(application.configuration.General.Path)),
		zap.String(configurationBackendFieldConstant, string(application.configuration.General.Backend)),
		zap.Bool(configurationDryRunFieldConstant, application.configuration.General.DryRun),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func normalizeLoggingValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
