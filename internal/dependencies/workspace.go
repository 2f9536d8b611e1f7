package dependencies

import (
	"errors"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/gikkon/internal/backend"
	"github.com/temirov/gikkon/internal/elevation"
	"github.com/temirov/gikkon/internal/filesync"
	"github.com/temirov/gikkon/internal/pathmap"
	"github.com/temirov/gikkon/internal/settings"
	pathutils "github.com/temirov/gikkon/internal/utils/path"
)

const loggerRequiredMessageConstant = "logger must be provided"

// ErrLoggerNotConfigured indicates the workspace was assembled without a logger.
var ErrLoggerNotConfigured = errors.New(loggerRequiredMessageConstant)

// Overrides supplies collaborators that replace the production defaults, primarily in tests.
type Overrides struct {
	FileSystem   afero.Fs
	Executor     ShellExecutor
	Elevator     elevation.Elevator
	Prompter     Prompter
	Mapper       *pathmap.Mapper
	PathResolver filesync.PathResolver
	HomeExpander *pathutils.HomeExpander
	Backend      backend.Backend
	Clock        clockwork.Clock
	Input        io.Reader
	Output       io.Writer
}

// WorkspaceOptions describes the configuration a workspace is assembled from.
type WorkspaceOptions struct {
	General              settings.GeneralConfiguration
	Logger               *zap.Logger
	HumanReadableLogging bool
}

// Workspace holds the resolved collaborators of a single command invocation.
type Workspace struct {
	General    settings.GeneralConfiguration
	MirrorRoot string
	Mode       filesync.ExecutionMode
	Engine     *filesync.Engine
	Prompter   Prompter
	Executor   ShellExecutor
	Logger     *zap.Logger
	Output     io.Writer

	backendOverride backend.Backend
	clock           clockwork.Clock
}

// BuildWorkspace validates the mirror path and wires the file synchronization engine.
func BuildWorkspace(options WorkspaceOptions, overrides Overrides) (Workspace, error) {
	if options.Logger == nil {
		return Workspace{}, ErrLoggerNotConfigured
	}

	general := options.General.Sanitize()
	fileSystem := ResolveFileSystem(overrides.FileSystem)

	expander := overrides.HomeExpander
	if expander == nil {
		expander = pathutils.NewHomeExpander()
	}
	mirrorRoot, mirrorError := general.ResolveMirrorPath(fileSystem, expander)
	if mirrorError != nil {
		return Workspace{}, mirrorError
	}

	mapper, mapperError := ResolveMapper(overrides.Mapper)
	if mapperError != nil {
		return Workspace{}, mapperError
	}

	executor, executorError := ResolveShellExecutor(overrides.Executor, options.Logger, options.HumanReadableLogging)
	if executorError != nil {
		return Workspace{}, executorError
	}

	elevator, elevatorError := ResolveElevator(overrides.Elevator, executor, general.ElevationCommand, options.Logger)
	if elevatorError != nil {
		return Workspace{}, elevatorError
	}

	output := overrides.Output
	if output == nil {
		output = os.Stdout
	}
	prompter := ResolvePrompter(overrides.Prompter, overrides.Input, output)

	mode := filesync.ModeLive
	if general.DryRun {
		mode = filesync.ModeDryRun
	}

	engine, engineError := filesync.NewEngine(
		filesync.Options{MirrorRoot: mirrorRoot, Mode: mode},
		filesync.Dependencies{
			FileSystem:   fileSystem,
			Mapper:       mapper,
			Confirmer:    prompter,
			Elevator:     elevator,
			PathResolver: overrides.PathResolver,
			Logger:       options.Logger,
			Output:       output,
		},
	)
	if engineError != nil {
		return Workspace{}, engineError
	}

	return Workspace{
		General:         general,
		MirrorRoot:      mirrorRoot,
		Mode:            mode,
		Engine:          engine,
		Prompter:        prompter,
		Executor:        executor,
		Logger:          options.Logger,
		Output:          output,
		backendOverride: overrides.Backend,
		clock:           overrides.Clock,
	}, nil
}

// Backend resolves the version control backend selected by the general configuration.
func (workspace Workspace) Backend() (backend.Backend, error) {
	return ResolveBackend(workspace.backendOverride, workspace.General.Backend, workspace.MirrorRoot, workspace.Executor, workspace.clock)
}
