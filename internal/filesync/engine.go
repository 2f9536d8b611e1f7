package filesync

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/gikkon/internal/elevation"
	"github.com/temirov/gikkon/internal/pathmap"
)

const (
	gitDirectoryNameConstant                = ".git"
	gitIgnoreFileNameConstant               = ".gitignore"
	mirrorRootRequiredMessageConstant       = "mirror root must be an absolute path"
	fileSystemRequiredMessageConstant       = "filesystem not configured"
	elevatorRequiredMessageConstant         = "elevator not configured"
	elevationFailedTemplateConstant         = "%s %s failed with elevated privileges: %s"
	elevationFailedNoDetailTemplateConstant = "%s %s failed with elevated privileges"
)

// ExecutionMode selects between performing file operations and describing them.
type ExecutionMode int

// Supported execution modes.
const (
	ModeLive ExecutionMode = iota
	ModeDryRun
)

// ErrMirrorRootInvalid indicates the engine was configured without an absolute mirror root.
var ErrMirrorRootInvalid = errors.New(mirrorRootRequiredMessageConstant)

// ErrFileSystemNotConfigured indicates the engine was configured without a filesystem.
var ErrFileSystemNotConfigured = errors.New(fileSystemRequiredMessageConstant)

// ErrElevatorNotConfigured indicates the engine was configured without an elevator.
var ErrElevatorNotConfigured = errors.New(elevatorRequiredMessageConstant)

// ElevationFailedError reports a privileged retry that did not succeed. It aborts the running operation.
type ElevationFailedError struct {
	Operation  string
	Target     string
	Diagnostic string
}

// Error describes the failed privileged operation with the escalation command's diagnostic.
func (failure *ElevationFailedError) Error() string {
	if len(strings.TrimSpace(failure.Diagnostic)) == 0 {
		return fmt.Sprintf(elevationFailedNoDetailTemplateConstant, failure.Operation, failure.Target)
	}
	return fmt.Sprintf(elevationFailedTemplateConstant, failure.Operation, failure.Target, failure.Diagnostic)
}

// Confirmer answers yes/no questions.
type Confirmer interface {
	AskYesNo(question string, defaultAnswer bool) (bool, error)
}

// PathResolver converts an operator-supplied path into its canonical absolute form.
type PathResolver func(candidatePath string) (string, error)

// Options configures an Engine.
type Options struct {
	MirrorRoot string
	Mode       ExecutionMode
}

// Dependencies supplies the collaborators used by Engine.
type Dependencies struct {
	FileSystem   afero.Fs
	Mapper       pathmap.Mapper
	Confirmer    Confirmer
	Elevator     elevation.Elevator
	PathResolver PathResolver
	Logger       *zap.Logger
	Output       io.Writer
}

// Engine synchronizes files between the mirror tree and their live locations.
type Engine struct {
	mirrorRoot   string
	mode         ExecutionMode
	fileSystem   afero.Fs
	mapper       pathmap.Mapper
	confirmer    Confirmer
	elevator     elevation.Elevator
	pathResolver PathResolver
	logger       *zap.Logger
	output       io.Writer
}

// NewEngine validates the configuration and constructs an Engine.
func NewEngine(options Options, dependencies Dependencies) (*Engine, error) {
	trimmedRoot := strings.TrimSpace(options.MirrorRoot)
	if len(trimmedRoot) == 0 || !filepath.IsAbs(trimmedRoot) {
		return nil, fmt.Errorf("%w: %q", ErrMirrorRootInvalid, options.MirrorRoot)
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Elevator == nil {
		return nil, ErrElevatorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	pathResolver := dependencies.PathResolver
	if pathResolver == nil {
		pathResolver = ResolveCanonicalPath
	}

	return &Engine{
		mirrorRoot:   filepath.Clean(trimmedRoot),
		mode:         options.Mode,
		fileSystem:   dependencies.FileSystem,
		mapper:       dependencies.Mapper,
		confirmer:    dependencies.Confirmer,
		elevator:     dependencies.Elevator,
		pathResolver: pathResolver,
		logger:       logger,
		output:       output,
	}, nil
}

// MirrorRoot returns the absolute mirror repository root.
func (engine *Engine) MirrorRoot() string {
	return engine.mirrorRoot
}

// ResolveCanonicalPath returns the absolute path with symbolic links resolved on the OS filesystem.
func ResolveCanonicalPath(candidatePath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(candidatePath)
	if absoluteError != nil {
		return "", absoluteError
	}
	return filepath.EvalSymlinks(absolutePath)
}

func (engine *Engine) mirrorLocation(mirrorPath string) string {
	return filepath.Join(engine.mirrorRoot, filepath.FromSlash(mirrorPath))
}
