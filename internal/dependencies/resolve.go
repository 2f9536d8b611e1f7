package dependencies

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/gikkon/internal/backend"
	"github.com/temirov/gikkon/internal/backend/gitcli"
	"github.com/temirov/gikkon/internal/backend/gogit"
	"github.com/temirov/gikkon/internal/elevation"
	"github.com/temirov/gikkon/internal/execshell"
	"github.com/temirov/gikkon/internal/pathmap"
	"github.com/temirov/gikkon/internal/prompt"
	"github.com/temirov/gikkon/internal/settings"
	"github.com/temirov/gikkon/internal/ui"
)

const unsupportedBackendTemplateConstant = "%w: %q"

// ShellExecutor runs git and elevation commands.
type ShellExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Prompter asks the operator yes/no, free-text, and selection questions.
type Prompter interface {
	AskYesNo(question string, defaultAnswer bool) (bool, error)
	AskFreeText(question string, defaultAnswer string) (string, error)
	AskSelection(candidates []string) (prompt.Selection, error)
}

// ResolveFileSystem returns the provided filesystem or the OS filesystem.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveShellExecutor returns the provided executor or constructs one backed by os/exec.
// Human-readable logging attaches a console observer that reports every command.
func ResolveShellExecutor(existing ShellExecutor, logger *zap.Logger, humanReadableLogging bool) (ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	if humanReadableLogging {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, ui.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

// ResolveElevator returns the provided elevator or one running commandName through the executor.
func ResolveElevator(existing elevation.Elevator, executor ShellExecutor, commandName string, logger *zap.Logger) (elevation.Elevator, error) {
	if existing != nil {
		return existing, nil
	}
	return elevation.NewCommandElevator(executor, commandName, logger)
}

// ResolvePrompter returns the provided prompter or one reading input and writing output.
func ResolvePrompter(existing Prompter, input io.Reader, output io.Writer) Prompter {
	if existing != nil {
		return existing
	}
	if input == nil {
		input = os.Stdin
	}
	return prompt.NewIOPrompter(input, output)
}

// ResolveMapper returns the provided mapper or one rooted at the current user's home directory.
func ResolveMapper(existing *pathmap.Mapper) (pathmap.Mapper, error) {
	if existing != nil {
		return *existing, nil
	}
	return pathmap.NewMapperFromEnvironment()
}

// ResolveBackend returns the provided backend or constructs the configured kind for the mirror repository.
func ResolveBackend(existing backend.Backend, kind backend.Kind, mirrorRoot string, executor gitcli.GitExecutor, clock clockwork.Clock) (backend.Backend, error) {
	if existing != nil {
		return existing, nil
	}

	switch kind {
	case backend.KindCLI, "":
		return gitcli.New(executor, mirrorRoot)
	case backend.KindLibrary:
		return gogit.New(mirrorRoot, clock)
	default:
		return nil, fmt.Errorf(unsupportedBackendTemplateConstant, settings.ErrUnsupportedBackend, kind)
	}
}
