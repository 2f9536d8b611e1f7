// Package elevation performs file copies and deletions through a privilege
// escalation command such as sudo when the current user lacks permission.
package elevation

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gikkon/internal/execshell"
)

const (
	// DefaultCommand is the escalation command used when none is configured.
	DefaultCommand = "sudo"

	copySubcommandConstant              = "cp"
	removeSubcommandConstant            = "rm"
	forceFlagConstant                   = "-f"
	endOfOptionsConstant                = "--"
	logFieldSourceConstant              = "source"
	logFieldTargetConstant              = "target"
	logFieldDiagnosticConstant          = "diagnostic"
	elevatedCopyFailedMessageConstant   = "elevated copy failed"
	elevatedRemoveFailedMessageConstant = "elevated delete failed"
	executorMissingMessageConstant      = "elevation executor not configured"
)

// ErrExecutorNotConfigured indicates the elevator was built without a command executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// Result reports the outcome of an elevated operation.
type Result struct {
	Succeeded  bool
	Diagnostic string
}

// Elevator performs privileged file operations.
type Elevator interface {
	CopyWithElevation(executionContext context.Context, sourcePath string, destinationPath string) Result
	DeleteWithElevation(executionContext context.Context, targetPath string) Result
}

// CommandExecutor runs an arbitrary command.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// CommandElevator prefixes cp and rm with the configured escalation command.
type CommandElevator struct {
	executor    CommandExecutor
	commandName execshell.CommandName
	logger      *zap.Logger
}

// NewCommandElevator constructs an elevator; an empty command name selects DefaultCommand.
func NewCommandElevator(executor CommandExecutor, commandName string, logger *zap.Logger) (*CommandElevator, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	trimmedCommandName := strings.TrimSpace(commandName)
	if len(trimmedCommandName) == 0 {
		trimmedCommandName = DefaultCommand
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandElevator{executor: executor, commandName: execshell.CommandName(trimmedCommandName), logger: logger}, nil
}

// CopyWithElevation copies sourcePath over destinationPath with elevated rights.
func (elevator *CommandElevator) CopyWithElevation(executionContext context.Context, sourcePath string, destinationPath string) Result {
	result := elevator.run(executionContext, copySubcommandConstant, forceFlagConstant, endOfOptionsConstant, sourcePath, destinationPath)
	if !result.Succeeded {
		elevator.logger.Warn(elevatedCopyFailedMessageConstant,
			zap.String(logFieldSourceConstant, sourcePath),
			zap.String(logFieldTargetConstant, destinationPath),
			zap.String(logFieldDiagnosticConstant, result.Diagnostic),
		)
	}
	return result
}

// DeleteWithElevation removes targetPath with elevated rights.
func (elevator *CommandElevator) DeleteWithElevation(executionContext context.Context, targetPath string) Result {
	result := elevator.run(executionContext, removeSubcommandConstant, forceFlagConstant, endOfOptionsConstant, targetPath)
	if !result.Succeeded {
		elevator.logger.Warn(elevatedRemoveFailedMessageConstant,
			zap.String(logFieldTargetConstant, targetPath),
			zap.String(logFieldDiagnosticConstant, result.Diagnostic),
		)
	}
	return result
}

func (elevator *CommandElevator) run(executionContext context.Context, arguments ...string) Result {
	command := execshell.ShellCommand{
		Name:    elevator.commandName,
		Details: execshell.CommandDetails{Arguments: arguments},
	}

	_, executionError := elevator.executor.Execute(executionContext, command)
	if executionError == nil {
		return Result{Succeeded: true}
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		diagnostic := strings.TrimSpace(failedError.Result.StandardError)
		if len(diagnostic) > 0 {
			return Result{Diagnostic: diagnostic}
		}
	}
	return Result{Diagnostic: executionError.Error()}
}
