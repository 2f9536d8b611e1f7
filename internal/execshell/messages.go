package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	startedMessageTemplateConstant          = "Running %s"
	successMessageTemplateConstant          = "Completed %s"
	failureMessageTemplateConstant          = "%s failed with exit code %d"
	failureDetailMessageTemplateConstant    = "%s failed with exit code %d: %s"
	executionFailureMessageTemplateConstant = "%s could not start: %v"
	workingDirectorySuffixTemplateConstant  = " in %s"
	quotedValueTemplateConstant             = "%q"

	gitRevParseSubcommandConstant    = "rev-parse"
	gitLsRemoteSubcommandConstant    = "ls-remote"
	gitStatusSubcommandConstant      = "status"
	gitResetSubcommandConstant       = "reset"
	gitAddSubcommandConstant         = "add"
	gitCommitSubcommandConstant      = "commit"
	gitPushSubcommandConstant        = "push"
	gitCommitMessageFlagConstant     = "-m"
	elevatedCopySubcommandConstant   = "cp"
	elevatedRemoveSubcommandConstant = "rm"

	revParseDescriptionTemplateConstant       = "resolving local head %s"
	lsRemoteDescriptionTemplateConstant       = "querying %s for %s"
	statusDescriptionConstant                 = "reading mirror status"
	resetDescriptionConstant                  = "discarding mirror working tree changes"
	addDescriptionConstant                    = "staging mirror changes"
	commitDescriptionTemplateConstant         = "committing with message %s"
	pushDescriptionTemplateConstant           = "pushing %s to %s"
	elevatedCopyDescriptionTemplateConstant   = "copying %s to %s with %s"
	elevatedRemoveDescriptionTemplateConstant = "removing %s with %s"
	unknownValueConstant                      = "<unspecified>"
)

// CommandMessageFormatter produces human-readable descriptions of shell commands.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.describe(command))
}

// BuildSuccessMessage describes a command that exited cleanly.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(successMessageTemplateConstant, formatter.describe(command))
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(failureMessageTemplateConstant, formatter.describe(command), result.ExitCode)
	}
	return fmt.Sprintf(failureDetailMessageTemplateConstant, formatter.describe(command), result.ExitCode, trimmedStandardError)
}

// BuildExecutionFailureMessage describes a command that could not be started.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return fmt.Sprintf(executionFailureMessageTemplateConstant, formatter.describe(command), failure)
}

func (formatter CommandMessageFormatter) describe(command ShellCommand) string {
	var description string
	if command.Name == CommandGit {
		description = describeGitCommand(command.Details.Arguments)
	} else {
		description = describeElevatedCommand(command)
	}
	return description + describeWorkingDirectory(command.Details.WorkingDirectory)
}

func describeGitCommand(arguments []string) string {
	subcommand := argumentAtIndex(arguments, 0)
	switch subcommand {
	case gitRevParseSubcommandConstant:
		return fmt.Sprintf(revParseDescriptionTemplateConstant, ensureValue(argumentAtIndex(arguments, 1)))
	case gitLsRemoteSubcommandConstant:
		return fmt.Sprintf(lsRemoteDescriptionTemplateConstant, ensureValue(argumentAtIndex(arguments, 1)), ensureValue(argumentAtIndex(arguments, 2)))
	case gitStatusSubcommandConstant:
		return statusDescriptionConstant
	case gitResetSubcommandConstant:
		return resetDescriptionConstant
	case gitAddSubcommandConstant:
		return addDescriptionConstant
	case gitCommitSubcommandConstant:
		return fmt.Sprintf(commitDescriptionTemplateConstant, fmt.Sprintf(quotedValueTemplateConstant, extractCommitMessage(arguments)))
	case gitPushSubcommandConstant:
		return fmt.Sprintf(pushDescriptionTemplateConstant, ensureValue(argumentAtIndex(arguments, 2)), ensureValue(argumentAtIndex(arguments, 1)))
	default:
		return formatCommandLabel(CommandGit, arguments)
	}
}

func describeElevatedCommand(command ShellCommand) string {
	arguments := command.Details.Arguments
	positional := extractNonFlagArguments(arguments)
	switch argumentAtIndex(positional, 0) {
	case elevatedCopySubcommandConstant:
		return fmt.Sprintf(elevatedCopyDescriptionTemplateConstant, ensureValue(argumentAtIndex(positional, 1)), ensureValue(argumentAtIndex(positional, 2)), command.Name)
	case elevatedRemoveSubcommandConstant:
		return fmt.Sprintf(elevatedRemoveDescriptionTemplateConstant, ensureValue(argumentAtIndex(positional, 1)), command.Name)
	default:
		return formatCommandLabel(command.Name, arguments)
	}
}

func formatCommandLabel(name CommandName, arguments []string) string {
	if len(arguments) == 0 {
		return string(name)
	}
	return string(name) + " " + strings.Join(arguments, " ")
}

func describeWorkingDirectory(workingDirectory string) string {
	trimmed := strings.TrimSpace(workingDirectory)
	if len(trimmed) == 0 || trimmed == "." {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, filepath.Clean(trimmed))
}

func argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return ""
	}
	return arguments[index]
}

func ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return unknownValueConstant
	}
	return value
}

func extractNonFlagArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, "-") {
			continue
		}
		positional = append(positional, argument)
	}
	return positional
}

func extractCommitMessage(arguments []string) string {
	for argumentIndex, argument := range arguments {
		if argument == gitCommitMessageFlagConstant {
			return argumentAtIndex(arguments, argumentIndex+1)
		}
	}
	return ""
}
