// Package gitcli implements backend.Backend by running the git executable.
package gitcli

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/gikkon/internal/backend"
	"github.com/temirov/gikkon/internal/changeset"
	"github.com/temirov/gikkon/internal/execshell"
)

const (
	repositoryPathRequiredMessageConstant    = "repository path must be provided"
	gitExecutorMissingMessageConstant        = "git executor not configured"
	gitRevParseSubcommandConstant            = "rev-parse"
	gitLsRemoteSubcommandConstant            = "ls-remote"
	gitStatusSubcommandConstant              = "status"
	gitPorcelainFlagConstant                 = "--porcelain"
	gitNullTerminatedFlagConstant            = "-z"
	gitUntrackedFilesAllFlagConstant         = "--untracked-files=all"
	gitResetSubcommandConstant               = "reset"
	gitHardFlagConstant                      = "--hard"
	gitHeadReferenceConstant                 = "HEAD"
	gitAddSubcommandConstant                 = "add"
	gitAllFlagConstant                       = "-A"
	gitCommitSubcommandConstant              = "commit"
	gitMessageFlagConstant                   = "-m"
	gitPushSubcommandConstant                = "push"
	branchReferencePrefixConstant            = "refs/heads/"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant   = "0"
	localHeadOperationConstant               = "resolve local head"
	remoteHeadOperationConstant              = "resolve remote head"
	statusOperationConstant                  = "read status"
	resetOperationConstant                   = "discard working changes"
	stageOperationConstant                   = "stage changes"
	commitOperationConstant                  = "commit"
	pushOperationConstant                    = "push"
	statusUntrackedCodeConstant              = "??"
	statusIgnoredCodeConstant                = "!!"
	statusRecordMinimumLengthConstant        = 4
	lsRemoteFieldSeparatorConstant           = "\t"
)

// ErrRepositoryPathRequired indicates the backend was built without a repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrGitExecutorNotConfigured indicates the backend was built without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Backend runs git in the mirror repository.
type Backend struct {
	executor       GitExecutor
	repositoryPath string
}

// New constructs a Backend for the repository at repositoryPath.
func New(executor GitExecutor, repositoryPath string) (*Backend, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	return &Backend{executor: executor, repositoryPath: trimmedRepositoryPath}, nil
}

// LocalHead runs git rev-parse for the branch.
func (gitBackend *Backend) LocalHead(executionContext context.Context, branch string) (string, error) {
	result, executionError := gitBackend.run(executionContext, gitRevParseSubcommandConstant, branch)
	if executionError != nil {
		return "", backend.Unavailable(localHeadOperationConstant, executionError)
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// RemoteHead runs git ls-remote for the branch reference and returns the first hash field.
func (gitBackend *Backend) RemoteHead(executionContext context.Context, remote string, branch string) (string, error) {
	result, executionError := gitBackend.run(executionContext, gitLsRemoteSubcommandConstant, remote, branchReferencePrefixConstant+branch)
	if executionError != nil {
		return "", backend.Unavailable(remoteHeadOperationConstant, executionError)
	}
	firstLine, _, _ := strings.Cut(strings.TrimSpace(result.StandardOutput), "\n")
	hash, _, _ := strings.Cut(firstLine, lsRemoteFieldSeparatorConstant)
	return strings.TrimSpace(hash), nil
}

// ListUntracked returns untracked paths reported by git status.
func (gitBackend *Backend) ListUntracked(executionContext context.Context) ([]string, error) {
	records, statusError := gitBackend.status(executionContext)
	if statusError != nil {
		return nil, statusError
	}
	untracked := make([]string, 0, len(records))
	for _, record := range records {
		if record.code == statusUntrackedCodeConstant {
			untracked = append(untracked, record.path)
		}
	}
	return untracked, nil
}

// ListChanged returns tracked paths that are deleted or otherwise changed.
func (gitBackend *Backend) ListChanged(executionContext context.Context) ([]changeset.Entry, error) {
	records, statusError := gitBackend.status(executionContext)
	if statusError != nil {
		return nil, statusError
	}
	entries := make([]changeset.Entry, 0, len(records))
	for _, record := range records {
		if record.code == statusUntrackedCodeConstant {
			continue
		}
		status := changeset.StatusModified
		if strings.ContainsRune(record.code, 'D') {
			status = changeset.StatusDeleted
		}
		entries = append(entries, changeset.Entry{Status: status, Path: record.path})
	}
	return entries, nil
}

// DiscardWorkingChanges runs git reset --hard HEAD.
func (gitBackend *Backend) DiscardWorkingChanges(executionContext context.Context) error {
	if _, executionError := gitBackend.run(executionContext, gitResetSubcommandConstant, gitHardFlagConstant, gitHeadReferenceConstant); executionError != nil {
		return backend.Unavailable(resetOperationConstant, executionError)
	}
	return nil
}

// StageAll runs git add -A.
func (gitBackend *Backend) StageAll(executionContext context.Context) error {
	if _, executionError := gitBackend.run(executionContext, gitAddSubcommandConstant, gitAllFlagConstant); executionError != nil {
		return backend.Unavailable(stageOperationConstant, executionError)
	}
	return nil
}

// Commit runs git commit -m.
func (gitBackend *Backend) Commit(executionContext context.Context, message string) error {
	if _, executionError := gitBackend.run(executionContext, gitCommitSubcommandConstant, gitMessageFlagConstant, message); executionError != nil {
		return backend.Unavailable(commitOperationConstant, executionError)
	}
	return nil
}

// Push runs git push for the branch.
func (gitBackend *Backend) Push(executionContext context.Context, remote string, branch string) error {
	if _, executionError := gitBackend.run(executionContext, gitPushSubcommandConstant, remote, branch); executionError != nil {
		return backend.Unavailable(pushOperationConstant, executionError)
	}
	return nil
}

type statusRecord struct {
	code string
	path string
}

func (gitBackend *Backend) status(executionContext context.Context) ([]statusRecord, error) {
	result, executionError := gitBackend.run(executionContext, gitStatusSubcommandConstant, gitPorcelainFlagConstant, gitNullTerminatedFlagConstant, gitUntrackedFilesAllFlagConstant)
	if executionError != nil {
		return nil, backend.Unavailable(statusOperationConstant, executionError)
	}
	return parsePorcelainStatus(result.StandardOutput), nil
}

// parsePorcelainStatus reads NUL-terminated "XY path" records. Rename and copy
// records are followed by the original path, which is skipped.
func parsePorcelainStatus(output string) []statusRecord {
	tokens := strings.Split(output, "\x00")
	records := make([]statusRecord, 0, len(tokens))
	for tokenIndex := 0; tokenIndex < len(tokens); tokenIndex++ {
		token := tokens[tokenIndex]
		if len(token) < statusRecordMinimumLengthConstant {
			continue
		}
		code := token[:2]
		if code == statusIgnoredCodeConstant {
			continue
		}
		records = append(records, statusRecord{code: code, path: token[3:]})
		if code[0] == 'R' || code[0] == 'C' {
			tokenIndex++
		}
	}
	return records
}

func (gitBackend *Backend) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return gitBackend.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: gitBackend.repositoryPath,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptDisabledValueConstant,
		},
	})
}
