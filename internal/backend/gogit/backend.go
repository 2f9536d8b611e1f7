// Package gogit implements backend.Backend with the go-git library so the
// mirror can be managed without a git executable.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/jonboulle/clockwork"

	"github.com/temirov/gikkon/internal/backend"
	"github.com/temirov/gikkon/internal/changeset"
)

const (
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	identityMissingMessageConstant        = "user.name and user.email must be configured for commits"
	openOperationConstant                 = "open repository"
	localHeadOperationConstant            = "resolve local head"
	remoteHeadOperationConstant           = "resolve remote head"
	statusOperationConstant               = "read status"
	resetOperationConstant                = "discard working changes"
	stageOperationConstant                = "stage changes"
	commitOperationConstant               = "commit"
	pushOperationConstant                 = "push"
	pushRefSpecTemplateConstant           = "%s:%s"
)

// ErrRepositoryPathRequired indicates the backend was built without a repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrIdentityMissing indicates git configuration lacks a commit identity.
var ErrIdentityMissing = errors.New(identityMissingMessageConstant)

// Backend manages the mirror repository through go-git.
type Backend struct {
	repository *git.Repository
	clock      clockwork.Clock
}

// New opens the repository at repositoryPath. A nil clock uses the real clock.
func New(repositoryPath string, clock clockwork.Clock) (*Backend, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	repository, openError := git.PlainOpen(trimmedRepositoryPath)
	if openError != nil {
		return nil, backend.Unavailable(openOperationConstant, openError)
	}
	return &Backend{repository: repository, clock: clock}, nil
}

// LocalHead resolves the branch to a commit hash.
func (libraryBackend *Backend) LocalHead(_ context.Context, branch string) (string, error) {
	hash, resolveError := libraryBackend.repository.ResolveRevision(plumbing.Revision(branch))
	if resolveError != nil {
		return "", backend.Unavailable(localHeadOperationConstant, resolveError)
	}
	return hash.String(), nil
}

// RemoteHead lists the remote references and returns the hash of the branch, or
// an empty string when the remote does not have it.
func (libraryBackend *Backend) RemoteHead(executionContext context.Context, remoteName string, branch string) (string, error) {
	remote, remoteError := libraryBackend.repository.Remote(remoteName)
	if remoteError != nil {
		return "", backend.Unavailable(remoteHeadOperationConstant, remoteError)
	}

	references, listError := remote.ListContext(executionContext, &git.ListOptions{})
	if errors.Is(listError, transport.ErrEmptyRemoteRepository) {
		return "", nil
	}
	if listError != nil {
		return "", backend.Unavailable(remoteHeadOperationConstant, listError)
	}

	branchReference := plumbing.NewBranchReferenceName(branch)
	for _, reference := range references {
		if reference.Name() == branchReference {
			return reference.Hash().String(), nil
		}
	}
	return "", nil
}

// ListUntracked returns untracked paths in lexical order.
func (libraryBackend *Backend) ListUntracked(_ context.Context) ([]string, error) {
	status, statusError := libraryBackend.status()
	if statusError != nil {
		return nil, statusError
	}

	untracked := make([]string, 0, len(status))
	for _, path := range sortedPaths(status) {
		if status.IsUntracked(path) {
			untracked = append(untracked, path)
		}
	}
	return untracked, nil
}

// ListChanged returns tracked paths that differ from HEAD in lexical order.
func (libraryBackend *Backend) ListChanged(_ context.Context) ([]changeset.Entry, error) {
	status, statusError := libraryBackend.status()
	if statusError != nil {
		return nil, statusError
	}

	entries := make([]changeset.Entry, 0, len(status))
	for _, path := range sortedPaths(status) {
		fileStatus := status[path]
		if fileStatus.Worktree == git.Untracked {
			continue
		}
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		entryStatus := changeset.StatusModified
		if fileStatus.Staging == git.Deleted || fileStatus.Worktree == git.Deleted {
			entryStatus = changeset.StatusDeleted
		}
		entries = append(entries, changeset.Entry{Status: entryStatus, Path: path})
	}
	return entries, nil
}

// DiscardWorkingChanges hard-resets the worktree to HEAD.
func (libraryBackend *Backend) DiscardWorkingChanges(_ context.Context) error {
	worktree, worktreeError := libraryBackend.repository.Worktree()
	if worktreeError != nil {
		return backend.Unavailable(resetOperationConstant, worktreeError)
	}
	if resetError := worktree.Reset(&git.ResetOptions{Mode: git.HardReset}); resetError != nil {
		return backend.Unavailable(resetOperationConstant, resetError)
	}
	return nil
}

// StageAll stages every change including deletions.
func (libraryBackend *Backend) StageAll(_ context.Context) error {
	worktree, worktreeError := libraryBackend.repository.Worktree()
	if worktreeError != nil {
		return backend.Unavailable(stageOperationConstant, worktreeError)
	}
	if addError := worktree.AddWithOptions(&git.AddOptions{All: true}); addError != nil {
		return backend.Unavailable(stageOperationConstant, addError)
	}
	return nil
}

// Commit records the staged changes with the configured identity and the clock's time.
func (libraryBackend *Backend) Commit(_ context.Context, message string) error {
	signature, signatureError := libraryBackend.signature()
	if signatureError != nil {
		return backend.Unavailable(commitOperationConstant, signatureError)
	}

	worktree, worktreeError := libraryBackend.repository.Worktree()
	if worktreeError != nil {
		return backend.Unavailable(commitOperationConstant, worktreeError)
	}
	if _, commitError := worktree.Commit(message, &git.CommitOptions{Author: signature}); commitError != nil {
		return backend.Unavailable(commitOperationConstant, commitError)
	}
	return nil
}

// Push publishes the branch. A remote that is already up to date is not an error.
func (libraryBackend *Backend) Push(executionContext context.Context, remoteName string, branch string) error {
	branchReference := plumbing.NewBranchReferenceName(branch)
	refSpec := config.RefSpec(fmt.Sprintf(pushRefSpecTemplateConstant, branchReference, branchReference))
	pushError := libraryBackend.repository.PushContext(executionContext, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refSpec},
	})
	if pushError != nil && !errors.Is(pushError, git.NoErrAlreadyUpToDate) {
		return backend.Unavailable(pushOperationConstant, pushError)
	}
	return nil
}

func (libraryBackend *Backend) status() (git.Status, error) {
	worktree, worktreeError := libraryBackend.repository.Worktree()
	if worktreeError != nil {
		return nil, backend.Unavailable(statusOperationConstant, worktreeError)
	}
	status, statusError := worktree.Status()
	if statusError != nil {
		return nil, backend.Unavailable(statusOperationConstant, statusError)
	}
	return status, nil
}

func (libraryBackend *Backend) signature() (*object.Signature, error) {
	configuration, configurationError := libraryBackend.repository.ConfigScoped(config.GlobalScope)
	if configurationError != nil {
		return nil, configurationError
	}
	if len(configuration.User.Name) == 0 || len(configuration.User.Email) == 0 {
		return nil, ErrIdentityMissing
	}
	return &object.Signature{
		Name:  configuration.User.Name,
		Email: configuration.User.Email,
		When:  libraryBackend.clock.Now(),
	}, nil
}

func sortedPaths(status git.Status) []string {
	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
