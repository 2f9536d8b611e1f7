// Package backend defines the version-control operations gikkon needs from the
// mirror repository. The gitcli and gogit subpackages implement it with the git
// executable and the go-git library respectively.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/gikkon/internal/changeset"
)

const unavailableTemplateConstant = "%w: %s: %w"

// ErrUnavailable wraps every failure to reach or query the mirror repository or its remote.
var ErrUnavailable = errors.New("version control backend unavailable")

// Kind names a Backend implementation.
type Kind string

// Supported backend kinds.
const (
	KindCLI     Kind = "cli"
	KindLibrary Kind = "library"
)

// Backend exposes the version-control operations applied to the mirror repository.
type Backend interface {
	// LocalHead returns the commit the local branch points at.
	LocalHead(executionContext context.Context, branch string) (string, error)
	// RemoteHead returns the commit the remote branch points at, or an empty string when the remote lacks the branch.
	RemoteHead(executionContext context.Context, remote string, branch string) (string, error)
	// ListUntracked returns untracked mirror paths.
	ListUntracked(executionContext context.Context) ([]string, error)
	// ListChanged returns tracked paths that differ from HEAD with StatusModified or StatusDeleted.
	ListChanged(executionContext context.Context) ([]changeset.Entry, error)
	// DiscardWorkingChanges resets tracked files to HEAD, keeping untracked files.
	DiscardWorkingChanges(executionContext context.Context) error
	// StageAll stages every change including deletions and untracked files.
	StageAll(executionContext context.Context) error
	// Commit records the staged changes.
	Commit(executionContext context.Context, message string) error
	// Push publishes the branch to the remote.
	Push(executionContext context.Context, remote string, branch string) error
}

// Unavailable wraps cause with ErrUnavailable and the failed operation.
func Unavailable(operation string, cause error) error {
	return fmt.Errorf(unavailableTemplateConstant, ErrUnavailable, operation, cause)
}

// Snapshot queries the backend for a fresh ChangeSet. Deleted and modified paths never overlap.
func Snapshot(executionContext context.Context, versionControl Backend) (changeset.ChangeSet, error) {
	untracked, untrackedError := versionControl.ListUntracked(executionContext)
	if untrackedError != nil {
		return changeset.ChangeSet{}, untrackedError
	}

	changedEntries, changedError := versionControl.ListChanged(executionContext)
	if changedError != nil {
		return changeset.ChangeSet{}, changedError
	}

	deleted := make([]string, 0, len(changedEntries))
	modified := make([]string, 0, len(changedEntries))
	for _, entry := range changedEntries {
		if entry.Status == changeset.StatusDeleted {
			deleted = append(deleted, entry.Path)
			continue
		}
		modified = append(modified, entry.Path)
	}

	return changeset.New(untracked, deleted, modified), nil
}
