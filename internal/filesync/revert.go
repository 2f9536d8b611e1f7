package filesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/gikkon/internal/changeset"
)

const revertFailureTemplateConstant = "revert %s: %w"

// Revert restores the selected entries: untracked mirror files are deleted and
// every other entry's mirror content is copied back to its live location.
// Non-fatal failures are joined and returned after all entries are processed.
func (engine *Engine) Revert(executionContext context.Context, entries []changeset.Entry) error {
	var revertErrors []error

	for _, entry := range entries {
		if contextError := executionContext.Err(); contextError != nil {
			return errors.Join(append(revertErrors, contextError)...)
		}

		revertError := engine.revertEntry(executionContext, entry)
		if revertError == nil {
			continue
		}

		var elevationError *ElevationFailedError
		if errors.As(revertError, &elevationError) {
			return revertError
		}
		revertErrors = append(revertErrors, fmt.Errorf(revertFailureTemplateConstant, entry.Path, revertError))
	}

	return errors.Join(revertErrors...)
}

func (engine *Engine) revertEntry(executionContext context.Context, entry changeset.Entry) error {
	mirrorLocation := engine.mirrorLocation(entry.Path)
	if entry.Status == changeset.StatusUntracked {
		return engine.deleteFile(executionContext, mirrorLocation)
	}

	livePath := engine.mapper.ToLive(entry.Path)
	if parentError := engine.ensureParentDirectory(livePath); parentError != nil {
		return parentError
	}
	return engine.copyFile(executionContext, mirrorLocation, livePath)
}
