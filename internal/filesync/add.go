package filesync

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	resolveFailureTemplateConstant    = "resolve %s: %w"
	directoryRejectedTemplateConstant = "%w: %s"
	emptyPathMessageConstant          = "file path must not be empty"
)

// ErrIsDirectory indicates add was given a directory instead of a file.
var ErrIsDirectory = errors.New("only regular files can be added")

// ErrEmptyPath indicates add was given an empty path.
var ErrEmptyPath = errors.New(emptyPathMessageConstant)

// AddResult describes a file placed under mirror control.
type AddResult struct {
	LivePath   string
	MirrorPath string
}

// Add copies a live file into its mirror location, creating parent directories as needed.
// Paths that would not map back to themselves are rejected with pathmap.ErrNotReversible.
func (engine *Engine) Add(executionContext context.Context, liveFile string) (AddResult, error) {
	if len(strings.TrimSpace(liveFile)) == 0 {
		return AddResult{}, ErrEmptyPath
	}

	canonicalPath, resolveError := engine.pathResolver(liveFile)
	if resolveError != nil {
		return AddResult{}, fmt.Errorf(resolveFailureTemplateConstant, liveFile, resolveError)
	}

	info, statError := engine.fileSystem.Stat(canonicalPath)
	if statError != nil {
		return AddResult{}, statError
	}
	if info.IsDir() {
		return AddResult{}, fmt.Errorf(directoryRejectedTemplateConstant, ErrIsDirectory, canonicalPath)
	}

	if reversibleError := engine.mapper.EnsureReversible(canonicalPath); reversibleError != nil {
		return AddResult{}, reversibleError
	}

	mirrorPath := engine.mapper.ToMirror(canonicalPath)
	mirrorLocation := engine.mirrorLocation(mirrorPath)
	if parentError := engine.ensureParentDirectory(mirrorLocation); parentError != nil {
		return AddResult{}, parentError
	}
	if copyError := engine.copyFile(executionContext, canonicalPath, mirrorLocation); copyError != nil {
		return AddResult{}, copyError
	}

	return AddResult{LivePath: canonicalPath, MirrorPath: mirrorPath}, nil
}
