package filesync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	copyOperationConstant           = "copy"
	deleteOperationConstant         = "delete"
	copyingLineTemplateConstant     = "copying from %s to %s\n"
	deletingLineTemplateConstant    = "deleting %s\n"
	wouldCopyLineTemplateConstant   = "would copy %s to %s\n"
	wouldDeleteLineTemplateConstant = "would delete %s\n"
	comparisonBufferSizeConstant    = 32 * 1024
	elevationRetryMessageConstant   = "permission denied, retrying with elevated privileges"
	logFieldSourceConstant          = "source"
	logFieldDestinationConstant     = "destination"
	logFieldTargetConstant          = "target"
	logFieldMirrorPathConstant      = "mirror_path"
	logFieldLivePathConstant        = "live_path"
	logFieldOperationConstant       = "operation"
)

// copyFile replaces destinationPath with the content and permission bits of sourcePath,
// retrying with elevation when the current user lacks permission.
func (engine *Engine) copyFile(executionContext context.Context, sourcePath string, destinationPath string) error {
	if engine.mode == ModeDryRun {
		_, writeError := fmt.Fprintf(engine.output, wouldCopyLineTemplateConstant, sourcePath, destinationPath)
		return writeError
	}

	if _, writeError := fmt.Fprintf(engine.output, copyingLineTemplateConstant, sourcePath, destinationPath); writeError != nil {
		return writeError
	}

	copyError := copyWithMode(engine.fileSystem, sourcePath, destinationPath)
	if copyError == nil || !errors.Is(copyError, fs.ErrPermission) {
		return copyError
	}

	engine.logger.Info(elevationRetryMessageConstant,
		zap.String(logFieldOperationConstant, copyOperationConstant),
		zap.String(logFieldSourceConstant, sourcePath),
		zap.String(logFieldDestinationConstant, destinationPath),
	)
	result := engine.elevator.CopyWithElevation(executionContext, sourcePath, destinationPath)
	if !result.Succeeded {
		return &ElevationFailedError{Operation: copyOperationConstant, Target: destinationPath, Diagnostic: result.Diagnostic}
	}
	return nil
}

// deleteFile removes targetPath, retrying with elevation when the current user lacks permission.
// A missing target is not an error.
func (engine *Engine) deleteFile(executionContext context.Context, targetPath string) error {
	if engine.mode == ModeDryRun {
		_, writeError := fmt.Fprintf(engine.output, wouldDeleteLineTemplateConstant, targetPath)
		return writeError
	}

	if _, writeError := fmt.Fprintf(engine.output, deletingLineTemplateConstant, targetPath); writeError != nil {
		return writeError
	}

	removeError := engine.fileSystem.Remove(targetPath)
	if removeError == nil || errors.Is(removeError, fs.ErrNotExist) {
		return nil
	}
	if !errors.Is(removeError, fs.ErrPermission) {
		return removeError
	}

	engine.logger.Info(elevationRetryMessageConstant,
		zap.String(logFieldOperationConstant, deleteOperationConstant),
		zap.String(logFieldTargetConstant, targetPath),
	)
	result := engine.elevator.DeleteWithElevation(executionContext, targetPath)
	if !result.Succeeded {
		return &ElevationFailedError{Operation: deleteOperationConstant, Target: targetPath, Diagnostic: result.Diagnostic}
	}
	return nil
}

// ensureParentDirectory creates the parent directory of targetPath. Permission failures are
// left to the following copy, which retries with elevation.
func (engine *Engine) ensureParentDirectory(targetPath string) error {
	if engine.mode == ModeDryRun {
		return nil
	}
	mkdirError := engine.fileSystem.MkdirAll(filepath.Dir(targetPath), 0o755)
	if mkdirError != nil && !errors.Is(mkdirError, fs.ErrPermission) {
		return mkdirError
	}
	return nil
}

func copyWithMode(fileSystem afero.Fs, sourcePath string, destinationPath string) error {
	sourceFile, openError := fileSystem.Open(sourcePath)
	if openError != nil {
		return openError
	}
	defer sourceFile.Close()

	sourceInfo, statError := sourceFile.Stat()
	if statError != nil {
		return statError
	}

	destinationFile, createError := fileSystem.OpenFile(destinationPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourceInfo.Mode().Perm())
	if createError != nil {
		return createError
	}

	if _, copyError := io.Copy(destinationFile, sourceFile); copyError != nil {
		_ = destinationFile.Close()
		return copyError
	}
	if closeError := destinationFile.Close(); closeError != nil {
		return closeError
	}

	return fileSystem.Chmod(destinationPath, sourceInfo.Mode().Perm())
}

// contentsDiffer compares two files byte for byte, short-circuiting on size.
func contentsDiffer(fileSystem afero.Fs, firstPath string, secondPath string) (bool, error) {
	firstInfo, firstStatError := fileSystem.Stat(firstPath)
	if firstStatError != nil {
		return false, firstStatError
	}
	secondInfo, secondStatError := fileSystem.Stat(secondPath)
	if secondStatError != nil {
		return false, secondStatError
	}
	if firstInfo.Size() != secondInfo.Size() {
		return true, nil
	}

	firstFile, firstOpenError := fileSystem.Open(firstPath)
	if firstOpenError != nil {
		return false, firstOpenError
	}
	defer firstFile.Close()

	secondFile, secondOpenError := fileSystem.Open(secondPath)
	if secondOpenError != nil {
		return false, secondOpenError
	}
	defer secondFile.Close()

	firstBuffer := make([]byte, comparisonBufferSizeConstant)
	secondBuffer := make([]byte, comparisonBufferSizeConstant)
	for {
		firstCount, firstReadError := io.ReadFull(firstFile, firstBuffer)
		secondCount, secondReadError := io.ReadFull(secondFile, secondBuffer)
		if firstCount != secondCount || !bytes.Equal(firstBuffer[:firstCount], secondBuffer[:secondCount]) {
			return true, nil
		}

		firstDone := isEndOfContent(firstReadError)
		secondDone := isEndOfContent(secondReadError)
		if firstReadError != nil && !firstDone {
			return false, firstReadError
		}
		if secondReadError != nil && !secondDone {
			return false, secondReadError
		}
		if firstDone || secondDone {
			return firstDone != secondDone, nil
		}
	}
}

func isEndOfContent(readError error) bool {
	return errors.Is(readError, io.EOF) || errors.Is(readError, io.ErrUnexpectedEOF)
}

// trackedFile is one regular file found in the mirror tree.
type trackedFile struct {
	mirrorPath     string
	mirrorLocation string
	livePath       string
}

// walkMirror visits tracked files in lexical order, skipping git metadata.
func (engine *Engine) walkMirror(visit func(file trackedFile) error) error {
	return afero.Walk(engine.fileSystem, engine.mirrorRoot, func(currentPath string, info fs.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}

		entryName := info.Name()
		if entryName == gitDirectoryNameConstant {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || entryName == gitIgnoreFileNameConstant {
			return nil
		}

		relativePath, relativeError := filepath.Rel(engine.mirrorRoot, currentPath)
		if relativeError != nil {
			return relativeError
		}
		mirrorPath := filepath.ToSlash(relativePath)

		return visit(trackedFile{
			mirrorPath:     mirrorPath,
			mirrorLocation: currentPath,
			livePath:       engine.mapper.ToLive(mirrorPath),
		})
	})
}

// liveRegularFile reports whether the live path exists as a regular file (following symlinks).
// A missing path yields (false, false, nil); other stat failures are returned.
func (engine *Engine) liveRegularFile(livePath string) (exists bool, regular bool, statError error) {
	info, statError := engine.fileSystem.Stat(livePath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return false, false, nil
		}
		return false, false, statError
	}
	return true, info.Mode().IsRegular(), nil
}
