package filesync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	deleteQuestionTemplateConstant = "Delete `%s`"
	syncFailureMessageConstant     = "sync failed for file"
	syncCopiedMessageConstant      = "live file copied into mirror"
	syncSkippedMessageConstant     = "live file unchanged"
	syncMissingMessageConstant     = "live file missing"
)

// SyncOptions controls a Sync run.
type SyncOptions struct {
	// DeleteNotPresent offers to delete mirror files whose live counterpart is missing.
	DeleteNotPresent bool
}

// FileFailure records a non-fatal per-file error.
type FileFailure struct {
	MirrorPath string
	Err        error
}

// SyncReport summarizes a Sync run using mirror paths.
type SyncReport struct {
	Copied    []string
	Deleted   []string
	Unchanged []string
	Missing   []string
	Failures  []FileFailure
}

// Sync copies every tracked live file whose content differs into the mirror.
// Per-file failures are logged and recorded in the report; a failed elevation aborts the run.
func (engine *Engine) Sync(executionContext context.Context, options SyncOptions) (SyncReport, error) {
	report := SyncReport{}

	walkError := engine.walkMirror(func(file trackedFile) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		syncError := engine.syncFile(executionContext, file, options, &report)
		if syncError == nil {
			return nil
		}

		var elevationError *ElevationFailedError
		if errors.As(syncError, &elevationError) {
			return syncError
		}
		engine.logger.Warn(syncFailureMessageConstant,
			zap.String(logFieldMirrorPathConstant, file.mirrorPath),
			zap.String(logFieldLivePathConstant, file.livePath),
			zap.Error(syncError),
		)
		report.Failures = append(report.Failures, FileFailure{MirrorPath: file.mirrorPath, Err: syncError})
		return nil
	})

	return report, walkError
}

func (engine *Engine) syncFile(executionContext context.Context, file trackedFile, options SyncOptions, report *SyncReport) error {
	liveExists, liveRegular, statError := engine.liveRegularFile(file.livePath)
	if statError != nil {
		return statError
	}

	if !liveExists {
		report.Missing = append(report.Missing, file.mirrorPath)
		engine.logger.Debug(syncMissingMessageConstant, zap.String(logFieldMirrorPathConstant, file.mirrorPath))
		if !options.DeleteNotPresent {
			return nil
		}
		return engine.offerDeletion(executionContext, file, report)
	}

	if !liveRegular {
		return nil
	}

	differ, compareError := contentsDiffer(engine.fileSystem, file.livePath, file.mirrorLocation)
	if compareError != nil {
		return compareError
	}
	if !differ {
		report.Unchanged = append(report.Unchanged, file.mirrorPath)
		engine.logger.Debug(syncSkippedMessageConstant, zap.String(logFieldMirrorPathConstant, file.mirrorPath))
		return nil
	}

	if copyError := engine.copyFile(executionContext, file.livePath, file.mirrorLocation); copyError != nil {
		return copyError
	}
	report.Copied = append(report.Copied, file.mirrorPath)
	engine.logger.Info(syncCopiedMessageConstant,
		zap.String(logFieldMirrorPathConstant, file.mirrorPath),
		zap.String(logFieldLivePathConstant, file.livePath),
	)
	return nil
}

func (engine *Engine) offerDeletion(executionContext context.Context, file trackedFile, report *SyncReport) error {
	if engine.confirmer == nil {
		return nil
	}
	confirmed, askError := engine.confirmer.AskYesNo(fmt.Sprintf(deleteQuestionTemplateConstant, file.mirrorPath), false)
	if askError != nil {
		return askError
	}
	if !confirmed {
		return nil
	}
	if deleteError := engine.deleteFile(executionContext, file.mirrorLocation); deleteError != nil {
		return deleteError
	}
	report.Deleted = append(report.Deleted, file.mirrorPath)
	return nil
}
