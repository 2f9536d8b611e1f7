package filesync

import (
	"bytes"
	"context"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/afero"
)

const binarySniffLengthConstant = 8000

// FileDrift describes a tracked file whose live copy no longer matches the mirror.
type FileDrift struct {
	MirrorPath  string
	LivePath    string
	LiveMissing bool
	Binary      bool
	// Diffs is a line-level diff from mirror content to live content; empty for binary or missing files.
	Diffs []diffmatchpatch.Diff
}

// Drift previews what a sync would change without touching either tree.
func (engine *Engine) Drift(executionContext context.Context) ([]FileDrift, error) {
	drifts := make([]FileDrift, 0)
	differ := diffmatchpatch.New()

	walkError := engine.walkMirror(func(file trackedFile) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		liveExists, liveRegular, statError := engine.liveRegularFile(file.livePath)
		if statError != nil {
			return statError
		}
		if !liveExists {
			drifts = append(drifts, FileDrift{MirrorPath: file.mirrorPath, LivePath: file.livePath, LiveMissing: true})
			return nil
		}
		if !liveRegular {
			return nil
		}

		contentsChanged, compareError := contentsDiffer(engine.fileSystem, file.livePath, file.mirrorLocation)
		if compareError != nil {
			return compareError
		}
		if !contentsChanged {
			return nil
		}

		mirrorContent, mirrorReadError := afero.ReadFile(engine.fileSystem, file.mirrorLocation)
		if mirrorReadError != nil {
			return mirrorReadError
		}
		liveContent, liveReadError := afero.ReadFile(engine.fileSystem, file.livePath)
		if liveReadError != nil {
			return liveReadError
		}

		drift := FileDrift{MirrorPath: file.mirrorPath, LivePath: file.livePath}
		if looksBinary(mirrorContent) || looksBinary(liveContent) {
			drift.Binary = true
		} else {
			drift.Diffs = lineDiff(differ, string(mirrorContent), string(liveContent))
		}
		drifts = append(drifts, drift)
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	return drifts, nil
}

func lineDiff(differ *diffmatchpatch.DiffMatchPatch, previousText string, currentText string) []diffmatchpatch.Diff {
	previousChars, currentChars, lineArray := differ.DiffLinesToChars(previousText, currentText)
	diffs := differ.DiffMain(previousChars, currentChars, false)
	return differ.DiffCharsToLines(diffs, lineArray)
}

func looksBinary(content []byte) bool {
	sniffLength := len(content)
	if sniffLength > binarySniffLengthConstant {
		sniffLength = binarySniffLengthConstant
	}
	return bytes.IndexByte(content[:sniffLength], 0) >= 0
}
