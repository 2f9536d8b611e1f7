package filesync

// ListOptions selects which tracked files List reports.
type ListOptions struct {
	// ShowAll includes files whose live copy is missing. It applies only together with RepoPaths.
	ShowAll bool
	// RepoPaths reports mirror paths instead of live paths.
	RepoPaths bool
}

// TrackedFile is a file under mirror control.
type TrackedFile struct {
	MirrorPath  string `json:"mirror_path" yaml:"mirror_path"`
	LivePath    string `json:"live_path" yaml:"live_path"`
	LivePresent bool   `json:"live_present" yaml:"live_present"`
}

// DisplayPath returns the path shown for the file under the given options.
func (file TrackedFile) DisplayPath(options ListOptions) string {
	if options.RepoPaths {
		return file.MirrorPath
	}
	return file.LivePath
}

// List returns tracked files in lexical mirror order. Files whose live copy is
// not a regular file are included only when both ShowAll and RepoPaths are set.
func (engine *Engine) List(options ListOptions) ([]TrackedFile, error) {
	trackedFiles := make([]TrackedFile, 0)

	walkError := engine.walkMirror(func(file trackedFile) error {
		liveExists, liveRegular, statError := engine.liveRegularFile(file.livePath)
		if statError != nil {
			return statError
		}
		livePresent := liveExists && liveRegular

		if !livePresent && !(options.RepoPaths && options.ShowAll) {
			return nil
		}

		trackedFiles = append(trackedFiles, TrackedFile{
			MirrorPath:  file.mirrorPath,
			LivePath:    file.livePath,
			LivePresent: livePresent,
		})
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	return trackedFiles, nil
}
