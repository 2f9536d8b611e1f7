package pathmap

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const (
	// HomeMarker is the first mirror path segment standing for the home directory.
	HomeMarker = "home"

	rootDirectoryConstant                     = "/"
	homeDirectoryRequiredMessageConstant      = "home directory must be an absolute path"
	homeDirectoryResolveErrorTemplateConstant = "unable to resolve home directory: %w"
	notReversibleErrorTemplateConstant        = "%w: %s maps to %s"
)

// ErrNotReversible indicates a live path that cannot round-trip through the mirror layout.
var ErrNotReversible = errors.New("path cannot be mirrored reversibly")

// ErrHomeDirectoryInvalid indicates the home directory supplied to the mapper is unusable.
var ErrHomeDirectoryInvalid = errors.New(homeDirectoryRequiredMessageConstant)

// Mapper converts between mirror-relative and live paths.
type Mapper struct {
	homeDirectory string
}

// NewMapper constructs a Mapper for the given absolute home directory.
func NewMapper(homeDirectory string) (Mapper, error) {
	trimmedHomeDirectory := strings.TrimSpace(homeDirectory)
	if len(trimmedHomeDirectory) == 0 || !filepath.IsAbs(trimmedHomeDirectory) {
		return Mapper{}, fmt.Errorf("%w: %q", ErrHomeDirectoryInvalid, homeDirectory)
	}
	return Mapper{homeDirectory: filepath.Clean(trimmedHomeDirectory)}, nil
}

// NewMapperFromEnvironment constructs a Mapper for the current user's home directory.
func NewMapperFromEnvironment() (Mapper, error) {
	homeDirectory, resolveError := homedir.Dir()
	if resolveError != nil {
		return Mapper{}, fmt.Errorf(homeDirectoryResolveErrorTemplateConstant, resolveError)
	}
	return NewMapper(homeDirectory)
}

// HomeDirectory returns the home directory the mapper resolves the marker to.
func (mapper Mapper) HomeDirectory() string {
	return mapper.homeDirectory
}

// ToLive maps a slash-separated mirror path to its absolute live location.
func (mapper Mapper) ToLive(mirrorPath string) string {
	normalized := strings.TrimLeft(filepath.ToSlash(mirrorPath), "/")
	firstSegment, remainder, _ := strings.Cut(normalized, "/")
	if firstSegment == HomeMarker {
		return filepath.Join(mapper.homeDirectory, filepath.FromSlash(remainder))
	}
	return filepath.Join(rootDirectoryConstant, filepath.FromSlash(normalized))
}

// ToMirror maps an absolute live path to its slash-separated mirror path.
func (mapper Mapper) ToMirror(livePath string) string {
	cleanedPath := filepath.Clean(livePath)
	if relativePath, underHome := mapper.relativeToHome(cleanedPath); underHome {
		if len(relativePath) == 0 {
			return HomeMarker
		}
		return HomeMarker + "/" + filepath.ToSlash(relativePath)
	}
	return strings.TrimLeft(filepath.ToSlash(cleanedPath), "/")
}

// Reversible reports whether the live path survives a round trip through the mirror layout.
// Live paths outside the home directory whose first segment equals the marker do not.
func (mapper Mapper) Reversible(livePath string) bool {
	cleanedPath := filepath.Clean(livePath)
	return mapper.ToLive(mapper.ToMirror(cleanedPath)) == cleanedPath
}

// EnsureReversible returns ErrNotReversible when the live path does not round-trip.
func (mapper Mapper) EnsureReversible(livePath string) error {
	if mapper.Reversible(livePath) {
		return nil
	}
	return fmt.Errorf(notReversibleErrorTemplateConstant, ErrNotReversible, livePath, mapper.ToLive(mapper.ToMirror(livePath)))
}

func (mapper Mapper) relativeToHome(cleanedPath string) (string, bool) {
	if cleanedPath == mapper.homeDirectory {
		return "", true
	}
	homePrefix := mapper.homeDirectory
	if !strings.HasSuffix(homePrefix, string(filepath.Separator)) {
		homePrefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(cleanedPath, homePrefix) {
		return "", false
	}
	return strings.TrimPrefix(cleanedPath, homePrefix), true
}
