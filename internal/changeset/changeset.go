// Package changeset models the mirror repository changes observed after a sync.
package changeset

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// AddingFilesHeader introduces untracked entries in rendered output.
	AddingFilesHeader = "Adding new files:"
	// DeletingFilesHeader introduces deleted entries in rendered output.
	DeletingFilesHeader = "Deleting files:"
	// ChangingFilesHeader introduces modified entries in rendered output.
	ChangingFilesHeader = "Changing files:"

	untrackedEntryPrefixConstant        = "+ "
	deletedEntryPrefixConstant          = "- "
	renderLineSeparatorConstant         = "\n"
	indexOutOfRangeTemplateConstant     = "%w: index %d, %d revertible entries"
	statusUntrackedStringConstant       = "untracked"
	statusDeletedStringConstant         = "deleted"
	statusModifiedStringConstant        = "modified"
	statusUnknownStringTemplateConstant = "status(%d)"
)

// ErrIndexOutOfRange indicates a selection index outside the revertible sequence.
var ErrIndexOutOfRange = errors.New("selection index out of range")

// Status classifies a change reported by the version-control backend.
type Status int

// Supported change statuses.
const (
	StatusUntracked Status = iota
	StatusDeleted
	StatusModified
)

// String returns the lower-case status name.
func (status Status) String() string {
	switch status {
	case StatusUntracked:
		return statusUntrackedStringConstant
	case StatusDeleted:
		return statusDeletedStringConstant
	case StatusModified:
		return statusModifiedStringConstant
	default:
		return fmt.Sprintf(statusUnknownStringTemplateConstant, int(status))
	}
}

// Entry pairs a mirror path with its change status.
type Entry struct {
	Status Status
	Path   string
}

// ChangeSet is an immutable snapshot of untracked, deleted, and modified mirror paths in backend order.
type ChangeSet struct {
	untracked []string
	deleted   []string
	changed   []string
}

// New builds a ChangeSet from the three path lists; the inputs are copied.
func New(untracked []string, deleted []string, changed []string) ChangeSet {
	return ChangeSet{
		untracked: copyPaths(untracked),
		deleted:   copyPaths(deleted),
		changed:   copyPaths(changed),
	}
}

// IsEmpty reports whether the snapshot holds no changes at all.
func (changeSet ChangeSet) IsEmpty() bool {
	return len(changeSet.untracked) == 0 && len(changeSet.deleted) == 0 && len(changeSet.changed) == 0
}

// Untracked returns a copy of the untracked paths.
func (changeSet ChangeSet) Untracked() []string {
	return copyPaths(changeSet.untracked)
}

// Deleted returns a copy of the deleted paths.
func (changeSet ChangeSet) Deleted() []string {
	return copyPaths(changeSet.deleted)
}

// Changed returns a copy of the modified paths.
func (changeSet ChangeSet) Changed() []string {
	return copyPaths(changeSet.changed)
}

// Revertible returns the sequence selection indexes refer to: modified entries first, then untracked entries.
// Deleted entries are never revertible individually.
func (changeSet ChangeSet) Revertible() []Entry {
	entries := make([]Entry, 0, len(changeSet.changed)+len(changeSet.untracked))
	for _, changedPath := range changeSet.changed {
		entries = append(entries, Entry{Status: StatusModified, Path: changedPath})
	}
	for _, untrackedPath := range changeSet.untracked {
		entries = append(entries, Entry{Status: StatusUntracked, Path: untrackedPath})
	}
	return entries
}

// SelectByIndexes returns the revertible entries at the given positions in sequence order with duplicates collapsed.
func (changeSet ChangeSet) SelectByIndexes(indexes []int) ([]Entry, error) {
	revertible := changeSet.Revertible()

	uniqueIndexes := make(map[int]struct{}, len(indexes))
	for _, index := range indexes {
		if index < 0 || index >= len(revertible) {
			return nil, fmt.Errorf(indexOutOfRangeTemplateConstant, ErrIndexOutOfRange, index, len(revertible))
		}
		uniqueIndexes[index] = struct{}{}
	}

	orderedIndexes := make([]int, 0, len(uniqueIndexes))
	for index := range uniqueIndexes {
		orderedIndexes = append(orderedIndexes, index)
	}
	sort.Ints(orderedIndexes)

	selected := make([]Entry, 0, len(orderedIndexes))
	for _, index := range orderedIndexes {
		selected = append(selected, revertible[index])
	}
	return selected, nil
}

// LineStyles decorates rendered lines by role. A nil hook leaves its lines unchanged.
type LineStyles struct {
	Header    func(string) string
	Untracked func(string) string
	Deleted   func(string) string
	Changed   func(string) string
}

// Render formats the snapshot as header-led sections, each followed by an empty line.
// Modified entries carry their revertible index so operators can select them.
func (changeSet ChangeSet) Render() string {
	return changeSet.RenderWith(LineStyles{})
}

// RenderWith lays out the sections like Render and passes each header and entry line through its style hook.
func (changeSet ChangeSet) RenderWith(styles LineStyles) string {
	renderedLines := make([]string, 0, len(changeSet.untracked)+len(changeSet.deleted)+len(changeSet.changed)+6)

	appendSection := func(header string, entryLines []string, entryStyle func(string) string) {
		if len(entryLines) == 0 {
			return
		}
		renderedLines = append(renderedLines, applyStyle(styles.Header, header))
		for _, entryLine := range entryLines {
			renderedLines = append(renderedLines, applyStyle(entryStyle, entryLine))
		}
		renderedLines = append(renderedLines, "")
	}

	untrackedLines := make([]string, 0, len(changeSet.untracked))
	for _, untrackedPath := range changeSet.untracked {
		untrackedLines = append(untrackedLines, untrackedEntryPrefixConstant+untrackedPath)
	}
	deletedLines := make([]string, 0, len(changeSet.deleted))
	for _, deletedPath := range changeSet.deleted {
		deletedLines = append(deletedLines, deletedEntryPrefixConstant+deletedPath)
	}
	changedLines := make([]string, 0, len(changeSet.changed))
	for changedIndex, changedPath := range changeSet.changed {
		changedLines = append(changedLines, strconv.Itoa(changedIndex)+" "+changedPath)
	}

	appendSection(AddingFilesHeader, untrackedLines, styles.Untracked)
	appendSection(DeletingFilesHeader, deletedLines, styles.Deleted)
	appendSection(ChangingFilesHeader, changedLines, styles.Changed)

	return strings.Join(renderedLines, renderLineSeparatorConstant)
}

func applyStyle(style func(string) string, line string) string {
	if style == nil {
		return line
	}
	return style(line)
}

func copyPaths(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	duplicated := make([]string, len(paths))
	copy(duplicated, paths)
	return duplicated
}
