package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/temirov/gikkon/internal/changeset"
	"github.com/temirov/gikkon/internal/filesync"
)

const (
	insertedLinePrefixConstant        = "+"
	removedLinePrefixConstant         = "-"
	unchangedLinePrefixConstant       = " "
	lineSeparatorConstant             = "\n"
	driftMirrorHeaderTemplateConstant = "--- %s"
	driftLiveHeaderTemplateConstant   = "+++ %s"
	driftLiveMissingMessageConstant   = "live file is missing"
	driftBinaryMessageConstant        = "binary files differ"
	driftCleanMessageConstant         = "Live files match the mirror."
	colorAddedConstant                = "2"
	colorRemovedConstant              = "1"
	colorChangedConstant              = "3"
	colorNoticeConstant               = "8"
)

// Presenter renders change sets and drift previews with terminal styling.
type Presenter struct {
	plainStyle   lipgloss.Style
	headerStyle  lipgloss.Style
	addedStyle   lipgloss.Style
	removedStyle lipgloss.Style
	changedStyle lipgloss.Style
	noticeStyle  lipgloss.Style
}

// NewPresenter builds a Presenter whose color profile follows the writer the output is destined for.
func NewPresenter(writer io.Writer) *Presenter {
	renderer := lipgloss.NewRenderer(writer)
	return &Presenter{
		plainStyle:   renderer.NewStyle(),
		headerStyle:  renderer.NewStyle().Bold(true),
		addedStyle:   renderer.NewStyle().Foreground(lipgloss.Color(colorAddedConstant)),
		removedStyle: renderer.NewStyle().Foreground(lipgloss.Color(colorRemovedConstant)),
		changedStyle: renderer.NewStyle().Foreground(lipgloss.Color(colorChangedConstant)),
		noticeStyle:  renderer.NewStyle().Faint(true).Foreground(lipgloss.Color(colorNoticeConstant)),
	}
}

// RenderChangeSet lays out the change set like changeset.ChangeSet.Render with each section colored.
func (presenter *Presenter) RenderChangeSet(changeSet changeset.ChangeSet) string {
	return changeSet.RenderWith(changeset.LineStyles{
		Header:    styleHook(presenter.headerStyle),
		Untracked: styleHook(presenter.addedStyle),
		Deleted:   styleHook(presenter.removedStyle),
		Changed:   styleHook(presenter.changedStyle),
	})
}

func styleHook(style lipgloss.Style) func(string) string {
	return func(line string) string {
		return style.Render(line)
	}
}

// RenderDrift formats a unified-style listing of every drifting file.
func (presenter *Presenter) RenderDrift(drifts []filesync.FileDrift) string {
	if len(drifts) == 0 {
		return presenter.noticeStyle.Render(driftCleanMessageConstant) + lineSeparatorConstant
	}

	var builder strings.Builder
	for _, drift := range drifts {
		builder.WriteString(presenter.headerStyle.Render(fmt.Sprintf(driftMirrorHeaderTemplateConstant, drift.MirrorPath)))
		builder.WriteString(lineSeparatorConstant)
		builder.WriteString(presenter.headerStyle.Render(fmt.Sprintf(driftLiveHeaderTemplateConstant, drift.LivePath)))
		builder.WriteString(lineSeparatorConstant)

		switch {
		case drift.LiveMissing:
			builder.WriteString(presenter.noticeStyle.Render(driftLiveMissingMessageConstant))
			builder.WriteString(lineSeparatorConstant)
		case drift.Binary:
			builder.WriteString(presenter.noticeStyle.Render(driftBinaryMessageConstant))
			builder.WriteString(lineSeparatorConstant)
		default:
			for _, diff := range drift.Diffs {
				presenter.writeDiffLines(&builder, diff)
			}
		}
		builder.WriteString(lineSeparatorConstant)
	}
	return builder.String()
}

func (presenter *Presenter) writeDiffLines(builder *strings.Builder, diff diffmatchpatch.Diff) {
	prefix := unchangedLinePrefixConstant
	style := presenter.plainStyle
	switch diff.Type {
	case diffmatchpatch.DiffInsert:
		prefix = insertedLinePrefixConstant
		style = presenter.addedStyle
	case diffmatchpatch.DiffDelete:
		prefix = removedLinePrefixConstant
		style = presenter.removedStyle
	}

	for _, line := range strings.SplitAfter(diff.Text, lineSeparatorConstant) {
		if len(line) == 0 {
			continue
		}
		builder.WriteString(style.Render(prefix + strings.TrimSuffix(line, lineSeparatorConstant)))
		builder.WriteString(lineSeparatorConstant)
	}
}
