// Package report renders pipeline outcomes for the console.
//
// Reporters are independent of the pipeline: each implements
// pipeline.Reporter and decides on its own how an outcome looks.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/termenv"

	"patchcheck/internal/pipeline"
)

const (
	markOK   = "[✓]"
	markFail = "[X]"

	detailIndent = 4
)

// Text writes one styled line per outcome, with an indented detail block
// for available updates.
type Text struct {
	w  io.Writer
	mu sync.Mutex

	okStyle      lipgloss.Style
	errorStyle   lipgloss.Style
	noticeStyle  lipgloss.Style
	versionStyle lipgloss.Style
}

// TextOption configures a Text reporter.
type TextOption func(*lipgloss.Renderer)

// WithColor forces color on or off instead of detecting it from the writer.
func WithColor(enabled bool) TextOption {
	return func(r *lipgloss.Renderer) {
		if enabled {
			r.SetColorProfile(termenv.ANSI)
		} else {
			r.SetColorProfile(termenv.Ascii)
		}
	}
}

// NewText creates a Text reporter writing to w.
func NewText(w io.Writer, opts ...TextOption) *Text {
	r := lipgloss.NewRenderer(w)
	for _, opt := range opts {
		opt(r)
	}
	return &Text{
		w:            w,
		okStyle:      r.NewStyle().Foreground(lipgloss.Color("10")),
		errorStyle:   r.NewStyle().Foreground(lipgloss.Color("9")),
		noticeStyle:  r.NewStyle().Bold(true),
		versionStyle: r.NewStyle().Bold(true).Underline(true),
	}
}

// Report implements pipeline.Reporter.
func (t *Text) Report(o pipeline.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, t.render(o))
}

func (t *Text) render(o pipeline.Outcome) string {
	switch o.Status {
	case pipeline.StatusUpToDate:
		return t.okStyle.Render(fmt.Sprintf("%s %s", markOK, Headline(o)))
	case pipeline.StatusUpdateAvailable:
		details := fmt.Sprintf("%s %s\n%s %s",
			markFail, t.versionStyle.Render("Latest: v"+o.Latest),
			markFail, t.versionStyle.Render("Installed: v"+o.Installed))
		return t.noticeStyle.Render(fmt.Sprintf("%s %s", markFail, Headline(o))) + "\n" +
			indent.String(details, detailIndent)
	default:
		line := fmt.Sprintf("%s %s", markFail, Headline(o))
		if o.Err != nil {
			line += fmt.Sprintf(" (%v)", o.Err)
		}
		return t.errorStyle.Render(line)
	}
}

// Headline is the one-line description of an outcome, without markers.
func Headline(o pipeline.Outcome) string {
	switch o.Status {
	case pipeline.StatusNotInstalled:
		return fmt.Sprintf("%s not found on disk", o.Game)
	case pipeline.StatusVersionUnreadable:
		return fmt.Sprintf("Version for game %s not found, broken game installation metadata file", o.Game)
	case pipeline.StatusFeedUnavailable:
		return fmt.Sprintf("Source of truth for game %s not available, please try again.", o.Game)
	case pipeline.StatusLatestUnknown:
		return fmt.Sprintf("Latest version for game %s not found, please try again.", o.Game)
	case pipeline.StatusUpToDate:
		return fmt.Sprintf("%s is up to date", o.Game)
	case pipeline.StatusUpdateAvailable:
		return fmt.Sprintf("Major update available for %s:", o.Game)
	default:
		return fmt.Sprintf("%s: unknown status", o.Game)
	}
}
