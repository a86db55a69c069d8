package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/jedib0t/go-pretty/v6/table"

	"patchcheck/internal/pipeline"
)

// Output formats accepted by Summary.Render.
const (
	FormatRich  = "rich"
	FormatLight = "light"
	FormatPlain = "plain"
)

const summaryWidth = 80

// Summary collects outcomes and renders an end-of-run table.
type Summary struct {
	mu       sync.Mutex
	outcomes []pipeline.Outcome
}

// Report implements pipeline.Reporter.
func (s *Summary) Report(o pipeline.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
}

// Outcomes returns the collected outcomes in report order.
func (s *Summary) Outcomes() []pipeline.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pipeline.Outcome(nil), s.outcomes...)
}

// Render returns the summary table in the given format. rich and light are
// rendered as markdown through glamour; anything else is a plain table.
func (s *Summary) Render(format string) string {
	outcomes := s.Outcomes()
	if len(outcomes) == 0 {
		return ""
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Game", "Status", "Installed", "Latest"})
	for _, o := range outcomes {
		t.AppendRow(table.Row{o.Game, o.Status.String(), orDash(o.Installed), orDash(o.Latest)})
	}
	totals := Totals(outcomes)

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == FormatRich {
		style = "dark"
	}
	if style == FormatPlain {
		t.SetStyle(table.StyleLight)
		return t.Render() + "\n" + totals
	}

	markdown := t.RenderMarkdown() + "\n\n" + totals
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(summaryWidth),
	)
	if err != nil {
		t.SetStyle(table.StyleLight)
		return t.Render() + "\n" + totals
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimSpace(out)
}

// Totals returns a one-line count of outcomes by kind.
func Totals(outcomes []pipeline.Outcome) string {
	var upToDate, updates, skipped int
	for _, o := range outcomes {
		switch {
		case o.Status == pipeline.StatusUpToDate:
			upToDate++
		case o.Status == pipeline.StatusUpdateAvailable:
			updates++
		case o.Status.Skipped():
			skipped++
		}
	}
	return fmt.Sprintf("%d checked: %d up to date, %d update available, %d skipped",
		len(outcomes), upToDate, updates, skipped)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
