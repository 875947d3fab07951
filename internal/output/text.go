package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/msareview/internal/review"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D9FF"))
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	highStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	mediumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	lowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
)

const divider = "────────────────────────────────────────────────────────────"

// TextWriter outputs a divider-separated list of findings.
type TextWriter struct {
	Color bool
	Steps bool
}

func (t *TextWriter) Write(w io.Writer, res *review.Result) error {
	ew := &errWriter{w: w}

	ew.println(t.render(titleStyle, fmt.Sprintf("MSA Review (%s)", res.Strategy)))
	ew.println(t.render(mutedStyle, fmt.Sprintf("Provider: %s | Run: %s", res.Provider, res.RunID)))

	switch {
	case res.Text != "":
		ew.println(t.render(dividerStyle, divider))
		ew.println(res.Text)
	case len(res.Findings) == 0:
		ew.println(t.render(dividerStyle, divider))
		ew.println("No issues found.")
	default:
		for _, f := range res.Findings {
			ew.println(t.render(dividerStyle, divider))
			ew.printf("%s %s\n", t.render(labelStyle, "Issue:"), f.Issue)
			ew.printf("%s %s\n", t.render(labelStyle, "Reason:"), f.Reason)
			ew.printf("%s %s\n", t.render(labelStyle, "Score:"), t.render(scoreStyle(f.Score), fmt.Sprint(f.Score)))
		}
	}

	if t.Steps && len(res.Steps) > 0 {
		ew.println(t.render(dividerStyle, divider))
		ew.println(t.render(titleStyle, "Intermediate steps"))
		for i, s := range res.Steps {
			ew.printf("\n%s\n", t.render(labelStyle, stepLabel(i, s)))
			for _, line := range strings.Split(strings.TrimSpace(s.Raw), "\n") {
				ew.printf("    %s\n", line)
			}
			if s.Err != "" {
				ew.printf("    %s\n", t.render(highStyle, "dropped: "+s.Err))
			}
		}
	}

	ew.println(t.render(dividerStyle, divider))
	ew.println(t.render(mutedStyle, fmt.Sprintf("Completed in %dms (%d model calls, LLM: %dms)",
		res.Timing.TotalMs, res.Timing.Calls, res.Timing.LLMMs)))

	return ew.err
}

func (t *TextWriter) render(s lipgloss.Style, text string) string {
	if !t.Color {
		return text
	}
	return s.Render(text)
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return highStyle
	case score >= 40:
		return mediumStyle
	default:
		return lowStyle
	}
}

func stepLabel(i int, s review.Step) string {
	switch {
	case s.Input != "":
		return fmt.Sprintf("Step %d: %s", i+1, truncate(s.Input, 60))
	case s.Chunk >= 0:
		return fmt.Sprintf("Step %d: playbook chunk %d", i+1, s.Chunk)
	default:
		return fmt.Sprintf("Step %d", i+1)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
