package output

import (
	"io"
	"strings"

	"github.com/dshills/msareview/internal/review"
)

// MarkdownWriter outputs a markdown report with a summary table and one
// section per finding.
type MarkdownWriter struct {
	Steps bool
}

func (m *MarkdownWriter) Write(w io.Writer, res *review.Result) error {
	ew := &errWriter{w: w}

	ew.printf("## MSA Review\n\n")
	ew.printf("| Strategy | Provider | Findings | Highest score |\n")
	ew.printf("|----------|----------|----------|---------------|\n")
	ew.printf("| %s | %s | %d | %d |\n\n", res.Strategy, res.Provider, res.Summary.Count, res.Summary.HighestScore)

	switch {
	case res.Text != "":
		ew.printf("%s\n\n", res.Text)
	case len(res.Findings) == 0:
		ew.println("No issues found. :white_check_mark:")
		ew.println("")
	default:
		for _, f := range res.Findings {
			ew.printf("### %s %s\n\n", mdScoreIcon(f.Score), mdEscape(f.Issue))
			ew.printf("**Score:** %d\n\n", f.Score)
			ew.printf("> %s\n\n", strings.ReplaceAll(mdEscape(f.Reason), "\n", "\n> "))
			ew.printf("---\n\n")
		}
	}

	if m.Steps && len(res.Steps) > 0 {
		ew.printf("<details>\n<summary>Intermediate steps (%d)</summary>\n\n", len(res.Steps))
		for i, s := range res.Steps {
			ew.printf("**%s**\n\n", stepLabel(i, s))
			ew.printf("```\n%s\n```\n\n", strings.TrimSpace(s.Raw))
			if s.Err != "" {
				ew.printf("*Dropped: %s*\n\n", s.Err)
			}
		}
		ew.printf("</details>\n\n")
	}

	ew.printf("*Reviewed in %dms (%d model calls, LLM: %dms)*\n",
		res.Timing.TotalMs, res.Timing.Calls, res.Timing.LLMMs)

	return ew.err
}

func mdScoreIcon(score int) string {
	switch {
	case score >= 70:
		return ":red_circle:"
	case score >= 40:
		return ":orange_circle:"
	default:
		return ":yellow_circle:"
	}
}

var mdReplacer = strings.NewReplacer("|", `\|`, "<", "&lt;", ">", "&gt;")

func mdEscape(s string) string {
	return mdReplacer.Replace(s)
}
