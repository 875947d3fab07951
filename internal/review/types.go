package review

import "strings"

// Finding is one structured (issue, reason, score) triple parsed from a model
// reply. HasScore is false for formats without a score line.
type Finding struct {
	Issue    string `json:"issue"`
	Reason   string `json:"reason"`
	Score    int    `json:"score"`
	HasScore bool   `json:"-"`
}

// IsNone reports whether the finding is the model's "no issue" answer.
func (f Finding) IsNone() bool {
	issue := strings.TrimSpace(f.Issue)
	return issue == "" || strings.EqualFold(issue, "none")
}

// Step records one intermediate model call: the chunk or segment it covered,
// the raw reply, and the parsed finding or the reason parsing failed.
type Step struct {
	Chunk   int      `json:"chunk"`
	Input   string   `json:"input,omitempty"`
	Raw     string   `json:"raw"`
	Finding *Finding `json:"finding,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// Timing contains performance metrics.
type Timing struct {
	Calls   int   `json:"calls"`
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Summary provides an overview of findings.
type Summary struct {
	Count        int `json:"count"`
	HighestScore int `json:"highestScore"`
}

// Result is the outcome of one review run. Findings are ordered by score,
// highest first. Text is the free-text answer of strategies that produce
// one (map-reduce) and is presented as-is.
type Result struct {
	Tool     string    `json:"tool"`
	Version  string    `json:"version"`
	RunID    string    `json:"runId"`
	Strategy string    `json:"strategy"`
	Provider string    `json:"provider"`
	Summary  Summary   `json:"summary"`
	Findings []Finding `json:"findings"`
	Text     string    `json:"text,omitempty"`
	Steps    []Step    `json:"steps,omitempty"`
	Timing   Timing    `json:"timing"`
}

// ComputeSummary calculates the summary from findings.
func ComputeSummary(findings []Finding) Summary {
	s := Summary{Count: len(findings)}
	for _, f := range findings {
		if f.Score > s.HighestScore {
			s.HighestScore = f.Score
		}
	}
	return s
}

// MeetsThreshold returns true if any finding scores at or above threshold.
// A threshold of 0 or less disables the check.
func MeetsThreshold(findings []Finding, threshold int) bool {
	if threshold <= 0 {
		return false
	}
	for _, f := range findings {
		if f.Score >= threshold {
			return true
		}
	}
	return false
}
