package review

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse extracts one finding from a raw model reply. Labels are matched
// exactly as the format's pattern spells them; captured fields are trimmed.
// A reply that does not match yields a *ParseError and no finding.
func Parse(raw string, format OutputFormat) (Finding, error) {
	m := format.Pattern.FindStringSubmatch(raw)
	if m == nil {
		return Finding{}, &ParseError{Raw: raw, Reason: fmt.Sprintf("reply does not match %s format", format.Name)}
	}
	return findingFromGroups(raw, format, m[1:])
}

// ParseAll extracts every finding in a reply that lists several. A reply
// with no match yields a *ParseError; any unparsable score fails the whole
// reply.
func ParseAll(raw string, format OutputFormat) ([]Finding, error) {
	matches := format.Pattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil, &ParseError{Raw: raw, Reason: fmt.Sprintf("reply does not match %s format", format.Name)}
	}
	findings := make([]Finding, 0, len(matches))
	for _, m := range matches {
		f, err := findingFromGroups(raw, format, m[1:])
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func findingFromGroups(raw string, format OutputFormat, groups []string) (Finding, error) {
	var f Finding
	for i, name := range format.Fields {
		value := strings.TrimSpace(groups[i])
		switch name {
		case "issue":
			f.Issue = value
		case "reason":
			f.Reason = value
		case "score":
			score, err := parseScore(value)
			if err != nil {
				return Finding{}, &ParseError{Raw: raw, Reason: err.Error()}
			}
			f.Score = score
			f.HasScore = true
		}
	}
	return f, nil
}

// parseScore accepts "None" (no issue) or an integer in [0, 100].
func parseScore(s string) (int, error) {
	if s == "None" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("score %q is not an integer", s)
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("score %d is outside 0-100", n)
	}
	return n, nil
}
