package review

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// templatePack is the YAML layout of a template pack file.
type templatePack struct {
	Templates []templateSpec `yaml:"templates"`
}

type templateSpec struct {
	ID        string      `yaml:"id"`
	Text      string      `yaml:"text"`
	Variables []string    `yaml:"variables"`
	Format    *formatSpec `yaml:"format,omitempty"`
}

type formatSpec struct {
	Pattern string   `yaml:"pattern"`
	Fields  []string `yaml:"fields"`
}

var knownFields = map[string]bool{"issue": true, "reason": true, "score": true}

// LoadTemplates returns the built-in templates overridden by the pack at
// path. An empty path returns the built-ins.
func LoadTemplates(path string) (*Templates, error) {
	t := NewTemplates()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template pack: %w", err)
	}
	var pack templatePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing template pack: %w", err)
	}
	for _, spec := range pack.Templates {
		tpl, err := spec.compile()
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", spec.ID, err)
		}
		if err := t.Override(tpl); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Override replaces or adds a template. A template replacing a built-in
// with a structured reply must keep a structured reply, since the strategy
// using it parses the output.
func (t *Templates) Override(tpl Template) error {
	if tpl.ID == "" {
		return fmt.Errorf("template id is required")
	}
	for _, v := range tpl.Variables {
		if !strings.Contains(tpl.Text, "{"+v+"}") {
			return fmt.Errorf("template %q: variable %q has no {%s} slot", tpl.ID, v, v)
		}
	}
	if prev, ok := t.byID[tpl.ID]; ok && prev.Format != nil && tpl.Format == nil {
		return fmt.Errorf("template %q: an output format is required", tpl.ID)
	}
	if tpl.Format != nil {
		if err := validateFormat(*tpl.Format); err != nil {
			return fmt.Errorf("template %q: %w", tpl.ID, err)
		}
		if prev, ok := t.byID[tpl.ID]; ok && prev.Format != nil && prev.Format.captures("score") && !tpl.Format.captures("score") {
			return fmt.Errorf("template %q: output format must capture score", tpl.ID)
		}
	}
	t.byID[tpl.ID] = tpl
	return nil
}

func (s templateSpec) compile() (Template, error) {
	tpl := Template{ID: s.ID, Text: s.Text, Variables: s.Variables}
	if s.Format == nil {
		return tpl, nil
	}
	re, err := regexp.Compile(s.Format.Pattern)
	if err != nil {
		return Template{}, fmt.Errorf("compiling output pattern: %w", err)
	}
	tpl.Format = &OutputFormat{Name: s.ID, Pattern: re, Fields: s.Format.Fields}
	return tpl, nil
}

func (f OutputFormat) captures(field string) bool {
	for _, name := range f.Fields {
		if name == field {
			return true
		}
	}
	return false
}

func validateFormat(f OutputFormat) error {
	if f.Pattern == nil {
		return fmt.Errorf("output pattern is required")
	}
	if n := f.Pattern.NumSubexp(); n != len(f.Fields) {
		return fmt.Errorf("output pattern has %d capture groups but names %d fields", n, len(f.Fields))
	}
	seen := make(map[string]bool, len(f.Fields))
	for _, name := range f.Fields {
		if !knownFields[name] {
			return fmt.Errorf("unknown output field %q", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate output field %q", name)
		}
		seen[name] = true
	}
	if !seen["issue"] || !seen["reason"] {
		return fmt.Errorf("output format must capture issue and reason")
	}
	return nil
}
