package review

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Built-in template IDs.
const (
	TemplateRerank       = "rerank"
	TemplateQuestion     = "question"
	TemplateCombine      = "combine"
	TemplateSingle       = "single"
	TemplateSessionTurn  = "session-turn"
	TemplateSessionFinal = "session-final"
)

// OutputFormat is the reply format a template asks the model for. Pattern
// must expose one capture group per entry in Fields, in order. Recognised
// field names are "issue", "reason", and "score".
type OutputFormat struct {
	Name    string
	Pattern *regexp.Regexp
	Fields  []string
}

// Output formats shared by the built-in templates. The field labels are a
// wire contract with the template text.
var (
	IssueReasonScore = OutputFormat{
		Name:    "issue-reason-score",
		Pattern: regexp.MustCompile(`.*?Issue:(.*)\nReason:(.*)\nScore:(.*)`),
		Fields:  []string{"issue", "reason", "score"},
	}
	IssueReason = OutputFormat{
		Name:    "issue-reason",
		Pattern: regexp.MustCompile(`.*?Issue:(.*)\nReason:(.*)`),
		Fields:  []string{"issue", "reason"},
	}
	IssuesReasonScore = OutputFormat{
		Name:    "issues-reason-score",
		Pattern: regexp.MustCompile(`Issues: (.*?)\nReason: (.*?)\nScore: (.*)`),
		Fields:  []string{"issue", "reason", "score"},
	}
)

// Template is a fixed instruction text with {name} substitution slots.
// Format is nil for templates whose reply is consumed as free text.
type Template struct {
	ID        string
	Text      string
	Variables []string
	Format    *OutputFormat
}

// Templates is a registry of templates by ID.
type Templates struct {
	byID map[string]Template
}

// NewTemplates returns a registry holding the built-in templates.
func NewTemplates() *Templates {
	t := &Templates{byID: make(map[string]Template)}
	for _, tpl := range builtinTemplates() {
		t.byID[tpl.ID] = tpl
	}
	return t
}

// Get returns the template with the given ID.
func (t *Templates) Get(id string) (Template, error) {
	tpl, ok := t.byID[id]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q", id)
	}
	return tpl, nil
}

// IDs returns the registered template IDs, sorted.
func (t *Templates) IDs() []string {
	ids := make([]string, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build renders template id with vars. Every declared variable must be
// present; undeclared keys are ignored. Text outside the declared slots,
// including other braces, is left untouched.
func (t *Templates) Build(id string, vars map[string]string) (string, error) {
	tpl, err := t.Get(id)
	if err != nil {
		return "", err
	}
	pairs := make([]string, 0, 2*len(tpl.Variables))
	for _, name := range tpl.Variables {
		v, ok := vars[name]
		if !ok {
			return "", &InputError{Field: name, Reason: fmt.Sprintf("template %q requires variable %q", id, name)}
		}
		pairs = append(pairs, "{"+name+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl.Text), nil
}

func builtinTemplates() []Template {
	return []Template{
		{
			ID:        TemplateRerank,
			Text:      rerankTemplate,
			Variables: []string{"context", "msa_section"},
			Format:    &IssueReasonScore,
		},
		{
			ID:        TemplateQuestion,
			Text:      questionTemplate,
			Variables: []string{"context", "msa_section"},
			Format:    &IssueReason,
		},
		{
			ID:        TemplateCombine,
			Text:      combineTemplate,
			Variables: []string{"summaries", "msa_section", "limit"},
		},
		{
			ID:        TemplateSingle,
			Text:      singleTemplate,
			Variables: []string{"context", "msa_section"},
			Format:    &IssuesReasonScore,
		},
		{
			ID:        TemplateSessionTurn,
			Text:      sessionTurnTemplate,
			Variables: []string{"context", "msa_section"},
		},
		{
			ID:        TemplateSessionFinal,
			Text:      sessionFinalTemplate,
			Variables: []string{"context", "notes"},
			Format:    &IssueReasonScore,
		},
	}
}

const rerankTemplate = `
MSA Playbook: generally acceptable and unacceptable changes
{context}

MSA Section to Review:
{msa_section}

Query: As a paralegal representing the Service Provider, identify language in the MSA section that is unacceptable based on the playbook guidelines.
Answer with issue, reason, and score.

Use this exact format to answer:
Issue: [Unacceptable language found]
Reason: [Why language is unacceptable]
Score: [Severity of the issue, on a scale of 1 to 100]

If no issues are found, respond with:
Issue: None
Reason: None
Score: 0
`

const questionTemplate = `Portion of MSA Playbook (generally acceptable and unacceptable changes):
{context}

MSA Section to Review:
{msa_section}

Query: As a paralegal representing the Service Provider, identify language in the given MSA section that is unacceptable
for the Service Provider based on the playbook's guidelines.
This review covers one segment of the MSA, so clauses missing from the overall MSA are not issues here.
If no issues are found, don't make up any.

Use this exact format to answer:
Issue: [Unacceptable language found]
Reason: [Reason why the language is unacceptable]

If no issues are found, respond with:
Issue: None
Reason: None
`

const combineTemplate = `
Given the following extracted parts of a MSA playbook review and a MSA draft section, create a final answer that lists up to {limit}
unique issues with the MSA section, and why the language is unacceptable.
List in order of issue severity, and be concise. If any issues are similar, combine them into a single issue.
Don't make up more issues if fewer than {limit} are found.

MSA Section to Review:
{msa_section}
=========
{summaries}
=========
Final answer:`

const singleTemplate = `Use the following pieces of context to identify unacceptable language within a section of an MSA, and why it is unacceptable.
In addition to the issue and the reason, return a score for how confident you are that issues are present.
If no issue is found, answer "None" for issues and reason, and 0 for score.
Use the exact format below to answer:

Issues: [answer here, "None" if none]
Reason: [reason for answer, "None" if none]
Score: [score between 0 and 100]

Begin!

Context:
---------
{context}
---------
MSA Section: {msa_section}
Any unacceptable language found, and why it is unacceptable:`

const sessionTurnTemplate = `The following is one part of an MSA draft. Compare it with the MSA Review Playbook excerpts below.
Note any potential issues with this part in one or two sentences, or answer "None".

MSA Review Playbook excerpts:
{context}

MSA draft part:
{msa_section}

Notes:`

const sessionFinalTemplate = `END OF FILE. You have now seen every part of the MSA draft.
Compare the draft with the MSA Review Playbook and return every potential problem.

MSA Review Playbook excerpts:
{context}

Notes taken while reading the draft:
{notes}

List each problem in this exact format, separated by a blank line:
Issue: [Unacceptable language found]
Reason: [Why language is unacceptable]
Score: [Severity of the issue, on a scale of 1 to 100]

If no problems are found, respond with:
Issue: None
Reason: None
Score: 0
`
