package report

import (
	"embed"
	"fmt"
	"os"
	"strings"
)

// Wire contract between the pipeline and the model. These are versioned
// protocol constants: the department prompt instructs the model to emit
// SentinelTag between detail and summary, and the synthesis prompt
// instructs it to emit DetailPlaceholder where detail content is spliced.
// Changing either breaks compatibility with prompt template overrides.
const (
	SentinelTag       = "【DEPT_SUMMARY】"
	DetailPlaceholder = "{{DETAIL_PLACEHOLDER}}"
)

// MaintenanceMarker delimits an optional maintenance/footer section in
// prompt template override files. Everything from the marker on is
// stripped before the template is used.
const MaintenanceMarker = "====MAINTENANCE===="

// embeddedPrompts holds the built-in templates so the packaged binary
// works without access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

// Prompts holds the two stage templates.
type Prompts struct {
	Department string // placeholders: %DEPT%, %DATA%
	Synthesis  string // placeholders: %DATE%, %SUMMARIES%
}

// LoadPrompts returns the embedded templates, or the contents of
// overridePath (maintenance footer stripped) for the department stage when
// the path is non-empty. The synthesis template is always the embedded one.
func LoadPrompts(overridePath string) (*Prompts, error) {
	dept, err := embeddedPrompts.ReadFile("prompts/department.txt")
	if err != nil {
		return nil, fmt.Errorf("embedded department prompt: %w", err)
	}
	synth, err := embeddedPrompts.ReadFile("prompts/synthesis.txt")
	if err != nil {
		return nil, fmt.Errorf("embedded synthesis prompt: %w", err)
	}

	p := &Prompts{
		Department: string(dept),
		Synthesis:  string(synth),
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("prompt template %s: %w", overridePath, err)
		}
		p.Department = StripMaintenance(string(data))
	}
	return p, nil
}

// StripMaintenance removes the maintenance footer from a template, if
// present, and trims trailing whitespace left behind.
func StripMaintenance(template string) string {
	body, _, found := strings.Cut(template, MaintenanceMarker)
	if !found {
		return template
	}
	return strings.TrimRight(body, " \t\n") + "\n"
}

// DepartmentPrompt composes the first-stage prompt for one group.
func (p *Prompts) DepartmentPrompt(dept, dataBlock string) string {
	s := strings.ReplaceAll(p.Department, "%DEPT%", dept)
	return strings.ReplaceAll(s, "%DATA%", dataBlock)
}

// SynthesisPrompt composes the second-stage prompt over all summaries.
func (p *Prompts) SynthesisPrompt(date, summaryBlock string) string {
	s := strings.ReplaceAll(p.Synthesis, "%DATE%", date)
	return strings.ReplaceAll(s, "%SUMMARIES%", summaryBlock)
}
