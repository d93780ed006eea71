package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompts_EmbeddedDefaults(t *testing.T) {
	p, err := LoadPrompts("")
	require.NoError(t, err)

	assert.Contains(t, p.Department, SentinelTag, "department template must instruct the sentinel tag")
	assert.Contains(t, p.Department, "%DEPT%")
	assert.Contains(t, p.Department, "%DATA%")
	assert.Contains(t, p.Synthesis, DetailPlaceholder, "synthesis template must instruct the placeholder token")
	assert.Contains(t, p.Synthesis, "%SUMMARIES%")
}

func TestLoadPrompts_OverrideStripsMaintenanceFooter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.txt")
	body := "Custom instructions %DEPT% %DATA%\n" + MaintenanceMarker + "\nchange history: v3 2026-08-01\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	p, err := LoadPrompts(path)
	require.NoError(t, err)

	assert.Contains(t, p.Department, "Custom instructions")
	assert.NotContains(t, p.Department, "change history")
	assert.NotContains(t, p.Department, MaintenanceMarker)
}

func TestLoadPrompts_OverrideMissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestStripMaintenance_NoMarkerIsIdentity(t *testing.T) {
	in := "plain template, no footer\n"
	assert.Equal(t, in, StripMaintenance(in))
}

func TestPromptComposition(t *testing.T) {
	p := &Prompts{
		Department: "dept=%DEPT% data=%DATA%",
		Synthesis:  "date=%DATE% sums=%SUMMARIES%",
	}

	dept := p.DepartmentPrompt("Sales", "BLOCK")
	if dept != "dept=Sales data=BLOCK" {
		t.Errorf("unexpected department prompt: %q", dept)
	}
	if strings.Contains(dept, "%") {
		t.Errorf("unreplaced placeholder in %q", dept)
	}

	synth := p.SynthesisPrompt("2026-08-30", "S")
	if synth != "date=2026-08-30 sums=S" {
		t.Errorf("unexpected synthesis prompt: %q", synth)
	}
}
