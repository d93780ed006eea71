package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"salesbrief/internal/gemini"
	"salesbrief/internal/runlog"
)

// stubGen answers department prompts via dept and the synthesis prompt via
// synth. GenerateBatch mirrors the gemini client's positional contract.
type stubGen struct {
	dept  func(key, prompt string) (string, error)
	synth func(prompt string) (string, error)
}

func (s *stubGen) Generate(ctx context.Context, prompt string) (string, error) {
	if s.dept == nil || (s.synth != nil && strings.Contains(prompt, "Department summaries:")) {
		if s.synth == nil {
			return "", errors.New("stub: no handler")
		}
		return s.synth(prompt)
	}
	return s.dept("", prompt)
}

func (s *stubGen) GenerateBatch(ctx context.Context, reqs []gemini.BatchRequest) []gemini.BatchResult {
	results := make([]gemini.BatchResult, len(reqs))
	for i, r := range reqs {
		text, err := s.dept(r.Key, r.Prompt)
		results[i] = gemini.BatchResult{Key: r.Key, Text: text, Err: err}
	}
	return results
}

func TestSynthesize_SplicesDetailOnce(t *testing.T) {
	gen := &stubGen{synth: func(prompt string) (string, error) {
		if !strings.Contains(prompt, "- Sales: good day") {
			t.Errorf("summary block missing from synthesis prompt:\n%s", prompt)
		}
		return "TOP\n" + DetailPlaceholder + "\nBOTTOM", nil
	}}

	p, err := LoadPrompts("")
	if err != nil {
		t.Fatal(err)
	}

	out, err := Synthesize(context.Background(), gen, p, "2026-08-30",
		[]DeptSummary{{Department: "Sales", Summary: "good day"}},
		[]string{"### Sales\ndetail body"}, zap.NewNop(), runlog.New())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if strings.Contains(out, DetailPlaceholder) {
		t.Error("placeholder token must be consumed by the splice")
	}
	if !strings.Contains(out, "detail body") {
		t.Error("detail content missing from spliced output")
	}
	if !strings.HasPrefix(out, "TOP") || !strings.HasSuffix(out, "BOTTOM") {
		t.Errorf("framing sections corrupted: %q", out)
	}
}

func TestSynthesize_EmptySummaryMarked(t *testing.T) {
	var captured string
	gen := &stubGen{synth: func(prompt string) (string, error) {
		captured = prompt
		return DetailPlaceholder, nil
	}}

	p := &Prompts{Synthesis: "%DATE%\n%SUMMARIES%"}
	_, err := Synthesize(context.Background(), gen, p, "2026-08-30",
		[]DeptSummary{{Department: "Support"}}, nil, zap.NewNop(), runlog.New())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(captured, "Support: (no summary contributed)") {
		t.Errorf("empty summaries must be visibly marked:\n%s", captured)
	}
}

func TestSynthesize_MissingPlaceholderWarnsAndKeepsShell(t *testing.T) {
	gen := &stubGen{synth: func(prompt string) (string, error) {
		return "shell without the token", nil
	}}

	rlog := runlog.New()
	p := &Prompts{Synthesis: "%DATE% %SUMMARIES%"}
	out, err := Synthesize(context.Background(), gen, p, "2026-08-30",
		[]DeptSummary{{Department: "Sales", Summary: "s"}},
		[]string{"detail"}, zap.NewNop(), rlog)
	if err != nil {
		t.Fatalf("missing placeholder must not be an error: %v", err)
	}
	if out != "shell without the token" {
		t.Errorf("shell must pass through unchanged, got %q", out)
	}

	warned := false
	for _, line := range rlog.Lines() {
		if strings.Contains(line, "WARNING") && strings.Contains(line, DetailPlaceholder) {
			warned = true
		}
	}
	if !warned {
		t.Error("dropped detail content must be surfaced in the run log")
	}
}

func TestSynthesize_StageTwoFailureIsFatal(t *testing.T) {
	gen := &stubGen{synth: func(prompt string) (string, error) {
		return "", &gemini.APIError{Status: 500, Body: "boom"}
	}}

	p := &Prompts{Synthesis: "%DATE% %SUMMARIES%"}
	_, err := Synthesize(context.Background(), gen, p, "2026-08-30", nil, nil, zap.NewNop(), runlog.New())
	if err == nil {
		t.Fatal("expected stage-two failure to propagate")
	}
	var apiErr *gemini.APIError
	if !errors.As(err, &apiErr) {
		t.Errorf("typed error lost: %v", err)
	}
}
