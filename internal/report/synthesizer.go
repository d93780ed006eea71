package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"salesbrief/internal/runlog"
)

// DeptSummary is one department's carried-forward summary for the second
// stage. An empty Summary means the department contributed none; it is
// still listed so the synthesis prompt sees every department.
type DeptSummary struct {
	Department string
	Summary    string
}

// Synthesize runs the second generation stage: it aggregates the per-
// department summaries into one block, asks the model for the framing
// sections (title, executive summary, organizational issues) around the
// detail placeholder token, then performs exactly one literal substitution
// of the token with the joined detail sections.
//
// A shell without the placeholder token is a known model failure mode: the
// splice becomes a no-op and the detail content is dropped from the final
// document. That condition is surfaced as a warning in both logs, never
// hidden.
func Synthesize(ctx context.Context, gen Generator, prompts *Prompts, date string,
	summaries []DeptSummary, details []string, logger *zap.Logger, rlog *runlog.Log) (string, error) {

	var block strings.Builder
	for _, s := range summaries {
		summary := s.Summary
		if summary == "" {
			summary = "(no summary contributed)"
		}
		fmt.Fprintf(&block, "- %s: %s\n", s.Department, summary)
	}

	shell, err := gen.Generate(ctx, prompts.SynthesisPrompt(date, block.String()))
	if err != nil {
		return "", fmt.Errorf("synthesis stage: %w", err)
	}

	detail := strings.Join(details, "\n\n")
	if !strings.Contains(shell, DetailPlaceholder) {
		logger.Warn("synthesis shell is missing the detail placeholder token; detail sections were not spliced",
			zap.String("token", DetailPlaceholder))
		rlog.Step("WARNING: synthesis output missing %s, detail content dropped", DetailPlaceholder)
		return shell, nil
	}
	return strings.Replace(shell, DetailPlaceholder, detail, 1), nil
}
