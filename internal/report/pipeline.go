package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"salesbrief/internal/config"
	"salesbrief/internal/document"
	"salesbrief/internal/gemini"
	"salesbrief/internal/markdown"
	"salesbrief/internal/runlog"
	"salesbrief/internal/workbook"
)

// Generator is the generation surface the pipeline depends on. The gemini
// client implements it; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateBatch(ctx context.Context, reqs []gemini.BatchRequest) []gemini.BatchResult
}

// Pipeline is the single-shot report synthesis run. All collaborators are
// handed in at construction; nothing is read from globals.
type Pipeline struct {
	cfg     *config.Config
	gen     Generator
	prompts *Prompts
	logger  *zap.Logger
	rlog    *runlog.Log

	now   func() time.Time // test seam for the wall-clock budget
	start time.Time
}

// NewPipeline wires a pipeline. A nil logger becomes a no-op logger; a nil
// run log gets a fresh one.
func NewPipeline(cfg *config.Config, gen Generator, prompts *Prompts, logger *zap.Logger, rlog *runlog.Log) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rlog == nil {
		rlog = runlog.New()
	}
	return &Pipeline{
		cfg:     cfg,
		gen:     gen,
		prompts: prompts,
		logger:  logger,
		rlog:    rlog,
		now:     time.Now,
	}
}

// Run executes the two-stage synthesis over the given tables and returns
// the rendered document for the report date.
//
// Failure policy: a single group's generation failure is logged and
// replaced by a visible error section, and the run completes. Budget
// exhaustion and second-stage failure abort the run.
func (p *Pipeline) Run(ctx context.Context, tables *workbook.Tables, date time.Time) (*document.Document, error) {
	p.start = p.now()

	groups := GroupRows(tables, p.cfg.Pipeline.UnknownStaffPolicy, p.logger)
	p.rlog.Step("grouped %d activity rows into %d departments", len(tables.Activity), len(groups))
	if len(groups) == 0 {
		return nil, fmt.Errorf("report: no departments after grouping")
	}

	reqs := make([]gemini.BatchRequest, len(groups))
	for i, g := range groups {
		reqs[i] = gemini.BatchRequest{
			Key:    g.Department,
			Prompt: p.prompts.DepartmentPrompt(g.Department, EncodeGroup(g)),
		}
	}

	if err := p.checkBudget(); err != nil {
		return nil, err
	}

	p.rlog.Step("stage one: generating %d department sections (%s mode)", len(reqs), p.cfg.Pipeline.Mode)
	results := p.dispatch(ctx, reqs)

	details := make([]string, 0, len(results))
	summaries := make([]DeptSummary, 0, len(results))
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			p.logGroupFailure(res.Key, res.Err)
			details = append(details, errorSection(res.Key))
			summaries = append(summaries, DeptSummary{Department: res.Key})
			continue
		}
		split := SplitAtTag(res.Text, SentinelTag)
		details = append(details, split.Detail)
		summaries = append(summaries, DeptSummary{Department: res.Key, Summary: split.Summary})
	}
	p.rlog.Step("stage one complete: %d sections, %d failed", len(results), failed)

	if err := p.checkBudget(); err != nil {
		return nil, err
	}

	p.rlog.Step("stage two: synthesizing framing sections")
	final, err := Synthesize(ctx, p.gen, p.prompts, date.Format("2006-01-02"), summaries, details, p.logger, p.rlog)
	if err != nil {
		return nil, err
	}

	doc := markdown.Render(final)
	doc.Title = fmt.Sprintf("%s %s", p.cfg.Output.Prefix, date.Format("2006-01-02"))
	p.rlog.Step("rendered document with %d blocks", len(doc.Blocks))
	return doc, nil
}

// dispatch runs stage one in the configured concurrency shape. Both modes
// return results positionally correlated to the requests.
func (p *Pipeline) dispatch(ctx context.Context, reqs []gemini.BatchRequest) []gemini.BatchResult {
	if p.cfg.Pipeline.Mode == config.ModeFanOut {
		return p.gen.GenerateBatch(ctx, reqs)
	}

	results := make([]gemini.BatchResult, len(reqs))
	for i, r := range reqs {
		text, err := p.gen.Generate(ctx, r.Prompt)
		results[i] = gemini.BatchResult{Key: r.Key, Text: text, Err: err}
	}
	return results
}

// checkBudget guards expensive stages against the wall-clock budget.
func (p *Pipeline) checkBudget() error {
	elapsed := p.now().Sub(p.start)
	budget := p.cfg.GetTimeBudget()
	if elapsed > budget {
		return &TimeBudgetError{Elapsed: elapsed, Budget: budget}
	}
	return nil
}

// logGroupFailure records a tolerated per-group failure with its key and,
// where available, the HTTP status. Error text from the client is already
// key-redacted.
func (p *Pipeline) logGroupFailure(key string, err error) {
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		p.logger.Error("department generation failed",
			zap.String("department", key), zap.Int("status", apiErr.Status))
		p.rlog.Step("department %q failed: HTTP %d", key, apiErr.Status)
		return
	}
	p.logger.Error("department generation failed", zap.String("department", key), zap.Error(err))
	p.rlog.Step("department %q failed: %v", key, err)
}

// errorSection is the visible stand-in for a failed department, keeping
// the document structure complete.
func errorSection(dept string) string {
	return fmt.Sprintf("### %s\n\n(section could not be generated; see run log)", dept)
}
