package enhance

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/aivis-cli/internal/model"
	"github.com/sells-group/aivis-cli/internal/scorer"
)

// Outcome carries the all-settled results of the three independent AI
// sub-tasks plus their diagnostics. A nil/zero field means that task failed
// and the deterministic output stands.
type Outcome struct {
	AEO         *model.DimensionResult
	LlmsTxt     string
	LlmsFullTxt string
	JSONLD      map[string]string
	Diagnostics []model.AIDiagnostic
}

// Succeeded reports whether at least one sub-task completed.
func (o *Outcome) Succeeded() bool {
	for _, d := range o.Diagnostics {
		if d.Success {
			return true
		}
	}
	return false
}

// RunAll fires the three independent sub-tasks concurrently and joins them
// all-settled: a failing or panicking task records a diagnostic and leaves
// the others untouched.
func (e *Enhancer) RunAll(ctx context.Context, detAEO model.DimensionResult, crawl *model.CrawlResult, pages []scorer.Page) *Outcome {
	out := &Outcome{}
	diags := make([]model.AIDiagnostic, 3)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		diags[0] = e.runStep("aeo-enhancement", func() error {
			blended, err := e.EnhanceAEO(gCtx, detAEO, pages)
			if err != nil {
				return err
			}
			out.AEO = &blended
			return nil
		})
		return nil
	})

	g.Go(func() error {
		diags[1] = e.runStep("llms-txt-generation", func() error {
			llms, full, err := e.GenerateLlmsTxt(gCtx, crawl, pages)
			if err != nil {
				return err
			}
			out.LlmsTxt, out.LlmsFullTxt = llms, full
			return nil
		})
		return nil
	})

	g.Go(func() error {
		diags[2] = e.runStep("jsonld-generation", func() error {
			docs, err := e.GenerateJSONLD(gCtx, pages)
			if err != nil {
				return err
			}
			out.JSONLD = docs
			return nil
		})
		return nil
	})

	_ = g.Wait()
	out.Diagnostics = diags
	return out
}

// RunReport runs the dependent report-enhancement task and appends its
// diagnostic to the outcome. Only called after the join, and only when at
// least one independent task succeeded.
func (e *Enhancer) RunReport(ctx context.Context, out *Outcome, report string, result *model.AuditResult) string {
	enhanced := report
	diag := e.runStep("report-enhancement", func() error {
		text, err := e.EnhanceReport(ctx, report, result)
		if err != nil {
			return err
		}
		enhanced = text
		return nil
	})
	out.Diagnostics = append(out.Diagnostics, diag)
	return enhanced
}

// runStep executes one sub-task, converting panics into task failures so a
// crash is indistinguishable from a caught error downstream.
func (e *Enhancer) runStep(step string, fn func() error) (diag model.AIDiagnostic) {
	start := time.Now()
	diag = model.AIDiagnostic{Step: step, Model: e.Model()}

	defer func() {
		if r := recover(); r != nil {
			diag.Success = false
			diag.Error = eris.Errorf("enhance: %s panicked: %v", step, r).Error()
		}
		diag.DurationMs = time.Since(start).Milliseconds()
		if diag.Success {
			zap.L().Debug("enhance: step complete",
				zap.String("step", step),
				zap.Int64("duration_ms", diag.DurationMs),
			)
		} else {
			zap.L().Warn("enhance: step failed",
				zap.String("step", step),
				zap.String("error", diag.Error),
			)
		}
	}()

	if err := fn(); err != nil {
		diag.Error = err.Error()
		return diag
	}
	diag.Success = true
	return diag
}
