// Package scorer implements the eight deterministic visibility dimensions.
// Every scorer is a pure function: missing input yields the floor score with
// an explanatory finding, never an error, and nothing here touches the
// network.
package scorer

import (
	"math"

	"github.com/sells-group/aivis-cli/internal/analyzer"
	"github.com/sells-group/aivis-cli/internal/model"
)

// Page pairs a crawled page with its analyzed facts so the eight scorers
// share one parse per page.
type Page struct {
	Data model.PageData
	Info *analyzer.PageInfo
}

// AnalyzePages runs the analyzer once per page.
func AnalyzePages(pages []model.PageData) []Page {
	out := make([]Page, len(pages))
	for i, p := range pages {
		out[i] = Page{Data: p, Info: analyzer.Analyze(p.HTML, p.URL)}
	}
	return out
}

// fixable dimensions are the ones a generator can remediate directly.
var fixable = map[model.DimensionID]bool{
	model.DimSchema:  true,
	model.DimRobots:  true,
	model.DimLlmsTxt: true,
	model.DimSitemap: true,
	model.DimMeta:    true,
}

// newResult clamps and grades a raw score into a DimensionResult.
func newResult(id model.DimensionID, raw float64, findings []model.Finding) model.DimensionResult {
	score := model.ClampScore(raw)
	return model.DimensionResult{
		ID:       id,
		Name:     model.DimensionNames[id],
		Weight:   model.DimensionWeights[id],
		Score:    score,
		Grade:    model.Grade(score),
		Findings: findings,
		Fixable:  fixable[id],
	}
}

// averagePageScores turns per-page raw scores into a single dimension score.
func averagePageScores(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += math.Min(100, math.Max(0, s))
	}
	return sum / float64(len(scores))
}

func pass(msg string, args ...string) model.Finding {
	return finding(model.FindingPass, msg, args...)
}

func warn(msg string, args ...string) model.Finding {
	return finding(model.FindingWarning, msg, args...)
}

func fail(msg string, args ...string) model.Finding {
	return finding(model.FindingFail, msg, args...)
}

func info(msg string, args ...string) model.Finding {
	return finding(model.FindingInfo, msg, args...)
}

// finding builds a Finding; optional args are detail then page.
func finding(t model.FindingType, msg string, args ...string) model.Finding {
	f := model.Finding{Type: t, Message: msg}
	if len(args) > 0 {
		f.Detail = args[0]
	}
	if len(args) > 1 {
		f.Page = args[1]
	}
	return f
}
