package scorer

import (
	"fmt"

	"github.com/sells-group/aivis-cli/internal/analyzer"
	"github.com/sells-group/aivis-cli/internal/model"
)

// Semantic scores landmark structure: heading discipline, the main/nav/
// header/footer landmarks, alt-text coverage, and article/section use.
func Semantic(pages []Page) model.DimensionResult {
	if len(pages) == 0 {
		return newResult(model.DimSemantic, 0,
			[]model.Finding{fail("No pages available to check semantic structure")})
	}

	var findings []model.Finding
	var scores []float64

	for _, p := range pages {
		scores = append(scores, scoreSemanticPage(p, &findings))
	}

	return newResult(model.DimSemantic, averagePageScores(scores), findings)
}

func scoreSemanticPage(p Page, findings *[]model.Finding) float64 {
	score := 0.0

	switch len(p.Info.H1s) {
	case 0:
		*findings = append(*findings, fail("No H1 heading", "", p.Data.Path))
	case 1:
		score += 25
		*findings = append(*findings, pass("Exactly one H1", "", p.Data.Path))
	default:
		score += 10
		*findings = append(*findings,
			warn(fmt.Sprintf("%d H1 headings", len(p.Info.H1s)),
				"one H1 per page reads best", p.Data.Path))
	}

	if headingOrderSound(p.Info.Headings) {
		score += 20
		if len(p.Info.Headings) > 0 {
			*findings = append(*findings, pass("Heading levels descend in order", "", p.Data.Path))
		}
	} else {
		*findings = append(*findings, warn("Heading levels skip", "", p.Data.Path))
	}

	landmarks := 0
	for _, present := range []bool{p.Info.HasMain, p.Info.HasNav, p.Info.HasHeader, p.Info.HasFooter} {
		if present {
			landmarks++
		}
	}
	score += 30 * float64(landmarks) / 4
	if landmarks < 4 {
		*findings = append(*findings,
			warn(fmt.Sprintf("%d of 4 landmark elements present", landmarks),
				"main, nav, header, footer", p.Data.Path))
	} else {
		*findings = append(*findings, pass("All landmark elements present", "", p.Data.Path))
	}

	if p.Info.ImagesTotal == 0 {
		score += 15
	} else {
		coverage := float64(p.Info.ImagesWithAlt) / float64(p.Info.ImagesTotal)
		score += 15 * coverage
		if coverage < 1 {
			*findings = append(*findings,
				warn(fmt.Sprintf("%d of %d images missing alt text",
					p.Info.ImagesTotal-p.Info.ImagesWithAlt, p.Info.ImagesTotal), "", p.Data.Path))
		}
	}

	if p.Info.HasArticle || p.Info.HasSection {
		score += 10
	}

	return score
}

// headingOrderSound reports whether heading levels never jump down by more
// than one level at a time (h2 → h4 is a skip; h4 → h2 is fine).
func headingOrderSound(headings []analyzer.Heading) bool {
	prev := 0
	for _, h := range headings {
		if prev > 0 && h.Level > prev+1 {
			return false
		}
		prev = h.Level
	}
	return true
}
