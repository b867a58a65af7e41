package scorer

import (
	"fmt"

	"github.com/sells-group/aivis-cli/internal/model"
)

// AEO scores content structure for answer-engine extraction. This is the
// only dimension eligible for AI blending; these heuristics are the
// deterministic half of that blend.
func AEO(pages []Page) model.DimensionResult {
	if len(pages) == 0 {
		return newResult(model.DimAEO, 0,
			[]model.Finding{fail("No pages available to assess content quality")})
	}

	var findings []model.Finding
	var scores []float64

	for _, p := range pages {
		scores = append(scores, scoreAEOPage(p, &findings))
	}

	return newResult(model.DimAEO, averagePageScores(scores), findings)
}

func scoreAEOPage(p Page, findings *[]model.Finding) float64 {
	score := 0.0

	if p.Info.HasSummary {
		score += 20
		*findings = append(*findings, pass("Summary/TL;DR section found", "", p.Data.Path))
	} else {
		*findings = append(*findings, warn("No summary or TL;DR section", "", p.Data.Path))
	}

	if p.Info.HasFAQ {
		score += 15
		*findings = append(*findings, pass("FAQ content found", "", p.Data.Path))
	}

	if avg := avgParagraphWords(p.Info.ParagraphWordCount); avg > 0 {
		switch {
		case avg <= 50:
			score += 20
			*findings = append(*findings, pass("Concise paragraphs", "", p.Data.Path))
		case avg <= 100:
			score += 10
			*findings = append(*findings, warn("Paragraphs run long",
				fmt.Sprintf("average %d words", avg), p.Data.Path))
		default:
			*findings = append(*findings, fail("Paragraphs too long for extraction",
				fmt.Sprintf("average %d words", avg), p.Data.Path))
		}
	}

	if p.Info.HasList {
		score += 15
		*findings = append(*findings, pass("List structure present", "", p.Data.Path))
	}

	// Direct-answer credit: plain HTML content is extractable as-is.
	score += 15

	if p.Info.HasCitations {
		score += 15
		*findings = append(*findings, pass("Citations or references found", "", p.Data.Path))
	}

	return score
}

func avgParagraphWords(counts []int) int {
	if len(counts) == 0 {
		return 0
	}
	sum := 0
	for _, c := range counts {
		sum += c
	}
	return sum / len(counts)
}
