package scorer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/aivis-cli/internal/model"
)

// ssrMarkers are markers left in server-rendered output by the common
// JavaScript meta-frameworks.
var ssrMarkers = []string{
	"__NEXT_DATA__",
	"data-reactroot",
	"data-server-rendered",
	"__NUXT__",
	"___gatsby",
	"astro-island",
	"data-sveltekit",
}

var renderMountRe = regexp.MustCompile(`(?is)<div\s+id="(root|app)"\s*>\s*</div>`)

// Rendering scores how much content exists in the raw HTML, since the
// crawler (like most AI crawlers) never executes JavaScript.
func Rendering(pages []Page) model.DimensionResult {
	if len(pages) == 0 {
		return newResult(model.DimRendering, 0,
			[]model.Finding{fail("No pages available to check rendering")})
	}

	var findings []model.Finding
	var scores []float64

	for _, p := range pages {
		scores = append(scores, scoreRenderingPage(p, &findings))
	}

	return newResult(model.DimRendering, averagePageScores(scores), findings)
}

func scoreRenderingPage(p Page, findings *[]model.Finding) float64 {
	score := 0.0
	textLen := p.Info.TextLength

	switch {
	case textLen > 500:
		score += 40
		*findings = append(*findings, pass("Substantial content in raw HTML", "", p.Data.Path))
	case textLen > 100:
		score += 25
		*findings = append(*findings, warn("Limited content in raw HTML",
			fmt.Sprintf("%d visible chars", textLen), p.Data.Path))
	default:
		*findings = append(*findings, fail("Almost no content in raw HTML",
			fmt.Sprintf("%d visible chars", textLen), p.Data.Path))
	}

	if markers := ssrMarkersFound(p.Data.HTML); len(markers) > 0 {
		score += 30
		*findings = append(*findings, pass("Server-rendering markers detected",
			strings.Join(markers, ", "), p.Data.Path))
	}

	if p.Info.NoscriptTextLength > 80 {
		score += 10
		*findings = append(*findings, pass("Substantial noscript fallback", "", p.Data.Path))
	}

	if len(p.Info.Headings) > 0 {
		score += 20
	}

	// Client-only rendering wipes out everything above: an empty mount div
	// plus a thin document means AI crawlers see a blank page.
	if renderMountRe.MatchString(p.Data.HTML) && textLen <= 100 {
		if score > 20 {
			score = 20
		}
		*findings = append(*findings, fail("Client-side rendered SPA",
			"AI crawlers do not execute JavaScript; serve pre-rendered HTML", p.Data.Path))
	}

	return score
}

func ssrMarkersFound(html string) []string {
	var found []string
	for _, m := range ssrMarkers {
		if strings.Contains(html, m) {
			found = append(found, m)
		}
	}
	return found
}
