package scorer

import (
	"fmt"
	"strings"

	"github.com/sells-group/aivis-cli/internal/model"
)

// genericTitles are placeholder titles that earn no title credit.
var genericTitles = map[string]bool{
	"home":          true,
	"index":         true,
	"untitled":      true,
	"document":      true,
	"new page":      true,
	"welcome":       true,
	"default title": true,
}

// Meta scores the eight required tag facts per page: title, description,
// canonical, and the og title/description/url/type/image set.
func Meta(pages []Page) model.DimensionResult {
	if len(pages) == 0 {
		return newResult(model.DimMeta, 0,
			[]model.Finding{fail("No pages available to check meta tags")})
	}

	var findings []model.Finding
	var scores []float64

	for _, p := range pages {
		scores = append(scores, scoreMetaPage(p, &findings))
	}

	return newResult(model.DimMeta, averagePageScores(scores), findings)
}

func scoreMetaPage(p Page, findings *[]model.Finding) float64 {
	facts := []struct {
		name  string
		value string
	}{
		{"title", p.Info.Title},
		{"meta description", p.Info.MetaDescription},
		{"canonical link", p.Info.Canonical},
		{"og:title", p.Info.OGTitle},
		{"og:description", p.Info.OGDescription},
		{"og:url", p.Info.OGURL},
		{"og:type", p.Info.OGType},
		{"og:image", p.Info.OGImage},
	}

	score := 0.0
	var missing []string
	for _, f := range facts {
		if strings.TrimSpace(f.value) != "" {
			score += 12.5
		} else {
			missing = append(missing, f.name)
		}
	}

	if len(missing) == 0 {
		*findings = append(*findings, pass("All 8 required meta tags present", "", p.Data.Path))
	} else {
		*findings = append(*findings,
			warn(fmt.Sprintf("%d meta tag(s) missing", len(missing)),
				strings.Join(missing, ", "), p.Data.Path))
	}

	if desc := p.Info.MetaDescription; desc != "" {
		if len(desc) < 50 {
			score -= 5
			*findings = append(*findings, warn("Meta description too short",
				fmt.Sprintf("%d chars, aim for 50-160", len(desc)), p.Data.Path))
		} else if len(desc) > 160 {
			score -= 3
			*findings = append(*findings, warn("Meta description too long",
				fmt.Sprintf("%d chars, aim for 50-160", len(desc)), p.Data.Path))
		}
	}

	title := strings.TrimSpace(p.Info.Title)
	if title != "" && (len(title) < 5 || genericTitles[strings.ToLower(title)]) {
		score -= 5
		*findings = append(*findings, warn("Title is generic or too short", title, p.Data.Path))
	}

	return score
}
