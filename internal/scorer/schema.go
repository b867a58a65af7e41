package scorer

import (
	"fmt"
	"strings"

	"github.com/sells-group/aivis-cli/internal/model"
)

// Schema scores the structured-data dimension: JSON-LD presence, page-type
// fit, and per-item completeness checks.
func Schema(pages []Page) model.DimensionResult {
	if len(pages) == 0 {
		return newResult(model.DimSchema, 0,
			[]model.Finding{fail("No pages available to check for structured data")})
	}

	var findings []model.Finding
	var scores []float64

	for _, p := range pages {
		scores = append(scores, scoreSchemaPage(p, &findings))
	}

	return newResult(model.DimSchema, averagePageScores(scores), findings)
}

func scoreSchemaPage(p Page, findings *[]model.Finding) float64 {
	items := p.Info.JSONLD
	if len(items) == 0 {
		*findings = append(*findings, fail("No JSON-LD structured data", "", p.Data.Path))
		return 0
	}

	score := 60.0
	*findings = append(*findings,
		pass(fmt.Sprintf("%d JSON-LD block(s) found", len(items)), "", p.Data.Path))

	types := collectTypes(items)
	pt := InferPageType(p.Data.Path)

	if hasAnyType(types, pt.Expected) {
		score += 20
		*findings = append(*findings,
			pass("Schema type matches page type", strings.Join(pt.Expected, ", "), p.Data.Path))
	} else {
		*findings = append(*findings,
			warn("No schema type matching the page type",
				fmt.Sprintf("expected one of %s", strings.Join(pt.Expected, ", ")), p.Data.Path))
	}

	if !IsHomePath(p.Data.Path) && !hasType(types, "BreadcrumbList") {
		score -= 5
		*findings = append(*findings, warn("Missing BreadcrumbList", "", p.Data.Path))
	}

	if hasType(types, "WebPage") {
		score += 10
	}

	for _, item := range items {
		checkSchemaItem(item, p.Data.Path, findings)
	}

	return score
}

// checkSchemaItem emits completeness warnings for one JSON-LD record.
func checkSchemaItem(item map[string]any, page string, findings *[]model.Finding) {
	if _, ok := item["@context"]; !ok {
		*findings = append(*findings, warn("JSON-LD block missing @context", "", page))
	}
	if _, ok := item["@type"]; !ok {
		*findings = append(*findings, warn("JSON-LD block missing @type", "", page))
	}

	if sameAs, ok := item["sameAs"].([]any); ok && len(sameAs) == 0 {
		*findings = append(*findings, warn("Empty sameAs list", "", page))
	}

	for _, t := range itemTypes(item) {
		switch t {
		case "Organization":
			if _, ok := item["logo"]; !ok {
				*findings = append(*findings, warn("Organization schema missing logo", "", page))
			}
		case "Article", "BlogPosting", "NewsArticle":
			if _, ok := item["author"]; !ok {
				*findings = append(*findings, warn("Article schema missing author", "", page))
			}
			if _, ok := item["datePublished"]; !ok {
				*findings = append(*findings, warn("Article schema missing datePublished", "", page))
			}
		}
	}
}

// collectTypes gathers every @type across items, descending into @graph.
func collectTypes(items []map[string]any) []string {
	var types []string
	for _, item := range items {
		types = append(types, itemTypes(item)...)
		if graph, ok := item["@graph"].([]any); ok {
			for _, g := range graph {
				if node, ok := g.(map[string]any); ok {
					types = append(types, itemTypes(node)...)
				}
			}
		}
	}
	return types
}

func itemTypes(item map[string]any) []string {
	switch t := item["@type"].(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func hasAnyType(types []string, wants []string) bool {
	for _, w := range wants {
		if hasType(types, w) {
			return true
		}
	}
	return false
}
