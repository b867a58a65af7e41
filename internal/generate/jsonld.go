package generate

import (
	"encoding/json"
	"strings"

	"github.com/sells-group/aivis-cli/internal/scorer"
)

// JSONLD produces one skeleton JSON-LD document per page, keyed by a
// filesystem-safe filename derived from the page path. The schema type is
// the first expected type for the page's inferred category.
func JSONLD(pages []scorer.Page) map[string]string {
	out := make(map[string]string, len(pages))
	for _, p := range pages {
		out["jsonld"+slugFromPath(p.Data.Path)+".json"] = jsonldForPage(p)
	}
	return out
}

func jsonldForPage(p scorer.Page) string {
	pt := scorer.InferPageType(p.Data.Path)

	doc := map[string]any{
		"@context": "https://schema.org",
		"@type":    pt.Expected[0],
		"url":      p.Data.URL,
	}

	if p.Info.Title != "" {
		doc["name"] = p.Info.Title
	}
	if p.Info.MetaDescription != "" {
		doc["description"] = p.Info.MetaDescription
	}

	switch pt.Label {
	case "article":
		doc["headline"] = firstNonEmpty(p.Info.Title, p.Data.Path)
		doc["author"] = map[string]any{"@type": "Person", "name": ""}
		doc["datePublished"] = ""
	case "home":
		doc["potentialAction"] = map[string]any{
			"@type":  "SearchAction",
			"target": strings.TrimSuffix(p.Data.URL, "/") + "/search?q={search_term_string}",
		}
	case "faq":
		doc["mainEntity"] = []any{}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw) + "\n"
}

// slugFromPath turns "/blog/my-post" into "-blog-my-post" and "/" into "-home".
func slugFromPath(path string) string {
	if scorer.IsHomePath(path) {
		return "-home"
	}
	slug := strings.Trim(path, "/")
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, slug)
	return "-" + slug
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
