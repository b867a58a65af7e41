package crawler

import (
	"regexp"
	"strings"

	"github.com/sells-group/aivis-cli/internal/model"
)

// siteSignature matches platform-specific markers in page markup.
// First match wins, so more specific platforms come first.
type siteSignature struct {
	name    string
	matches func(markup string) bool
}

var siteSignatures = []siteSignature{
	{"WordPress", markerAny("wp-content/", "wp-includes/")},
	{"Shopify", markerAny("cdn.shopify.com")},
	{"Squarespace", markerAny("static1.squarespace.com", "squarespace.com/static")},
	{"Wix", markerAny("static.wixstatic.com", "wix.com/velo")},
	{"Webflow", markerAny("data-wf-site", "assets.website-files.com")},
	{"Next.js", markerAny("/_next/", "__NEXT_DATA__")},
	{"Nuxt", markerAny("/_nuxt/", "__NUXT__")},
	{"Gatsby", markerAny("___gatsby")},
	{"Astro", markerAny("astro-island", "data-astro-cid")},
	{"SPA", isEmptyMountSPA},
}

// ClassifySiteType inspects concatenated page markup for platform markers.
// Defaults to "Static HTML" when nothing matches.
func ClassifySiteType(pages []model.PageData) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.HTML)
		b.WriteString("\n")
	}
	markup := b.String()

	for _, sig := range siteSignatures {
		if sig.matches(markup) {
			return sig.name
		}
	}
	return "Static HTML"
}

func markerAny(markers ...string) func(string) bool {
	return func(markup string) bool {
		for _, m := range markers {
			if strings.Contains(markup, m) {
				return true
			}
		}
		return false
	}
}

var spaMountRe = regexp.MustCompile(`(?is)<div\s+id="(root|app)"\s*>\s*</div>`)

// isEmptyMountSPA detects the generic client-rendered pattern: a bare app
// mount div with essentially no other body content.
func isEmptyMountSPA(markup string) bool {
	if !spaMountRe.MatchString(markup) {
		return false
	}
	stripped := regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`).ReplaceAllString(markup, "")
	stripped = regexp.MustCompile(`<[^>]+>`).ReplaceAllString(stripped, " ")
	return len(strings.TrimSpace(strings.Join(strings.Fields(stripped), " "))) < 100
}
