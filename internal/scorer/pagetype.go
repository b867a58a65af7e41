package scorer

import "strings"

// PageType groups URL paths into the schema categories the structured-data
// dimension and the JSON-LD generator agree on.
type PageType struct {
	Label    string
	Expected []string // acceptable schema.org @type values
}

// pageTypeRule maps path keywords to a PageType. Matching is first-match-wins
// over this fixed order; a path containing "post" anywhere matches the
// article type even when that looks wrong for a given site. That is a known
// limitation of the heuristic, kept because downstream scoring depends on
// the matching order.
type pageTypeRule struct {
	keywords []string
	pageType PageType
}

var pageTypeRules = []pageTypeRule{
	{[]string{"blog", "post", "article", "news"},
		PageType{"article", []string{"Article", "BlogPosting", "NewsArticle"}}},
	{[]string{"product", "shop", "store", "pricing"},
		PageType{"product", []string{"Product", "Offer"}}},
	{[]string{"about", "team", "company"},
		PageType{"about", []string{"AboutPage", "Organization"}}},
	{[]string{"contact"},
		PageType{"contact", []string{"ContactPage", "LocalBusiness"}}},
	{[]string{"faq", "help", "support", "docs"},
		PageType{"faq", []string{"FAQPage", "QAPage"}}},
}

var homePageType = PageType{"home", []string{"WebSite", "Organization"}}

var genericPageType = PageType{"generic", []string{"WebPage"}}

// InferPageType classifies a page by its URL path.
func InferPageType(path string) PageType {
	if IsHomePath(path) {
		return homePageType
	}

	lower := strings.ToLower(path)
	for _, rule := range pageTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.pageType
			}
		}
	}
	return genericPageType
}

// IsHomePath reports whether path is the site root.
func IsHomePath(path string) bool {
	return path == "" || path == "/" || path == "/index.html" || path == "/index.htm"
}
