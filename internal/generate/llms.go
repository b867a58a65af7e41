package generate

import (
	"fmt"
	"strings"

	"github.com/sells-group/aivis-cli/internal/model"
	"github.com/sells-group/aivis-cli/internal/scorer"
)

const excerptLen = 300

// LlmsTxt renders an llmstxt.org-style site guide: H1 title, summary
// blockquote, and one linked entry per crawled page grouped under a Pages
// section.
func LlmsTxt(crawl *model.CrawlResult, pages []scorer.Page) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", siteName(crawl, pages))
	fmt.Fprintf(&b, "> %s\n\n", siteSummary(pages))

	b.WriteString("## Pages\n\n")
	for _, p := range pages {
		title := pageTitle(p)
		desc := p.Info.MetaDescription
		if desc != "" {
			fmt.Fprintf(&b, "- [%s](%s): %s\n", title, p.Data.URL, desc)
		} else {
			fmt.Fprintf(&b, "- [%s](%s)\n", title, p.Data.URL)
		}
	}

	return b.String()
}

// LlmsFullTxt renders the full-content variant: the same header followed by
// a section per page carrying a plain-text excerpt.
func LlmsFullTxt(crawl *model.CrawlResult, pages []scorer.Page) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", siteName(crawl, pages))
	fmt.Fprintf(&b, "> %s\n\n", siteSummary(pages))

	for _, p := range pages {
		fmt.Fprintf(&b, "## %s\n\n", pageTitle(p))
		fmt.Fprintf(&b, "URL: %s\n\n", p.Data.URL)

		text := pageText(p)
		if text != "" {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func siteName(crawl *model.CrawlResult, pages []scorer.Page) string {
	for _, p := range pages {
		if scorer.IsHomePath(p.Data.Path) && p.Info.Title != "" {
			return p.Info.Title
		}
	}
	if len(pages) > 0 && pages[0].Info.Title != "" {
		return pages[0].Info.Title
	}
	return strings.TrimPrefix(strings.TrimPrefix(crawl.BaseURL, "https://"), "http://")
}

func siteSummary(pages []scorer.Page) string {
	for _, p := range pages {
		if scorer.IsHomePath(p.Data.Path) && p.Info.MetaDescription != "" {
			return p.Info.MetaDescription
		}
	}
	for _, p := range pages {
		if p.Info.MetaDescription != "" {
			return p.Info.MetaDescription
		}
	}
	return "Machine-readable guide to this site for AI systems."
}

func pageTitle(p scorer.Page) string {
	if p.Info.Title != "" {
		return p.Info.Title
	}
	if p.Data.Path == "/" {
		return "Home"
	}
	return strings.TrimPrefix(p.Data.Path, "/")
}

// pageText extracts a whitespace-collapsed excerpt of the page body.
func pageText(p scorer.Page) string {
	// The analyzer already measured collapsed text; re-derive the excerpt
	// from paragraph content to avoid carrying full body text around.
	var words []string
	total := 0
	for _, h := range p.Info.Headings {
		if h.Text != "" && total < excerptLen {
			words = append(words, h.Text+".")
			total += len(h.Text)
		}
	}
	if desc := p.Info.MetaDescription; desc != "" {
		words = append(words, desc)
	}
	text := strings.Join(words, " ")
	if len(text) > excerptLen {
		text = text[:excerptLen] + "…"
	}
	return text
}
