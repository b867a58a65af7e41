// Package analyzer extracts structured facts from a single page's markup.
// Extraction is pure: no network access, and malformed markup never fails.
// Missing elements come back as empty strings or zero counts.
package analyzer

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heading is one document heading in source order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// PageInfo is the neutral record of everything the scorers need from one page.
type PageInfo struct {
	Title           string
	MetaDescription string
	Canonical       string
	OGTitle         string
	OGDescription   string
	OGURL           string
	OGType          string
	OGImage         string

	H1s      []string
	Headings []Heading
	JSONLD   []map[string]any

	HasMain    bool
	HasNav     bool
	HasHeader  bool
	HasFooter  bool
	HasArticle bool
	HasSection bool

	ImagesTotal   int
	ImagesWithAlt int

	TextLength         int
	ParagraphWordCount []int
	HasList            bool
	HasFAQ             bool
	HasSummary         bool
	HasBlockquote      bool
	HasCitations       bool
	NoscriptTextLength int

	InternalLinks []string
}

// Analyze parses html and extracts the page facts. pageURL scopes internal
// link detection; an unparseable pageURL disables link extraction only.
func Analyze(html, pageURL string) *PageInfo {
	info := &PageInfo{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return info
	}

	info.Title = strings.TrimSpace(doc.Find("title").First().Text())
	info.MetaDescription = metaContent(doc, `meta[name="description"]`)
	info.Canonical, _ = doc.Find(`link[rel="canonical"]`).First().Attr("href")
	info.OGTitle = metaProperty(doc, "og:title")
	info.OGDescription = metaProperty(doc, "og:description")
	info.OGURL = metaProperty(doc, "og:url")
	info.OGType = metaProperty(doc, "og:type")
	info.OGImage = metaProperty(doc, "og:image")

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		level := int(goquery.NodeName(s)[1] - '0')
		info.Headings = append(info.Headings, Heading{Level: level, Text: text})
		if level == 1 {
			info.H1s = append(info.H1s, text)
		}
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		info.JSONLD = append(info.JSONLD, parseJSONLD(s.Text())...)
	})

	info.HasMain = doc.Find("main").Length() > 0
	info.HasNav = doc.Find("nav").Length() > 0
	info.HasHeader = doc.Find("header").Length() > 0
	info.HasFooter = doc.Find("footer").Length() > 0
	info.HasArticle = doc.Find("article").Length() > 0
	info.HasSection = doc.Find("section").Length() > 0

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		info.ImagesTotal++
		if alt, ok := s.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
			info.ImagesWithAlt++
		}
	})

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	text := collapseWhitespace(body.Text())
	info.TextLength = len(text)

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		words := strings.Fields(s.Text())
		if len(words) > 0 {
			info.ParagraphWordCount = append(info.ParagraphWordCount, len(words))
		}
	})

	info.HasList = doc.Find("ul, ol, dl").Length() > 0
	info.HasBlockquote = doc.Find("blockquote").Length() > 0
	info.NoscriptTextLength = len(collapseWhitespace(doc.Find("noscript").Text()))

	lower := strings.ToLower(text + " " + headingText(info.Headings))
	info.HasFAQ = containsAny(lower, "faq", "frequently asked")
	info.HasSummary = containsAny(lower, "tl;dr", "tldr", "summary", "key takeaway", "in short")
	info.HasCitations = doc.Find("cite").Length() > 0 ||
		containsAny(lower, "references", "sources:", "citation", "further reading")

	info.InternalLinks = internalLinks(doc, pageURL)

	return info
}

// parseJSONLD decodes one script block. A block may hold a single object or
// an array of objects; malformed JSON is skipped, never fatal.
func parseJSONLD(raw string) []map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return []map[string]any{obj}
	}

	var arr []map[string]any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return arr
	}

	return nil
}

// internalLinks collects deduplicated same-origin links: fragment stripped,
// trailing slash normalized except for the root path.
func internalLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil || resolved.Host != base.Host {
			return
		}
		resolved.Fragment = ""

		normalized := resolved.String()
		if resolved.Path != "/" && resolved.Path != "" {
			normalized = strings.TrimSuffix(normalized, "/")
		}

		if !seen[normalized] {
			seen[normalized] = true
			links = append(links, normalized)
		}
	})

	return links
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaProperty(doc *goquery.Document, property string) string {
	return metaContent(doc, `meta[property="`+property+`"]`)
}

func headingText(headings []Heading) string {
	var b strings.Builder
	for _, h := range headings {
		b.WriteString(h.Text)
		b.WriteString(" ")
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
