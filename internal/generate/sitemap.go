package generate

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/sells-group/aivis-cli/internal/model"
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// SitemapXML renders a standard sitemap with one entry per crawled page,
// stamped with today's date.
func SitemapXML(pages []model.PageData, now time.Time) string {
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
	}

	lastMod := now.Format("2006-01-02")
	for _, p := range pages {
		set.URLs = append(set.URLs, urlEntry{Loc: p.URL, LastMod: lastMod})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	b.Write(out)
	b.WriteString("\n")
	return b.String()
}
