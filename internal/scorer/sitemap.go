package scorer

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/sells-group/aivis-cli/internal/model"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// sitemapDoc is a minimal urlset decoding; index files are not descended.
type sitemapDoc struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []struct {
		Loc     string `xml:"loc"`
		LastMod string `xml:"lastmod"`
	} `xml:"url"`
}

// Sitemap scores the sitemap.xml dimension: structure, URL coverage of the
// crawled pages, and cross-reference from robots.txt.
func Sitemap(sitemapXML, robotsTxt *string, pages []Page) model.DimensionResult {
	if sitemapXML == nil {
		return newResult(model.DimSitemap, 0,
			[]model.Finding{fail("No sitemap.xml found")})
	}

	score := 30.0
	findings := []model.Finding{pass("sitemap.xml found")}

	var doc sitemapDoc
	parseErr := xml.Unmarshal([]byte(*sitemapXML), &doc)

	if parseErr == nil && doc.Xmlns == sitemapNamespace {
		score += 15
		findings = append(findings, pass("Standard sitemap namespace"))
	} else if parseErr != nil {
		findings = append(findings, warn("sitemap.xml did not parse as a urlset",
			"sitemap index files and malformed XML score structure only"))
	} else {
		findings = append(findings, warn("Non-standard sitemap namespace", doc.Xmlns))
	}

	locs := make(map[string]bool)
	hasLastMod := false
	for _, u := range doc.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			locs[normalizePath(loc)] = true
		}
		if strings.TrimSpace(u.LastMod) != "" {
			hasLastMod = true
		}
	}

	if len(locs) > 0 {
		score += 15
		findings = append(findings, pass(fmt.Sprintf("%d URL(s) listed", len(locs))))

		if coverage := sitemapCoverage(locs, pages); coverage >= 0.8 {
			score += 15
			findings = append(findings, pass("Sitemap covers most crawled pages"))
		} else {
			score += 5
			findings = append(findings, warn("Sitemap covers only part of the site",
				fmt.Sprintf("%.0f%% of crawled pages listed", coverage*100)))
		}
	} else {
		findings = append(findings, fail("No <loc> URLs found in sitemap"))
	}

	if hasLastMod {
		score += 10
		findings = append(findings, pass("lastmod dates present"))
	} else {
		findings = append(findings, warn("No lastmod dates",
			"lastmod helps crawlers prioritize fresh content"))
	}

	if robotsTxt != nil && strings.Contains(strings.ToLower(*robotsTxt), "sitemap") {
		score += 15
		findings = append(findings, pass("robots.txt references the sitemap"))
	} else {
		findings = append(findings, warn("robots.txt does not reference the sitemap"))
	}

	return newResult(model.DimSitemap, score, findings)
}

func sitemapCoverage(locs map[string]bool, pages []Page) float64 {
	if len(pages) == 0 {
		return 0
	}
	covered := 0
	for _, p := range pages {
		if locs[normalizePath(p.Data.Path)] {
			covered++
		}
	}
	return float64(covered) / float64(len(pages))
}
