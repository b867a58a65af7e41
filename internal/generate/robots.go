// Package generate produces the remediation artifacts from final audit
// state. Every function here is pure text assembly.
package generate

import (
	"strings"

	"github.com/sells-group/aivis-cli/internal/crawler"
	"github.com/sells-group/aivis-cli/internal/scorer"
)

// RobotsTxt renders an allow-all robots.txt that names every crawler on the
// AI roster and points at the sitemap at the origin root.
func RobotsTxt(baseURL string) string {
	var b strings.Builder

	b.WriteString("# AI crawler access policy\n")
	b.WriteString("# Generated by aivis audit\n\n")

	for _, crawler := range scorer.AICrawlers {
		b.WriteString("User-agent: ")
		b.WriteString(crawler)
		b.WriteString("\nAllow: /\n\n")
	}

	b.WriteString("User-agent: *\nAllow: /\n\n")
	b.WriteString("Sitemap: " + crawler.Origin(baseURL) + "/sitemap.xml\n")

	return b.String()
}
