package generate

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/aivis-cli/internal/model"
)

// Report renders the markdown remediation report from final dimension state.
func Report(result *model.AuditResult, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# AI Visibility Report: %s\n\n", result.URL)
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02"))

	// Summary.
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Overall score: **%d/100 (%s)**\n", result.OverallScore, result.Grade)
	fmt.Fprintf(&b, "- Site type: %s\n", result.SiteType)
	fmt.Fprintf(&b, "- Pages audited: %d\n\n", result.PagesAudited)

	if len(result.Priorities) > 0 {
		b.WriteString("## Top Priorities\n\n")
		for i, p := range result.Priorities {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Dimensions\n\n")
	for _, d := range result.Dimensions {
		fmt.Fprintf(&b, "### %s — %d/100 (%s)\n\n", d.Name, d.Score, d.Grade)
		for _, f := range d.Findings {
			fmt.Fprintf(&b, "- %s %s", findingMark(f.Type), f.Message)
			if f.Detail != "" {
				fmt.Fprintf(&b, " (%s)", f.Detail)
			}
			if f.Page != "" {
				fmt.Fprintf(&b, " — `%s`", f.Page)
			}
			if f.AI {
				b.WriteString(" _[AI]_")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Generated Files\n\n")
	b.WriteString("The audit bundle includes corrected robots.txt, sitemap.xml, ")
	b.WriteString("llms.txt and llms-full.txt, plus JSON-LD skeletons per page. ")
	b.WriteString("Deploy them at the site root and re-run the audit.\n")

	return b.String()
}

func findingMark(t model.FindingType) string {
	switch t {
	case model.FindingPass:
		return "✓"
	case model.FindingWarning:
		return "⚠"
	case model.FindingFail:
		return "✗"
	default:
		return "·"
	}
}
