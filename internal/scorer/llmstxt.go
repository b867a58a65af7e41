package scorer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/aivis-cli/internal/model"
)

var mdLinkRe = regexp.MustCompile(`\[[^\]]+\]\(([^)\s]+)\)`)

// LlmsTxt scores the llms.txt dimension: llmstxt.org structure plus how much
// of the crawled site the file actually links.
func LlmsTxt(llmsTxt, llmsFullTxt *string, pages []Page) model.DimensionResult {
	if llmsTxt == nil {
		return newResult(model.DimLlmsTxt, 0,
			[]model.Finding{fail("No llms.txt found",
				"llms.txt gives AI systems a curated guide to the site")})
	}

	content := *llmsTxt
	score := 30.0
	findings := []model.Finding{pass("llms.txt found")}

	lines := nonEmptyLines(content)

	if len(lines) > 0 && strings.HasPrefix(lines[0], "# ") {
		score += 10
		findings = append(findings, pass("Leading H1 title present"))
	} else {
		findings = append(findings, warn("llms.txt should start with an H1 title"))
	}

	if hasLinePrefix(lines, "> ") {
		score += 10
		findings = append(findings, pass("Summary blockquote present"))
	} else {
		findings = append(findings, warn("Missing summary blockquote"))
	}

	if hasLinePrefix(lines, "## ") {
		score += 10
		findings = append(findings, pass("H2 section(s) present"))
	} else {
		findings = append(findings, warn("No H2 sections"))
	}

	links := mdLinkRe.FindAllStringSubmatch(content, -1)
	if len(links) > 0 {
		score += 10
		findings = append(findings, pass(fmt.Sprintf("%d linked entr(ies)", len(links))))
	} else {
		findings = append(findings, warn("No markdown link entries"))
	}

	if coverage := linkCoverage(links, pages); coverage >= 0.8 {
		score += 15
		findings = append(findings, pass("llms.txt covers most crawled pages"))
	} else if coverage >= 0.5 {
		score += 8
		findings = append(findings, warn("llms.txt covers only part of the site",
			fmt.Sprintf("%.0f%% of crawled pages linked", coverage*100)))
	}

	if llmsFullTxt != nil {
		score += 15
		findings = append(findings, pass("llms-full.txt also present"))
	} else {
		findings = append(findings, info("No llms-full.txt",
			"a full-content variant lets AI systems skip crawling entirely"))
	}

	return newResult(model.DimLlmsTxt, score, findings)
}

// linkCoverage computes the fraction of crawled pages whose path appears in
// the llms.txt link targets.
func linkCoverage(links [][]string, pages []Page) float64 {
	if len(pages) == 0 || len(links) == 0 {
		return 0
	}

	linked := make(map[string]bool)
	for _, m := range links {
		linked[normalizePath(m[1])] = true
	}

	covered := 0
	for _, p := range pages {
		if linked[normalizePath(p.Data.Path)] || linked[normalizePath(p.Data.URL)] {
			covered++
		}
	}
	return float64(covered) / float64(len(pages))
}

// normalizePath reduces a URL or path to a comparable path form.
func normalizePath(s string) string {
	if idx := strings.Index(s, "://"); idx >= 0 {
		rest := s[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			s = rest[slash:]
		} else {
			s = "/"
		}
	}
	if s == "" {
		s = "/"
	}
	if s != "/" {
		s = strings.TrimSuffix(s, "/")
	}
	return s
}

func nonEmptyLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func hasLinePrefix(lines []string, prefix string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
