package scorer

import (
	"fmt"
	"strings"

	"github.com/sells-group/aivis-cli/internal/model"
)

// AICrawlers is the fixed roster of AI crawler user agents the robots
// dimension classifies. Order is fixed for stable findings output.
var AICrawlers = []string{
	"GPTBot",
	"ChatGPT-User",
	"OAI-SearchBot",
	"ClaudeBot",
	"Claude-Web",
	"anthropic-ai",
	"PerplexityBot",
	"Perplexity-User",
	"Google-Extended",
	"Applebot-Extended",
	"Amazonbot",
	"Bytespider",
	"CCBot",
	"cohere-ai",
	"Meta-ExternalAgent",
	"YouBot",
	"DuckAssistBot",
}

// Access classifies how robots.txt treats one crawler.
type Access int

const (
	AccessUnlisted Access = iota
	AccessAllowed
	AccessBlocked
)

// agentBlock is one User-agent group with its allow/disallow rules.
type agentBlock struct {
	agents    []string
	allows    []string
	disallows []string
}

// RobotsRules is a parsed robots.txt.
type RobotsRules struct {
	blocks   []agentBlock
	Sitemaps []string
}

// ParseRobots parses robots.txt content into agent blocks. The parser is
// deliberately permissive: unknown directives and malformed lines are
// ignored.
func ParseRobots(content string) *RobotsRules {
	rules := &RobotsRules{}
	var current *agentBlock
	lastWasAgent := false

	for _, line := range strings.Split(content, "\n") {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			// Consecutive User-agent lines share the rules that follow.
			if !lastWasAgent {
				rules.blocks = append(rules.blocks, agentBlock{})
				current = &rules.blocks[len(rules.blocks)-1]
			}
			current.agents = append(current.agents, value)
			lastWasAgent = true
			continue
		case "allow":
			if current != nil {
				current.allows = append(current.allows, value)
			}
		case "disallow":
			if current != nil {
				current.disallows = append(current.disallows, value)
			}
		case "sitemap":
			rules.Sitemaps = append(rules.Sitemaps, value)
		}
		lastWasAgent = false
	}

	return rules
}

// Access classifies a crawler with specific-then-wildcard precedence: a
// block naming the crawler wins outright; otherwise a wildcard block that
// disallows the root blocks it; otherwise the crawler is unlisted.
func (r *RobotsRules) Access(crawler string) Access {
	if b := r.findBlock(crawler); b != nil {
		if blocksAll(b) {
			return AccessBlocked
		}
		return AccessAllowed
	}

	if b := r.findBlock("*"); b != nil && blocksAll(b) {
		return AccessBlocked
	}
	return AccessUnlisted
}

func (r *RobotsRules) findBlock(agent string) *agentBlock {
	for i := range r.blocks {
		for _, a := range r.blocks[i].agents {
			if strings.EqualFold(a, agent) {
				return &r.blocks[i]
			}
		}
	}
	return nil
}

// blocksAll reports whether a block disallows the whole site: a Disallow: /
// with no explicit Allow: / to override it.
func blocksAll(b *agentBlock) bool {
	return hasRule(b.disallows, "/") && !hasRule(b.allows, "/")
}

func hasRule(rules []string, path string) bool {
	for _, r := range rules {
		if r == path {
			return true
		}
	}
	return false
}

// Robots scores the robots.txt dimension against the AI crawler roster.
func Robots(robotsTxt *string) model.DimensionResult {
	if robotsTxt == nil {
		return newResult(model.DimRobots, 0,
			[]model.Finding{fail("No robots.txt found",
				"AI crawlers fall back to their defaults without one")})
	}

	rules := ParseRobots(*robotsTxt)
	score := 40.0
	findings := []model.Finding{pass("robots.txt found")}

	if len(rules.Sitemaps) > 0 {
		score += 10
		findings = append(findings, pass("Sitemap directive present", rules.Sitemaps[0]))
	} else {
		findings = append(findings, warn("No Sitemap directive in robots.txt"))
	}

	allowBonus := 0.0
	unlisted := 0
	for _, crawler := range AICrawlers {
		switch rules.Access(crawler) {
		case AccessBlocked:
			score -= 3
			findings = append(findings, fail(crawler+" is blocked"))
		case AccessAllowed:
			allowBonus += 3
			findings = append(findings, pass(crawler+" is explicitly allowed"))
		default:
			unlisted++
		}
	}
	if allowBonus > 50 {
		allowBonus = 50
	}
	score += allowBonus

	if unlisted > 0 {
		findings = append(findings,
			info(fmt.Sprintf("%d AI crawler(s) not mentioned", unlisted),
				"unlisted crawlers follow the wildcard rules"))
	}

	return newResult(model.DimRobots, score, findings)
}
