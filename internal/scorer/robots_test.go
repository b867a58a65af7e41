package scorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/aivis-cli/internal/model"
)

func strptr(s string) *string { return &s }

func TestParseRobots_Access(t *testing.T) {
	tests := []struct {
		name    string
		content string
		crawler string
		want    Access
	}{
		{
			"wildcard block",
			"User-agent: *\nDisallow: /",
			"GPTBot", AccessBlocked,
		},
		{
			"specific block wins over wildcard allow",
			"User-agent: GPTBot\nDisallow: /\n\nUser-agent: *\nAllow: /",
			"GPTBot", AccessBlocked,
		},
		{
			"specific allow wins over wildcard block",
			"User-agent: ClaudeBot\nAllow: /\n\nUser-agent: *\nDisallow: /",
			"ClaudeBot", AccessAllowed,
		},
		{
			"specific block without full disallow counts as allowed",
			"User-agent: GPTBot\nDisallow: /private/",
			"GPTBot", AccessAllowed,
		},
		{
			"allow root overrides disallow root in same block",
			"User-agent: GPTBot\nDisallow: /\nAllow: /",
			"GPTBot", AccessAllowed,
		},
		{
			"unlisted under permissive wildcard",
			"User-agent: *\nAllow: /",
			"CCBot", AccessUnlisted,
		},
		{
			"case-insensitive agent match",
			"User-agent: gptbot\nDisallow: /",
			"GPTBot", AccessBlocked,
		},
		{
			"empty file",
			"",
			"GPTBot", AccessUnlisted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRobots(tt.content).Access(tt.crawler))
		})
	}
}

func TestParseRobots_SharedAgentGroup(t *testing.T) {
	rules := ParseRobots("User-agent: GPTBot\nUser-agent: ClaudeBot\nDisallow: /\n")

	assert.Equal(t, AccessBlocked, rules.Access("GPTBot"))
	assert.Equal(t, AccessBlocked, rules.Access("ClaudeBot"))
	assert.Equal(t, AccessUnlisted, rules.Access("CCBot"))
}

func TestParseRobots_CommentsAndSitemap(t *testing.T) {
	rules := ParseRobots(`# header comment
User-agent: * # trailing comment
Disallow: /admin
Sitemap: https://example.com/sitemap.xml
Sitemap: https://example.com/news.xml
`)

	require.Len(t, rules.Sitemaps, 2)
	assert.Equal(t, "https://example.com/sitemap.xml", rules.Sitemaps[0])
	assert.Equal(t, AccessAllowed, rules.Access("*"))
}

func TestRobots_Missing(t *testing.T) {
	result := Robots(nil)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, "F", result.Grade)
	require.NotEmpty(t, result.Findings)
	assert.Equal(t, model.FindingFail, result.Findings[0].Type)
}

func TestRobots_BaseScore(t *testing.T) {
	// No sitemap, every crawler unlisted: just the base.
	result := Robots(strptr("User-agent: *\nAllow: /\n"))
	assert.Equal(t, 40, result.Score)
}

func TestRobots_SitemapDirective(t *testing.T) {
	result := Robots(strptr("User-agent: *\nAllow: /\nSitemap: https://x.test/sitemap.xml\n"))
	assert.Equal(t, 50, result.Score)
}

func TestRobots_WildcardBlockClampsToZero(t *testing.T) {
	// 40 base minus 3 per blocked crawler goes negative and clamps.
	result := Robots(strptr("User-agent: *\nDisallow: /\n"))
	assert.Equal(t, 0, result.Score)

	blocked := 0
	for _, f := range result.Findings {
		if f.Type == model.FindingFail && strings.Contains(f.Message, "is blocked") {
			blocked++
		}
	}
	assert.Equal(t, len(AICrawlers), blocked)
}

func TestRobots_SingleBlockedCrawler(t *testing.T) {
	result := Robots(strptr("User-agent: GPTBot\nDisallow: /\n\nUser-agent: *\nAllow: /\n"))
	assert.Equal(t, 37, result.Score)
}

func TestRobots_AllowBonusCapped(t *testing.T) {
	var b strings.Builder
	for _, crawler := range AICrawlers {
		b.WriteString("User-agent: " + crawler + "\nAllow: /\n\n")
	}

	// 17 crawlers at +3 each would be 51; the bonus caps at 50.
	result := Robots(strptr(b.String()))
	assert.Equal(t, 90, result.Score)
}

func TestRobots_UnlistedInfoFinding(t *testing.T) {
	result := Robots(strptr("User-agent: GPTBot\nAllow: /\n"))

	var foundInfo bool
	for _, f := range result.Findings {
		if f.Type == model.FindingInfo && strings.Contains(f.Message, "not mentioned") {
			foundInfo = true
		}
	}
	assert.True(t, foundInfo)
}
