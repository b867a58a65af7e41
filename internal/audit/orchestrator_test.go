package audit

import (
	"archive/zip"
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/aivis-cli/internal/config"
	"github.com/sells-group/aivis-cli/internal/crawler"
	"github.com/sells-group/aivis-cli/internal/enhance"
	"github.com/sells-group/aivis-cli/internal/model"
	"github.com/sells-group/aivis-cli/internal/store"
)

// fakeGenerator serves canned responses keyed by a prompt substring.
type fakeGenerator struct {
	responses map[string]string
	err       error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for sub, resp := range f.responses {
		if strings.Contains(prompt, sub) {
			return resp, nil
		}
	}
	return "", context.DeadlineExceeded
}

func (f *fakeGenerator) Model() string { return "fake-model" }

func goodGenerator() *fakeGenerator {
	return &fakeGenerator{responses: map[string]string{
		"answer-engine extraction":   `{"score": 80, "findings": [{"type": "info", "message": "AI note"}]}`,
		"llmstxt.org":                `{"llms_txt": "# AI Site", "llms_full_txt": "# AI Site full"}`,
		"schema.org JSON-LD":         `{"pages": [{"path": "/", "jsonld": {"@context": "https://schema.org", "@type": "WebSite"}}]}`,
		"Rewrite this AI-visibility": "# Enhanced Report\n\n" + strings.Repeat("Detailed remediation guidance for every dimension. ", 8),
	}}
}

func newOrchestrator(enh *enhance.Enhancer) *Orchestrator {
	return New(
		crawler.New(config.CrawlConfig{}),
		enh,
		store.NewMemory(),
		store.NewMemory(),
		config.AuditConfig{MaxAuditPages: 20},
		time.Hour,
	)
}

func siteZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func bareSiteZip(t *testing.T) []byte {
	return siteZip(t, map[string]string{
		"index.html": `<html><body>hi</body></html>`,
	})
}

func collect(events *[]model.ProgressEvent) ProgressFunc {
	return func(e model.ProgressEvent) { *events = append(*events, e) }
}

func TestRunArchive_BasicMode(t *testing.T) {
	o := newOrchestrator(nil)

	var events []model.ProgressEvent
	result, err := o.RunArchive(context.Background(), bareSiteZip(t), collect(&events))
	require.NoError(t, err)

	assert.Equal(t, model.AIModeBasic, result.AIMode)
	assert.Empty(t, result.AIDiagnostics)
	assert.Equal(t, 1, result.PagesAudited)
	require.Len(t, result.Dimensions, 8)

	// The aggregate must equal the weighted sum of the final dimension
	// scores, rounded.
	var weighted float64
	for _, d := range result.Dimensions {
		weighted += float64(d.Score) * d.Weight
	}
	assert.Equal(t, int(math.Round(weighted)), result.OverallScore)
	assert.Equal(t, model.Grade(result.OverallScore), result.Grade)

	// A site with nothing in place scores in failing territory.
	assert.LessOrEqual(t, result.OverallScore, 35)
	assert.Equal(t, "F", result.Grade)
}

func TestRunArchive_ProgressEventOrder(t *testing.T) {
	o := newOrchestrator(nil)

	var events []model.ProgressEvent
	_, err := o.RunArchive(context.Background(), bareSiteZip(t), collect(&events))
	require.NoError(t, err)

	// One info event, running/complete pairs in fixed dimension order, then
	// a skipped marker for the AI phase when no capability is configured.
	require.Len(t, events, 2+2*len(model.DimensionOrder))
	assert.Equal(t, "info", events[0].Type)
	assert.Equal(t, 1, events[0].PagesFound)

	for i, id := range model.DimensionOrder {
		running := events[1+2*i]
		complete := events[2+2*i]

		assert.Equal(t, id, running.Dimension)
		assert.Equal(t, model.StatusRunning, running.Status)
		assert.Nil(t, running.Score)

		assert.Equal(t, id, complete.Dimension)
		assert.Equal(t, model.StatusComplete, complete.Status)
		require.NotNil(t, complete.Score)
	}

	skipped := events[len(events)-1]
	assert.Equal(t, model.DimAIAnalysis, skipped.Dimension)
	assert.Equal(t, model.StatusSkipped, skipped.Status)
	assert.Nil(t, skipped.Score)
}

func TestRunArchive_GeneratedFiles(t *testing.T) {
	o := newOrchestrator(nil)

	result, err := o.RunArchive(context.Background(), bareSiteZip(t), func(model.ProgressEvent) {})
	require.NoError(t, err)

	files := result.GeneratedFiles
	for _, name := range []string{"robots.txt", "sitemap.xml", "llms.txt", "llms-full.txt", "report.md"} {
		assert.Contains(t, files, name)
	}
	assert.Contains(t, files, "jsonld-home.json")
	assert.Contains(t, files["report.md"], "# AI Visibility Report")
}

func TestRunArchive_Priorities(t *testing.T) {
	o := newOrchestrator(nil)

	result, err := o.RunArchive(context.Background(), bareSiteZip(t), func(model.ProgressEvent) {})
	require.NoError(t, err)

	// Weighted deficits rank schema, robots, llms.txt on a bare site.
	require.Len(t, result.Priorities, 3)
	assert.Contains(t, result.Priorities[0], "Structured Data (0/100)")
	assert.Contains(t, result.Priorities[1], "Robots Access (0/100)")
	assert.Contains(t, result.Priorities[2], "llms.txt (0/100)")
}

func TestRunArchive_AuditCeiling(t *testing.T) {
	entries := make(map[string]string)
	for i := 0; i < 30; i++ {
		entries[strings.Repeat("p", i+1)+".html"] = "<html><body>page</body></html>"
	}

	o := New(
		crawler.New(config.CrawlConfig{}),
		nil,
		store.NewMemory(),
		store.NewMemory(),
		config.AuditConfig{MaxAuditPages: 20},
		time.Hour,
	)

	result, err := o.RunArchive(context.Background(), siteZip(t, entries), func(model.ProgressEvent) {})
	require.NoError(t, err)
	assert.Equal(t, 20, result.PagesAudited)
}

func TestRunArchive_Enhanced(t *testing.T) {
	o := newOrchestrator(enhance.New(goodGenerator()))

	result, err := o.RunArchive(context.Background(), bareSiteZip(t), func(model.ProgressEvent) {})
	require.NoError(t, err)

	assert.Equal(t, model.AIModeEnhanced, result.AIMode)
	// Three independent tasks plus the dependent report task.
	require.Len(t, result.AIDiagnostics, 4)
	assert.Equal(t, "report-enhancement", result.AIDiagnostics[3].Step)

	// The AEO dimension carries the blended score: round(80*0.6 + 15*0.4).
	var aeo model.DimensionResult
	for _, d := range result.Dimensions {
		if d.ID == model.DimAEO {
			aeo = d
		}
	}
	assert.Equal(t, 54, aeo.Score)

	var aiFinding bool
	for _, f := range aeo.Findings {
		if f.AI {
			aiFinding = true
		}
	}
	assert.True(t, aiFinding)

	// AI output replaces the deterministic artifacts.
	assert.Equal(t, "# AI Site", result.GeneratedFiles["llms.txt"])
	assert.Equal(t, "# AI Site full", result.GeneratedFiles["llms-full.txt"])
	assert.Contains(t, result.GeneratedFiles["jsonld-home.json"], `"@type": "WebSite"`)
	assert.Contains(t, result.GeneratedFiles["report.md"], "# Enhanced Report")

	// The aggregate reflects the blended AEO score.
	var weighted float64
	for _, d := range result.Dimensions {
		weighted += float64(d.Score) * d.Weight
	}
	assert.Equal(t, int(math.Round(weighted)), result.OverallScore)
}

func TestRunArchive_AIFailed(t *testing.T) {
	o := newOrchestrator(enhance.New(&fakeGenerator{err: context.DeadlineExceeded}))

	result, err := o.RunArchive(context.Background(), bareSiteZip(t), func(model.ProgressEvent) {})
	require.NoError(t, err)

	assert.Equal(t, model.AIModeFailed, result.AIMode)
	require.Len(t, result.AIDiagnostics, 3)
	for _, d := range result.AIDiagnostics {
		assert.False(t, d.Success)
		assert.NotEmpty(t, d.Error)
	}

	// Deterministic artifacts stand, and no report enhancement runs.
	assert.Contains(t, result.GeneratedFiles["llms.txt"], "## Pages")
	assert.Contains(t, result.GeneratedFiles["report.md"], "# AI Visibility Report")
}

func TestRunArchive_PartialAISuccessIsEnhanced(t *testing.T) {
	// Only llms.txt generation has a usable response.
	gen := &fakeGenerator{responses: map[string]string{
		"llmstxt.org":                `{"llms_txt": "# AI Site", "llms_full_txt": "# AI Site full"}`,
		"Rewrite this AI-visibility": "# Enhanced Report\n\n" + strings.Repeat("Guidance. ", 30),
	}}
	o := newOrchestrator(enhance.New(gen))

	result, err := o.RunArchive(context.Background(), bareSiteZip(t), func(model.ProgressEvent) {})
	require.NoError(t, err)

	assert.Equal(t, model.AIModeEnhanced, result.AIMode)
	assert.Equal(t, "# AI Site", result.GeneratedFiles["llms.txt"])
	// Failed tasks leave their deterministic output in place.
	assert.Contains(t, result.GeneratedFiles["jsonld-home.json"], "https://schema.org")
}

func TestLoadFiles_RoundTrip(t *testing.T) {
	o := newOrchestrator(nil)

	result, err := o.RunArchive(context.Background(), bareSiteZip(t), func(model.ProgressEvent) {})
	require.NoError(t, err)
	require.NotEmpty(t, result.DownloadID)

	files, err := o.LoadFiles(result.DownloadID)
	require.NoError(t, err)
	assert.Equal(t, result.GeneratedFiles, files)

	_, err = o.LoadFiles("no-such-id")
	assert.ErrorContains(t, err, "expired or unknown")
}

func TestFixPages_FromSnapshot(t *testing.T) {
	o := newOrchestrator(nil)

	result, err := o.RunArchive(context.Background(), bareSiteZip(t), func(model.ProgressEvent) {})
	require.NoError(t, err)
	require.NotEmpty(t, result.FixPagesID)

	fixed, err := o.FixPages(result.FixPagesID)
	require.NoError(t, err)
	require.Len(t, fixed, 1)
	assert.Equal(t, "index.html", fixed[0].Filename)
	assert.NotEmpty(t, fixed[0].Changes)

	_, err = o.FixPages("no-such-id")
	assert.ErrorContains(t, err, "expired or unknown")
}

func TestPriorities_TiesAndSkips(t *testing.T) {
	dims := []model.DimensionResult{
		{ID: model.DimSchema, Name: "Structured Data", Weight: 0.25, Score: 100},
		{ID: model.DimRobots, Name: "Robots Access", Weight: 0.20, Score: 50,
			Findings: []model.Finding{{Type: model.FindingFail, Message: "GPTBot is blocked"}}},
		{ID: model.DimLlmsTxt, Name: "llms.txt", Weight: 0.15, Score: 0},
		{ID: model.DimAEO, Name: "Content Quality", Weight: 0.15, Score: 0},
	}

	got := priorities(dims)

	// Perfect dimensions are skipped; equal deficits keep slice order.
	require.Len(t, got, 3)
	assert.Equal(t, "llms.txt (0/100): Improve llms.txt", got[0])
	assert.Equal(t, "Content Quality (0/100): Improve Content Quality", got[1])
	assert.Equal(t, "Robots Access (50/100): GPTBot is blocked", got[2])
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "-home", slugify("/"))
	assert.Equal(t, "-home", slugify(""))
	assert.Equal(t, "-blog-post", slugify("/blog/post"))
}
