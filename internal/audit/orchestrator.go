// Package audit sequences the crawl, the eight scorers, the optional AI
// overlay, and artifact generation for one run, emitting ordered progress
// events along the way.
package audit

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/aivis-cli/internal/config"
	"github.com/sells-group/aivis-cli/internal/crawler"
	"github.com/sells-group/aivis-cli/internal/enhance"
	"github.com/sells-group/aivis-cli/internal/generate"
	"github.com/sells-group/aivis-cli/internal/model"
	"github.com/sells-group/aivis-cli/internal/scorer"
	"github.com/sells-group/aivis-cli/internal/store"
)

// ProgressFunc receives progress events in scorer-execution order. It is
// called synchronously; slow consumers slow the run, not reorder it.
type ProgressFunc func(model.ProgressEvent)

// Snapshot is the page state retained for on-demand HTML remediation.
type Snapshot struct {
	Pages []model.PageData `json:"pages"`
}

// Orchestrator owns the audit pipeline. One instance serves many runs; all
// per-run state lives on the stack.
type Orchestrator struct {
	crawler   *crawler.Crawler
	enhancer  *enhance.Enhancer // nil disables AI enhancement
	artifacts store.Store
	snapshots store.Store
	cfg       config.AuditConfig
	ttl       time.Duration
	now       func() time.Time
}

// New creates an Orchestrator. enhancer may be nil, in which case every run
// resolves to basic mode.
func New(cr *crawler.Crawler, enh *enhance.Enhancer, artifacts, snapshots store.Store, cfg config.AuditConfig, ttl time.Duration) *Orchestrator {
	if cfg.MaxAuditPages <= 0 {
		cfg.MaxAuditPages = 20
	}
	return &Orchestrator{
		crawler:   cr,
		enhancer:  enh,
		artifacts: artifacts,
		snapshots: snapshots,
		cfg:       cfg,
		ttl:       ttl,
		now:       time.Now,
	}
}

// RunURL audits a live site.
func (o *Orchestrator) RunURL(ctx context.Context, seed string, emit ProgressFunc) (*model.AuditResult, error) {
	crawl, err := o.crawler.FromURL(ctx, seed)
	if err != nil {
		return nil, err
	}
	return o.run(ctx, crawl, emit)
}

// RunArchive audits an uploaded site export.
func (o *Orchestrator) RunArchive(ctx context.Context, data []byte, emit ProgressFunc) (*model.AuditResult, error) {
	crawl, err := crawler.FromArchive(data)
	if err != nil {
		return nil, err
	}
	return o.run(ctx, crawl, emit)
}

func (o *Orchestrator) run(ctx context.Context, crawl *model.CrawlResult, emit ProgressFunc) (*model.AuditResult, error) {
	// The audit ceiling is independent of the crawl's discovery ceiling.
	if len(crawl.Pages) > o.cfg.MaxAuditPages {
		crawl.Pages = crawl.Pages[:o.cfg.MaxAuditPages]
	}

	emit(model.ProgressEvent{
		Type:       "info",
		SiteType:   crawl.SiteType,
		PagesFound: len(crawl.Pages),
		BaseURL:    crawl.BaseURL,
	})

	pages := scorer.AnalyzePages(crawl.Pages)

	dims := make(map[model.DimensionID]model.DimensionResult, len(model.DimensionOrder))
	for _, id := range model.DimensionOrder {
		emit(model.ProgressEvent{Type: "progress", Dimension: id, Status: model.StatusRunning})

		res := o.score(id, crawl, pages)
		dims[id] = res

		score := res.Score
		emit(model.ProgressEvent{
			Type:      "progress",
			Dimension: id,
			Status:    model.StatusComplete,
			Score:     &score,
			Detail:    res.Grade,
		})
	}

	result := &model.AuditResult{
		URL:          crawl.BaseURL,
		SiteType:     crawl.SiteType,
		PagesAudited: len(crawl.Pages),
		AIMode:       model.AIModeBasic,
	}

	o.applyDimensions(result, dims)

	files := o.deterministicFiles(crawl, pages)

	if o.enhancer != nil {
		o.enhance(ctx, result, dims, crawl, pages, files)
	} else {
		emit(model.ProgressEvent{
			Type:      "progress",
			Dimension: model.DimAIAnalysis,
			Status:    model.StatusSkipped,
			Detail:    "no AI capability configured",
		})
	}

	result.Priorities = priorities(result.Dimensions)

	report := generate.Report(result, o.now())
	if o.enhancer != nil && result.AIMode == model.AIModeEnhanced {
		// Dependent task: only runs when an independent task succeeded.
		outcome := &enhance.Outcome{Diagnostics: result.AIDiagnostics}
		report = o.enhancer.RunReport(ctx, outcome, report, result)
		result.AIDiagnostics = outcome.Diagnostics
	}
	files["report.md"] = report
	result.GeneratedFiles = files

	o.persist(result, crawl)

	zap.L().Info("audit: run complete",
		zap.String("url", result.URL),
		zap.Int("overall_score", result.OverallScore),
		zap.String("grade", result.Grade),
		zap.String("ai_mode", string(result.AIMode)),
	)

	return result, nil
}

// score dispatches one dimension. Scorers are pure; order between them only
// affects progress display.
func (o *Orchestrator) score(id model.DimensionID, crawl *model.CrawlResult, pages []scorer.Page) model.DimensionResult {
	switch id {
	case model.DimSchema:
		return scorer.Schema(pages)
	case model.DimRobots:
		return scorer.Robots(crawl.RobotsTxt)
	case model.DimLlmsTxt:
		return scorer.LlmsTxt(crawl.LlmsTxt, crawl.LlmsFullTxt, pages)
	case model.DimAEO:
		return scorer.AEO(pages)
	case model.DimMeta:
		return scorer.Meta(pages)
	case model.DimSitemap:
		return scorer.Sitemap(crawl.SitemapXML, crawl.RobotsTxt, pages)
	case model.DimSemantic:
		return scorer.Semantic(pages)
	default:
		return scorer.Rendering(pages)
	}
}

// applyDimensions orders the dimension results and recomputes the weighted
// aggregate.
func (o *Orchestrator) applyDimensions(result *model.AuditResult, dims map[model.DimensionID]model.DimensionResult) {
	result.Dimensions = result.Dimensions[:0]
	var weighted float64
	for _, id := range model.DimensionOrder {
		d := dims[id]
		result.Dimensions = append(result.Dimensions, d)
		weighted += float64(d.Score) * d.Weight
	}
	result.OverallScore = int(math.Round(weighted))
	result.Grade = model.Grade(result.OverallScore)
}

// deterministicFiles builds the artifact bundle without AI involvement.
func (o *Orchestrator) deterministicFiles(crawl *model.CrawlResult, pages []scorer.Page) map[string]string {
	files := map[string]string{
		"robots.txt":    generate.RobotsTxt(crawl.BaseURL),
		"sitemap.xml":   generate.SitemapXML(crawl.Pages, o.now()),
		"llms.txt":      generate.LlmsTxt(crawl, pages),
		"llms-full.txt": generate.LlmsFullTxt(crawl, pages),
	}
	for name, content := range generate.JSONLD(pages) {
		files[name] = content
	}
	return files
}

// enhance runs the three independent AI sub-tasks and folds their outcomes
// into the result. Failures leave deterministic output untouched.
func (o *Orchestrator) enhance(ctx context.Context, result *model.AuditResult, dims map[model.DimensionID]model.DimensionResult, crawl *model.CrawlResult, pages []scorer.Page, files map[string]string) {
	outcome := o.enhancer.RunAll(ctx, dims[model.DimAEO], crawl, pages)
	result.AIDiagnostics = outcome.Diagnostics

	if outcome.Succeeded() {
		result.AIMode = model.AIModeEnhanced
	} else {
		result.AIMode = model.AIModeFailed
		return
	}

	if outcome.AEO != nil {
		dims[model.DimAEO] = *outcome.AEO
		o.applyDimensions(result, dims)
	}

	if outcome.LlmsTxt != "" {
		files["llms.txt"] = outcome.LlmsTxt
		files["llms-full.txt"] = outcome.LlmsFullTxt
	}

	if outcome.JSONLD != nil {
		for name := range generate.JSONLD(pages) {
			delete(files, name)
		}
		for path, doc := range outcome.JSONLD {
			files["jsonld"+slugify(path)+".json"] = doc
		}
	}
}

// persist stores the artifact bundle and the fixable-page snapshot under
// fresh ids for the retention window.
func (o *Orchestrator) persist(result *model.AuditResult, crawl *model.CrawlResult) {
	if blob, err := json.Marshal(result.GeneratedFiles); err == nil {
		id := uuid.NewString()
		o.artifacts.Set(id, blob, o.ttl)
		result.DownloadID = id
	}

	if blob, err := json.Marshal(Snapshot{Pages: crawl.Pages}); err == nil {
		id := uuid.NewString()
		o.snapshots.Set(id, blob, o.ttl)
		result.FixPagesID = id
	}
}

// LoadFiles retrieves a prior run's artifact bundle.
func (o *Orchestrator) LoadFiles(id string) (map[string]string, error) {
	blob, ok := o.artifacts.Get(id)
	if !ok {
		return nil, eris.New("audit: download expired or unknown, re-run the audit")
	}
	var files map[string]string
	if err := json.Unmarshal(blob, &files); err != nil {
		return nil, eris.Wrap(err, "audit: decode artifact bundle")
	}
	return files, nil
}

// FixPages re-derives remediated HTML for a prior run's snapshot.
func (o *Orchestrator) FixPages(id string) ([]generate.FixedPage, error) {
	blob, ok := o.snapshots.Get(id)
	if !ok {
		return nil, eris.New("audit: snapshot expired or unknown, re-run the audit")
	}
	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, eris.Wrap(err, "audit: decode snapshot")
	}
	return generate.FixPages(scorer.AnalyzePages(snap.Pages)), nil
}

// priorities ranks dimensions by weighted deficit, descending, ties broken
// by the fixed dimension order, and renders the top three as action lines.
func priorities(dims []model.DimensionResult) []string {
	type ranked struct {
		dim     model.DimensionResult
		deficit float64
	}

	var list []ranked
	for _, d := range dims {
		deficit := float64(100-d.Score) * d.Weight
		if deficit > 0 {
			list = append(list, ranked{dim: d, deficit: deficit})
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].deficit > list[j].deficit
	})

	if len(list) > 3 {
		list = list[:3]
	}

	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, priorityLine(r.dim))
	}
	return out
}

func priorityLine(d model.DimensionResult) string {
	msg := "Improve " + d.Name
	for _, f := range d.Findings {
		if f.Type == model.FindingFail || f.Type == model.FindingWarning {
			msg = f.Message
			break
		}
	}
	return d.Name + " (" + strconv.Itoa(d.Score) + "/100): " + msg
}

func slugify(path string) string {
	if path == "" || path == "/" {
		return "-home"
	}
	out := make([]rune, 0, len(path))
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
