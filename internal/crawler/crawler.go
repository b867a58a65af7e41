// Package crawler discovers and fetches a bounded set of pages plus the
// well-known auxiliary files an AI-visibility audit needs.
package crawler

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/aivis-cli/internal/analyzer"
	"github.com/sells-group/aivis-cli/internal/config"
	"github.com/sells-group/aivis-cli/internal/model"
)

const userAgent = "Mozilla/5.0 (compatible; AivisAuditBot/1.0)"

const maxBodySize = 2 * 1024 * 1024

// Crawler fetches sites over HTTP within fixed discovery and pacing bounds.
type Crawler struct {
	client  *http.Client
	cfg     config.CrawlConfig
	limiter *rate.Limiter
}

// New creates a Crawler from config.
func New(cfg config.CrawlConfig) *Crawler {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 15
	}
	if cfg.BatchPauseMs <= 0 {
		cfg.BatchPauseMs = 300
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 10
	}
	return &Crawler{
		client: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// FromURL crawls a live site starting at seed. The root page must be
// reachable HTML or the whole run fails; every further page fetch is
// best-effort with a single attempt.
func (c *Crawler) FromURL(ctx context.Context, seed string) (*model.CrawlResult, error) {
	baseURL, err := NormalizeSeed(seed)
	if err != nil {
		return nil, eris.Wrap(err, "crawler: parse seed")
	}

	base, _ := url.Parse(baseURL)
	if c.blocked(base.Hostname()) {
		return nil, eris.Errorf("crawler: refusing to crawl %s", base.Hostname())
	}

	rootHTML, status, err := c.fetchHTML(ctx, baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "crawler: site unreachable")
	}

	result := &model.CrawlResult{
		BaseURL: baseURL,
		Pages: []model.PageData{{
			URL:        baseURL,
			Path:       "/",
			HTML:       rootHTML,
			Title:      extractTitle(rootHTML),
			StatusCode: status,
		}},
	}

	// Discovery is capped before fetching, so slow sites cannot balloon
	// the run past the page ceiling.
	links := analyzer.Analyze(rootHTML, baseURL).InternalLinks
	var targets []string
	for _, link := range links {
		if len(targets) >= c.cfg.MaxPages-1 {
			break
		}
		if link == baseURL {
			continue
		}
		targets = append(targets, link)
	}

	result.Pages = append(result.Pages, c.fetchPages(ctx, targets)...)
	c.fetchWellKnown(ctx, Origin(baseURL), result)
	result.SiteType = ClassifySiteType(result.Pages)

	zap.L().Info("crawler: crawl complete",
		zap.String("base_url", baseURL),
		zap.Int("pages", len(result.Pages)),
		zap.String("site_type", result.SiteType),
	)

	return result, nil
}

// fetchPages fetches targets in batches with bounded fan-out and a short
// pause between batches. Failed or non-HTML fetches are dropped silently.
func (c *Crawler) fetchPages(ctx context.Context, targets []string) []model.PageData {
	var (
		mu    sync.Mutex
		pages []model.PageData
	)

	for start := 0; start < len(targets); start += c.cfg.Concurrency {
		end := min(start+c.cfg.Concurrency, len(targets))

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(c.cfg.Concurrency)

		for _, target := range targets[start:end] {
			g.Go(func() error {
				u, err := url.Parse(target)
				if err != nil || c.blocked(u.Hostname()) {
					return nil
				}

				html, status, err := c.fetchHTML(gCtx, target)
				if err != nil {
					zap.L().Debug("crawler: page dropped",
						zap.String("url", target),
						zap.Error(err),
					)
					return nil
				}

				path := u.Path
				if path == "" {
					path = "/"
				}

				mu.Lock()
				pages = append(pages, model.PageData{
					URL:        target,
					Path:       path,
					HTML:       html,
					Title:      extractTitle(html),
					StatusCode: status,
				})
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		if end < len(targets) && c.cfg.BatchPauseMs > 0 {
			select {
			case <-ctx.Done():
				return pages
			case <-time.After(c.cfg.BatchPause()):
			}
		}
	}

	return pages
}

// fetchWellKnown pulls robots.txt, sitemap.xml, llms.txt and llms-full.txt
// from the origin in parallel. Absence is not an error. origin carries no
// path, so a path-bearing seed still resolves /robots.txt at the root.
func (c *Crawler) fetchWellKnown(ctx context.Context, origin string, result *model.CrawlResult) {
	targets := []struct {
		path string
		dest **string
	}{
		{"/robots.txt", &result.RobotsTxt},
		{"/sitemap.xml", &result.SitemapXML},
		{"/llms.txt", &result.LlmsTxt},
		{"/llms-full.txt", &result.LlmsFullTxt},
	}

	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, err := c.fetchText(ctx, origin+t.path)
			if err != nil {
				return
			}
			*t.dest = &body
		}()
	}
	wg.Wait()
}

// fetchHTML GETs a URL and requires an HTML content type.
func (c *Crawler) fetchHTML(ctx context.Context, target string) (string, int, error) {
	body, ct, status, err := c.fetch(ctx, target)
	if err != nil {
		return "", 0, err
	}
	if !strings.Contains(ct, "text/html") {
		return "", 0, eris.Errorf("crawler: non-html content type %q", ct)
	}
	return body, status, nil
}

// fetchText GETs a plaintext or XML well-known file, rejecting error statuses
// and HTML bodies (soft-404 pages served in place of the real file).
func (c *Crawler) fetchText(ctx context.Context, target string) (string, error) {
	body, ct, status, err := c.fetch(ctx, target)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", eris.Errorf("crawler: status %d", status)
	}
	if strings.Contains(ct, "text/html") {
		return "", eris.New("crawler: html served for well-known file")
	}
	return body, nil
}

func (c *Crawler) fetch(ctx context.Context, target string) (body, contentType string, status int, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", "", 0, eris.Wrap(err, "crawler: limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", "", 0, eris.Wrap(err, "crawler: create request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", 0, eris.Wrap(err, "crawler: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", "", resp.StatusCode, eris.Errorf("crawler: status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", "", resp.StatusCode, eris.Wrap(err, "crawler: read body")
	}

	return string(raw), resp.Header.Get("Content-Type"), resp.StatusCode, nil
}

func (c *Crawler) blocked(host string) bool {
	if c.cfg.AllowPrivate {
		return false
	}
	if IsPrivateHost(host) {
		zap.L().Warn("crawler: blocked private target", zap.String("host", host))
		return true
	}
	return false
}

// NormalizeSeed turns user input into an absolute https URL with no trailing
// slash. The hostname must contain a dot.
func NormalizeSeed(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", eris.New("empty url")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", eris.Wrap(err, "invalid url")
	}
	if u.Hostname() == "" || !strings.Contains(u.Hostname(), ".") {
		return "", eris.Errorf("invalid hostname %q", u.Hostname())
	}

	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/"), nil
}

// Origin reduces an absolute URL to scheme://host. A seed may carry a path,
// but well-known files always live at the root.
func Origin(absURL string) string {
	u, err := url.Parse(absURL)
	if err != nil || u.Host == "" {
		return absURL
	}
	return u.Scheme + "://" + u.Host
}

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// extractTitle pulls the <title> from raw HTML.
func extractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
