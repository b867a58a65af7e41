// Package enhance implements the optional AI overlay. Every entry point is
// isolated: any failure degrades to the deterministic output and is recorded
// as a diagnostic, never surfaced as a run error.
package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/aivis-cli/internal/model"
	"github.com/sells-group/aivis-cli/internal/scorer"
)

// Generation failure classes. Callers treat all three identically (fall back
// to deterministic output); the class only lands in diagnostics.
var (
	ErrTimeout   = eris.New("enhance: generation timed out")
	ErrProvider  = eris.New("enhance: provider error")
	ErrMalformed = eris.New("enhance: malformed output")
)

// Generator is the opaque text-generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Enhancer runs the AI sub-tasks against a Generator.
type Enhancer struct {
	gen Generator
}

// New creates an Enhancer.
func New(gen Generator) *Enhancer {
	return &Enhancer{gen: gen}
}

// Model reports the underlying model identifier for diagnostics.
func (e *Enhancer) Model() string {
	return e.gen.Model()
}

// aeoResponse is the JSON shape expected from the AEO enhancement prompt.
type aeoResponse struct {
	Score    *int `json:"score"`
	Findings []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"findings"`
}

// EnhanceAEO asks the model to re-score content quality and blends the
// result with the deterministic score: round(ai*0.6 + det*0.4). AI findings
// are appended to the deterministic ones, tagged as AI-derived.
func (e *Enhancer) EnhanceAEO(ctx context.Context, det model.DimensionResult, pages []scorer.Page) (model.DimensionResult, error) {
	prompt := aeoPrompt(det, pages)

	text, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return det, err
	}

	raw, ok := extractJSON(text)
	if !ok {
		return det, eris.Wrap(ErrMalformed, "aeo: no JSON object in response")
	}

	var resp aeoResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return det, eris.Wrap(ErrMalformed, "aeo: unmarshal response")
	}
	if resp.Score == nil {
		return det, eris.Wrap(ErrMalformed, "aeo: missing score")
	}

	aiScore := math.Min(100, math.Max(0, float64(*resp.Score)))
	blended := det
	blended.Score = int(math.Round(aiScore*0.6 + float64(det.Score)*0.4))
	blended.Grade = model.Grade(blended.Score)

	blended.Findings = append([]model.Finding{}, det.Findings...)
	for _, f := range resp.Findings {
		ft := model.FindingType(f.Type)
		switch ft {
		case model.FindingPass, model.FindingWarning, model.FindingFail, model.FindingInfo:
		default:
			ft = model.FindingInfo
		}
		blended.Findings = append(blended.Findings, model.Finding{
			Type:    ft,
			Message: f.Message,
			Detail:  f.Detail,
			AI:      true,
		})
	}

	return blended, nil
}

// llmsResponse is the JSON shape expected from the llms.txt prompt.
type llmsResponse struct {
	LlmsTxt     string `json:"llms_txt"`
	LlmsFullTxt string `json:"llms_full_txt"`
}

// GenerateLlmsTxt asks the model for llms.txt and llms-full.txt content.
// On success the output fully replaces the deterministic generator's.
func (e *Enhancer) GenerateLlmsTxt(ctx context.Context, crawl *model.CrawlResult, pages []scorer.Page) (llmsTxt, llmsFullTxt string, err error) {
	text, err := e.gen.Generate(ctx, llmsPrompt(crawl, pages))
	if err != nil {
		return "", "", err
	}

	raw, ok := extractJSON(text)
	if !ok {
		return "", "", eris.Wrap(ErrMalformed, "llms: no JSON object in response")
	}

	var resp llmsResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return "", "", eris.Wrap(ErrMalformed, "llms: unmarshal response")
	}
	if strings.TrimSpace(resp.LlmsTxt) == "" || strings.TrimSpace(resp.LlmsFullTxt) == "" {
		return "", "", eris.Wrap(ErrMalformed, "llms: missing expected keys")
	}

	return resp.LlmsTxt, resp.LlmsFullTxt, nil
}

// jsonldResponse is the JSON shape expected from the JSON-LD prompt.
type jsonldResponse struct {
	Pages []struct {
		Path   string         `json:"path"`
		JSONLD map[string]any `json:"jsonld"`
	} `json:"pages"`
}

// GenerateJSONLD asks the model for per-page JSON-LD. On success the output
// fully replaces the deterministic skeletons.
func (e *Enhancer) GenerateJSONLD(ctx context.Context, pages []scorer.Page) (map[string]string, error) {
	text, err := e.gen.Generate(ctx, jsonldPrompt(pages))
	if err != nil {
		return nil, err
	}

	raw, ok := extractJSON(text)
	if !ok {
		return nil, eris.Wrap(ErrMalformed, "jsonld: no JSON object in response")
	}

	var resp jsonldResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, eris.Wrap(ErrMalformed, "jsonld: unmarshal response")
	}
	if len(resp.Pages) == 0 {
		return nil, eris.Wrap(ErrMalformed, "jsonld: no pages in response")
	}

	out := make(map[string]string, len(resp.Pages))
	for _, p := range resp.Pages {
		if p.Path == "" || len(p.JSONLD) == 0 {
			return nil, eris.Wrap(ErrMalformed, "jsonld: incomplete page entry")
		}
		doc, err := json.MarshalIndent(p.JSONLD, "", "  ")
		if err != nil {
			return nil, eris.Wrap(ErrMalformed, "jsonld: re-marshal page entry")
		}
		out[p.Path] = string(doc) + "\n"
	}

	return out, nil
}

// minEnhancedReportLen guards against the model returning a stub instead of
// a full report rewrite.
const minEnhancedReportLen = 200

// EnhanceReport asks the model to rewrite the deterministic markdown report.
// Too-short output is rejected in favor of the deterministic report.
func (e *Enhancer) EnhanceReport(ctx context.Context, report string, result *model.AuditResult) (string, error) {
	text, err := e.gen.Generate(ctx, reportPrompt(report, result))
	if err != nil {
		return "", err
	}

	enhanced := strings.TrimSpace(text)
	if len(enhanced) < minEnhancedReportLen {
		return "", eris.Wrap(ErrMalformed, "report: enhanced text too short")
	}
	return enhanced, nil
}

// extractJSON pulls the outermost JSON object from model output that may be
// wrapped in prose or code fences.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func aeoPrompt(det model.DimensionResult, pages []scorer.Page) string {
	var b strings.Builder
	b.WriteString("You are auditing website content for answer-engine extraction quality.\n")
	fmt.Fprintf(&b, "The deterministic heuristics scored it %d/100.\n\n", det.Score)
	writePageDigest(&b, pages)
	b.WriteString("\nRespond with only a JSON object: ")
	b.WriteString(`{"score": <0-100>, "findings": [{"type": "pass|warning|fail|info", "message": "...", "detail": "..."}]}`)
	return b.String()
}

func llmsPrompt(crawl *model.CrawlResult, pages []scorer.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write llms.txt and llms-full.txt for %s per llmstxt.org conventions:\n", crawl.BaseURL)
	b.WriteString("H1 title, one-line blockquote summary, H2 sections with markdown links.\n\n")
	writePageDigest(&b, pages)
	b.WriteString("\nRespond with only a JSON object: ")
	b.WriteString(`{"llms_txt": "...", "llms_full_txt": "..."}`)
	return b.String()
}

func jsonldPrompt(pages []scorer.Page) string {
	var b strings.Builder
	b.WriteString("Write complete schema.org JSON-LD for each page below.\n\n")
	writePageDigest(&b, pages)
	b.WriteString("\nRespond with only a JSON object: ")
	b.WriteString(`{"pages": [{"path": "/...", "jsonld": {"@context": "https://schema.org", ...}}]}`)
	return b.String()
}

func reportPrompt(report string, result *model.AuditResult) string {
	var b strings.Builder
	b.WriteString("Rewrite this AI-visibility audit report with concrete, prioritized remediation guidance. ")
	fmt.Fprintf(&b, "Keep it markdown. Overall score %d/100.\n\n", result.OverallScore)
	b.WriteString(report)
	return b.String()
}

// writePageDigest summarizes pages for a prompt without shipping raw HTML.
func writePageDigest(b *strings.Builder, pages []scorer.Page) {
	const maxDigestPages = 10
	for i, p := range pages {
		if i >= maxDigestPages {
			fmt.Fprintf(b, "…and %d more pages\n", len(pages)-maxDigestPages)
			break
		}
		fmt.Fprintf(b, "- %s: title=%q description=%q headings=%d text_chars=%d\n",
			p.Data.Path, p.Info.Title, p.Info.MetaDescription,
			len(p.Info.Headings), p.Info.TextLength)
	}
}
