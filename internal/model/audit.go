// Package model defines the shared audit data types.
package model

import "math"

// FindingType classifies a single check outcome within a dimension.
type FindingType string

const (
	FindingPass    FindingType = "pass"
	FindingWarning FindingType = "warning"
	FindingFail    FindingType = "fail"
	FindingInfo    FindingType = "info"
)

// Finding is one check result inside a dimension. The list order is
// evaluation order; it is displayed, never scored.
type Finding struct {
	Type    FindingType `json:"type"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
	Page    string      `json:"page,omitempty"`
	AI      bool        `json:"ai,omitempty"`
}

// DimensionID identifies one of the eight scored visibility axes.
type DimensionID string

const (
	DimSchema    DimensionID = "schema"
	DimRobots    DimensionID = "robots"
	DimLlmsTxt   DimensionID = "llmsTxt"
	DimAEO       DimensionID = "aeo"
	DimMeta      DimensionID = "meta"
	DimSitemap   DimensionID = "sitemap"
	DimSemantic  DimensionID = "semantic"
	DimRendering DimensionID = "rendering"

	// DimAIAnalysis labels the enhancement phase in the progress stream.
	// It is not scored and never appears in DimensionOrder.
	DimAIAnalysis DimensionID = "aiAnalysis"
)

// DimensionOrder lists the dimensions heaviest-first. The orchestrator runs
// them in this order so the progress stream front-loads the big movers.
var DimensionOrder = []DimensionID{
	DimSchema, DimRobots, DimLlmsTxt, DimAEO,
	DimMeta, DimSitemap, DimSemantic, DimRendering,
}

// DimensionWeights are fixed and sum to 1.0.
var DimensionWeights = map[DimensionID]float64{
	DimSchema:    0.25,
	DimRobots:    0.20,
	DimLlmsTxt:   0.15,
	DimAEO:       0.15,
	DimMeta:      0.10,
	DimSitemap:   0.05,
	DimSemantic:  0.05,
	DimRendering: 0.05,
}

// DimensionNames maps ids to display names used in reports and priorities.
var DimensionNames = map[DimensionID]string{
	DimSchema:    "Structured Data",
	DimRobots:    "Robots Access",
	DimLlmsTxt:   "llms.txt",
	DimAEO:       "Content Quality",
	DimMeta:      "Meta Tags",
	DimSitemap:   "Sitemap",
	DimSemantic:  "Semantic HTML",
	DimRendering: "Rendering",
}

// DimensionResult is one dimension's scored outcome for a run.
type DimensionResult struct {
	ID       DimensionID `json:"id"`
	Name     string      `json:"name"`
	Weight   float64     `json:"weight"`
	Score    int         `json:"score"`
	Grade    string      `json:"grade"`
	Findings []Finding   `json:"findings"`
	Fixable  bool        `json:"fixable"`
}

// Grade maps a 0-100 score to a letter grade.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// ClampScore bounds a raw score to [0,100] and rounds to an integer.
func ClampScore(raw float64) int {
	return int(math.Round(math.Min(100, math.Max(0, raw))))
}

// AIMode records whether AI enhancement ran and how it ended.
type AIMode string

const (
	AIModeBasic    AIMode = "basic"
	AIModeEnhanced AIMode = "ai-enhanced"
	AIModeFailed   AIMode = "ai-failed"
)

// AIDiagnostic records the outcome of one AI sub-task. Appended once per
// attempt, never mutated afterwards.
type AIDiagnostic struct {
	Step       string `json:"step"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Model      string `json:"model"`
}

// AuditResult is the aggregate outcome of one audit run.
type AuditResult struct {
	URL            string            `json:"url"`
	SiteType       string            `json:"siteType"`
	PagesAudited   int               `json:"pagesAudited"`
	Dimensions     []DimensionResult `json:"dimensions"`
	OverallScore   int               `json:"overallScore"`
	Grade          string            `json:"grade"`
	Priorities     []string          `json:"priorities"`
	GeneratedFiles map[string]string `json:"generatedFiles"`
	AIMode         AIMode            `json:"aiMode"`
	AIDiagnostics  []AIDiagnostic    `json:"aiDiagnostics,omitempty"`
	DownloadID     string            `json:"downloadId,omitempty"`
	FixPagesID     string            `json:"fixPagesId,omitempty"`
}
