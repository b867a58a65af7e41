package model

// PageData is one fetched page. Immutable after the crawler creates it.
type PageData struct {
	URL        string `json:"url"`
	Path       string `json:"path"`
	HTML       string `json:"html"`
	Title      string `json:"title"`
	StatusCode int    `json:"status_code,omitempty"`
}

// CrawlResult is everything the crawler learned about one site. The
// well-known files are nil pointers when the site does not serve them;
// absence is scored by the relevant dimension, not treated as an error.
type CrawlResult struct {
	Pages       []PageData `json:"pages"`
	RobotsTxt   *string    `json:"robots_txt"`
	SitemapXML  *string    `json:"sitemap_xml"`
	LlmsTxt     *string    `json:"llms_txt"`
	LlmsFullTxt *string    `json:"llms_full_txt"`
	SiteType    string     `json:"site_type"`
	BaseURL     string     `json:"base_url"`
}

// ProgressStatus is the state of one dimension in the progress stream.
type ProgressStatus string

const (
	StatusRunning  ProgressStatus = "running"
	StatusComplete ProgressStatus = "complete"
	StatusSkipped  ProgressStatus = "skipped"
)

// ProgressEvent is one newline-delimited JSON object in the audit stream.
// Exactly one of the optional payloads is populated depending on Type.
type ProgressEvent struct {
	Type      string         `json:"type"` // progress | info | complete | error
	Dimension DimensionID    `json:"dimension,omitempty"`
	Status    ProgressStatus `json:"status,omitempty"`
	Score     *int           `json:"score,omitempty"`
	Detail    string         `json:"detail,omitempty"`

	// info payload
	SiteType   string `json:"siteType,omitempty"`
	PagesFound int    `json:"pagesFound,omitempty"`
	BaseURL    string `json:"baseUrl,omitempty"`

	// terminal payloads
	Result  *AuditResult `json:"result,omitempty"`
	Message string       `json:"message,omitempty"`
}
