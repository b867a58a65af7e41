package generate

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/sells-group/aivis-cli/internal/scorer"
)

// FixedPage is one remediated HTML page with a log of the injected tags.
type FixedPage struct {
	Filename string   `json:"filename"`
	Content  string   `json:"-"`
	Size     int      `json:"size"`
	Changes  []string `json:"changes"`
}

var headCloseRe = regexp.MustCompile(`(?i)</head>`)

// FixPages returns remediated copies of pages that are missing meta, OG, or
// JSON-LD tags. Pages with no gaps are omitted; an empty result is a valid
// outcome, not an error.
func FixPages(pages []scorer.Page) []FixedPage {
	var out []FixedPage
	for _, p := range pages {
		if fixed, ok := fixPage(p); ok {
			out = append(out, fixed)
		}
	}
	return out
}

func fixPage(p scorer.Page) (FixedPage, bool) {
	var inject []string
	var changes []string

	title := firstNonEmpty(p.Info.Title, p.Data.Path)
	desc := firstNonEmpty(p.Info.MetaDescription, "Describe this page in 50-160 characters.")

	add := func(tag, change string) {
		inject = append(inject, "  "+tag)
		changes = append(changes, change)
	}

	if p.Info.MetaDescription == "" {
		add(fmt.Sprintf(`<meta name="description" content="%s">`, html.EscapeString(desc)),
			"added meta description")
	}
	if p.Info.Canonical == "" {
		add(fmt.Sprintf(`<link rel="canonical" href="%s">`, html.EscapeString(p.Data.URL)),
			"added canonical link")
	}
	if p.Info.OGTitle == "" {
		add(fmt.Sprintf(`<meta property="og:title" content="%s">`, html.EscapeString(title)),
			"added og:title")
	}
	if p.Info.OGDescription == "" {
		add(fmt.Sprintf(`<meta property="og:description" content="%s">`, html.EscapeString(desc)),
			"added og:description")
	}
	if p.Info.OGURL == "" {
		add(fmt.Sprintf(`<meta property="og:url" content="%s">`, html.EscapeString(p.Data.URL)),
			"added og:url")
	}
	if p.Info.OGType == "" {
		add(`<meta property="og:type" content="website">`, "added og:type")
	}
	if len(p.Info.JSONLD) == 0 {
		add("<script type=\"application/ld+json\">\n"+jsonldForPage(p)+"  </script>",
			"added JSON-LD structured data")
	}

	if len(inject) == 0 {
		return FixedPage{}, false
	}

	block := "\n" + strings.Join(inject, "\n") + "\n"
	content := p.Data.HTML
	if loc := headCloseRe.FindStringIndex(content); loc != nil {
		content = content[:loc[0]] + block + content[loc[0]:]
	} else {
		content = "<head>" + block + "</head>\n" + content
	}

	return FixedPage{
		Filename: fixedFilename(p.Data.Path),
		Content:  content,
		Size:     len(content),
		Changes:  changes,
	}, true
}

func fixedFilename(path string) string {
	if scorer.IsHomePath(path) {
		return "index.html"
	}
	name := strings.Trim(path, "/")
	name = strings.ReplaceAll(name, "/", "-")
	if !strings.HasSuffix(name, ".html") && !strings.HasSuffix(name, ".htm") {
		name += ".html"
	}
	return name
}
