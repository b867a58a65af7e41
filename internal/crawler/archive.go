package crawler

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/aivis-cli/internal/model"
)

// placeholderOrigin gives uploaded pages a synthetic absolute URL so the
// scorers' URL handling needs no special casing.
const placeholderOrigin = "https://uploaded.site"

// FromArchive builds a CrawlResult from an in-memory zip export of a site.
// A single common root folder is stripped; well-known files are recognized
// at the top level; every .html/.htm entry becomes a page.
func FromArchive(data []byte) (*model.CrawlResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrap(err, "crawler: open archive")
	}

	root := commonRoot(zr.File)

	result := &model.CrawlResult{BaseURL: placeholderOrigin}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		name := strings.TrimPrefix(f.Name, root)
		if name == "" || strings.Contains(name, "..") {
			continue
		}

		content, err := readEntry(f)
		if err != nil {
			zap.L().Debug("crawler: skipping unreadable archive entry",
				zap.String("entry", f.Name),
				zap.Error(err),
			)
			continue
		}

		switch {
		case name == "robots.txt":
			result.RobotsTxt = &content
		case name == "sitemap.xml":
			result.SitemapXML = &content
		case name == "llms.txt":
			result.LlmsTxt = &content
		case name == "llms-full.txt":
			result.LlmsFullTxt = &content
		case isHTMLEntry(name):
			p := "/" + name
			result.Pages = append(result.Pages, model.PageData{
				URL:   placeholderOrigin + p,
				Path:  p,
				HTML:  content,
				Title: extractTitle(content),
			})
		}
	}

	if len(result.Pages) == 0 {
		return nil, eris.New("crawler: no HTML files found in archive")
	}

	result.SiteType = ClassifySiteType(result.Pages)
	return result, nil
}

// commonRoot returns the single top-level folder shared by every entry,
// including the trailing slash, or "" when entries disagree.
func commonRoot(files []*zip.File) string {
	root := ""
	for _, f := range files {
		name := strings.TrimSuffix(f.Name, "/")
		if name == "" {
			continue
		}
		idx := strings.Index(f.Name, "/")
		if idx < 0 {
			return ""
		}
		top := f.Name[:idx+1]
		if root == "" {
			root = top
		} else if root != top {
			return ""
		}
	}
	return root
}

func isHTMLEntry(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".html" || ext == ".htm"
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "open entry")
	}
	defer func() { _ = rc.Close() }()

	raw, err := io.ReadAll(io.LimitReader(rc, maxBodySize))
	if err != nil {
		return "", eris.Wrap(err, "read entry")
	}
	return string(raw), nil
}
