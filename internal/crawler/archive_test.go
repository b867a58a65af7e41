package crawler

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
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

func TestFromArchive(t *testing.T) {
	data := buildZip(t, map[string]string{
		"index.html":      `<html><head><title>Home</title></head><body>hi</body></html>`,
		"about.htm":       `<html><head><title>About</title></head><body>us</body></html>`,
		"robots.txt":      "User-agent: *\nAllow: /\n",
		"sitemap.xml":     `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`,
		"llms.txt":        "# Home\n",
		"styles/main.css": "body{}",
	})

	result, err := FromArchive(data)
	require.NoError(t, err)

	require.Len(t, result.Pages, 2)
	paths := map[string]string{}
	for _, p := range result.Pages {
		paths[p.Path] = p.Title
	}
	assert.Equal(t, "Home", paths["/index.html"])
	assert.Equal(t, "About", paths["/about.htm"])
	assert.Equal(t, placeholderOrigin, result.BaseURL)

	require.NotNil(t, result.RobotsTxt)
	require.NotNil(t, result.SitemapXML)
	require.NotNil(t, result.LlmsTxt)
	assert.Nil(t, result.LlmsFullTxt)
}

func TestFromArchive_StripsCommonRoot(t *testing.T) {
	data := buildZip(t, map[string]string{
		"site/index.html": `<html><body>home</body></html>`,
		"site/robots.txt": "User-agent: *\n",
	})

	result, err := FromArchive(data)
	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	assert.Equal(t, "/index.html", result.Pages[0].Path)
	require.NotNil(t, result.RobotsTxt)
}

func TestFromArchive_MixedRootsNotStripped(t *testing.T) {
	data := buildZip(t, map[string]string{
		"a/index.html": `<html><body>a</body></html>`,
		"b/index.html": `<html><body>b</body></html>`,
	})

	result, err := FromArchive(data)
	require.NoError(t, err)

	require.Len(t, result.Pages, 2)
	paths := map[string]bool{}
	for _, p := range result.Pages {
		paths[p.Path] = true
	}
	assert.True(t, paths["/a/index.html"])
	assert.True(t, paths["/b/index.html"])
}

func TestFromArchive_NoHTML(t *testing.T) {
	data := buildZip(t, map[string]string{
		"robots.txt": "User-agent: *\n",
		"notes.md":   "# notes",
	})

	_, err := FromArchive(data)
	assert.ErrorContains(t, err, "no HTML files found")
}

func TestFromArchive_NotAZip(t *testing.T) {
	_, err := FromArchive([]byte("definitely not a zip"))
	assert.ErrorContains(t, err, "open archive")
}
