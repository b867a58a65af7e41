package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/aivis-cli/internal/audit"
	"github.com/sells-group/aivis-cli/internal/config"
	"github.com/sells-group/aivis-cli/internal/crawler"
	"github.com/sells-group/aivis-cli/internal/model"
	"github.com/sells-group/aivis-cli/internal/ratelimit"
	"github.com/sells-group/aivis-cli/internal/store"
)

func testOrchestrator() *audit.Orchestrator {
	return audit.New(
		crawler.New(config.CrawlConfig{}),
		nil,
		store.NewMemory(),
		store.NewMemory(),
		config.AuditConfig{MaxAuditPages: 20},
		time.Hour,
	)
}

func testSiteZip(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("index.html")
	require.NoError(t, err)
	_, err = w.Write([]byte("<html><head><title>T</title></head><body><h1>T</h1></body></html>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func decodeStream(t *testing.T, body string) []model.ProgressEvent {
	t.Helper()

	var events []model.ProgressEvent
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		var ev model.ProgressEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev), line)
		events = append(events, ev)
	}
	return events
}

func TestHandleAuditUpload_StreamsRun(t *testing.T) {
	h := handleAuditUpload(testOrchestrator(), 10*1024*1024)

	req := httptest.NewRequest("POST", "/api/audit/upload", bytes.NewReader(testSiteZip(t)))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	events := decodeStream(t, rec.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "info", events[0].Type)

	last := events[len(events)-1]
	assert.Equal(t, "complete", last.Type)
	require.NotNil(t, last.Result)
	assert.Equal(t, model.AIModeBasic, last.Result.AIMode)
	assert.NotEmpty(t, last.Result.DownloadID)
}

func TestHandleAuditUpload_RejectsNonZip(t *testing.T) {
	h := handleAuditUpload(testOrchestrator(), 10*1024*1024)

	req := httptest.NewRequest("POST", "/api/audit/upload", strings.NewReader("<html>not a zip</html>"))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a zip archive")
}

func TestHandleAuditUpload_RejectsEmptyAndOversized(t *testing.T) {
	h := handleAuditUpload(testOrchestrator(), 16)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("POST", "/api/audit/upload", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big := append([]byte{0x50, 0x4B, 0x03, 0x04}, bytes.Repeat([]byte{0}, 32)...)
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest("POST", "/api/audit/upload", bytes.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleAuditURL_RejectsBadSeed(t *testing.T) {
	h := handleAuditURL(testOrchestrator())

	req := httptest.NewRequest("POST", "/api/audit", strings.NewReader(`{"url": "nodot"}`))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid url")
}

func TestHandleAuditURL_StreamError(t *testing.T) {
	// A valid-looking seed that resolves to a private address streams an
	// error event instead of failing the HTTP exchange.
	h := handleAuditURL(testOrchestrator())

	req := httptest.NewRequest("POST", "/api/audit", strings.NewReader(`{"url": "http://192.168.1.1"}`))
	rec := httptest.NewRecorder()
	h(rec, req)

	events := decodeStream(t, rec.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Type)
	assert.Contains(t, events[0].Message, "refusing to crawl")
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.New(time.Hour, 2)
	h := rateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/audit", nil)
		req.Header.Set("X-Real-IP", "203.0.113.9")
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/audit", nil)
	req.Header.Set("X-Real-IP", "203.0.113.9")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestHandleDownload(t *testing.T) {
	orch := testOrchestrator()
	result, err := orch.RunArchive(context.Background(), testSiteZip(t), func(model.ProgressEvent) {})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/api/download/{id}", handleDownload(orch))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/download/"+result.DownloadID, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["robots.txt"])
	assert.True(t, names["report.md"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/download/unknown-id", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleFixes(t *testing.T) {
	orch := testOrchestrator()
	result, err := orch.RunArchive(context.Background(), testSiteZip(t), func(model.ProgressEvent) {})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/api/fixes/{id}", handleFixes(orch))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/fixes/"+result.FixPagesID, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Pages []struct {
			Filename string   `json:"filename"`
			Size     int      `json:"size"`
			Changes  []string `json:"changes"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Pages, 1)
	assert.Equal(t, "index.html", body.Pages[0].Filename)
	assert.NotEmpty(t, body.Pages[0].Changes)
	// Raw HTML stays out of the JSON listing.
	assert.NotContains(t, rec.Body.String(), "<html>")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/fixes/"+result.FixPagesID, nil)
	req.Header.Set("Accept", "application/zip")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
}
