package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/aivis-cli/internal/audit"
	"github.com/sells-group/aivis-cli/internal/crawler"
	"github.com/sells-group/aivis-cli/internal/model"
	"github.com/sells-group/aivis-cli/internal/ratelimit"
)

var servePort int

var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the audit server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		orch := buildOrchestrator()
		limiter := ratelimit.New(cfg.RateLimit.Window(), cfg.RateLimit.MaxRequests)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware(limiter))
			r.Post("/api/audit", handleAuditURL(orch))
			r.Post("/api/audit/upload", handleAuditUpload(orch, cfg.Server.MaxUploadSize))
		})

		r.Get("/api/download/{id}", handleDownload(orch))
		r.Get("/api/fixes/{id}", handleFixes(orch))

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port()),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func port() int {
	if servePort != 0 {
		return servePort
	}
	return cfg.Server.Port
}

// rateLimitMiddleware enforces the fixed-window per-IP cap on the audit
// endpoints.
func rateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter := limiter.Allow(ratelimit.ClientIP(r))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": fmt.Sprintf("rate limit exceeded, retry in %s", retryAfter.Round(time.Second)),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// handleAuditURL streams a URL audit as newline-delimited JSON.
func handleAuditURL(orch *audit.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		if _, err := crawler.NormalizeSeed(req.URL); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid url"})
			return
		}

		stream := newEventStream(w)
		result, err := orch.RunURL(r.Context(), req.URL, stream.emit)
		stream.finish(result, err)
	}
}

// handleAuditUpload validates and streams an archive audit.
func handleAuditUpload(orch *audit.Orchestrator, maxSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read upload"})
			return
		}

		switch {
		case len(data) == 0:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty upload"})
			return
		case int64(len(data)) > maxSize:
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds size limit"})
			return
		case len(data) < len(zipMagic) || !bytes.Equal(data[:len(zipMagic)], zipMagic):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "upload is not a zip archive"})
			return
		}

		stream := newEventStream(w)
		result, err := orch.RunArchive(r.Context(), data, stream.emit)
		stream.finish(result, err)
	}
}

// handleDownload packs a prior run's artifact bundle as a zip.
func handleDownload(orch *audit.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := orch.LoadFiles(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="aivis-audit.zip"`)
		if err := writeZip(w, files); err != nil {
			zap.L().Warn("download: zip write failed", zap.Error(err))
		}
	}
}

// handleFixes returns remediated pages as a JSON listing or a zip,
// negotiated via the Accept header.
func handleFixes(orch *audit.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fixed, err := orch.FixPages(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}

		if r.Header.Get("Accept") == "application/zip" {
			files := make(map[string]string, len(fixed))
			for _, f := range fixed {
				files[f.Filename] = f.Content
			}
			w.Header().Set("Content-Type", "application/zip")
			w.Header().Set("Content-Disposition", `attachment; filename="aivis-fixed-pages.zip"`)
			if err := writeZip(w, files); err != nil {
				zap.L().Warn("fixes: zip write failed", zap.Error(err))
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"pages": fixed})
	}
}

// eventStream writes newline-delimited JSON progress events with immediate
// flushing so callers can render before the run completes.
type eventStream struct {
	w       http.ResponseWriter
	enc     *json.Encoder
	flusher http.Flusher
	started bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	flusher, _ := w.(http.Flusher)
	return &eventStream{w: w, enc: json.NewEncoder(w), flusher: flusher}
}

func (s *eventStream) emit(ev model.ProgressEvent) {
	if !s.started {
		s.w.Header().Set("Content-Type", "application/x-ndjson")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}
	if err := s.enc.Encode(ev); err != nil {
		return
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// finish emits the terminal event. Run-level errors end the stream, never
// the process.
func (s *eventStream) finish(result *model.AuditResult, err error) {
	if err != nil {
		zap.L().Warn("audit stream failed", zap.Error(err))
		s.emit(model.ProgressEvent{Type: "error", Message: err.Error()})
		return
	}
	s.emit(model.ProgressEvent{Type: "complete", Result: result})
}

func writeZip(w io.Writer, files map[string]string) error {
	zw := zip.NewWriter(w)
	for name, content := range files {
		f, err := zw.Create(name)
		if err != nil {
			return eris.Wrap(err, "create zip entry")
		}
		if _, err := f.Write([]byte(content)); err != nil {
			return eris.Wrap(err, "write zip entry")
		}
	}
	return zw.Close()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
