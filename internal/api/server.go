package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/owif/web-portal/internal/config"
	perrors "github.com/owif/web-portal/internal/errors"
	"github.com/owif/web-portal/internal/logging"
	"github.com/owif/web-portal/internal/metrics"
	"github.com/owif/web-portal/internal/nav"
	"github.com/owif/web-portal/internal/site"
)

// reloadScript is injected into every previewed page
const reloadScript = `<script>(function(){var p=location.protocol==="https:"?"wss://":"ws://";` +
	`var ws=new WebSocket(p+location.host+"/ws/reload");` +
	`ws.onmessage=function(e){if(JSON.parse(e.data).type==="reload"){location.reload();}};})();</script>`

// Server represents the preview HTTP server
type Server struct {
	config  *config.Config
	builder *site.Builder
	metrics *metrics.Metrics
	hub     *ReloadHub
	mux     *http.ServeMux
	assets  http.Handler
	logger  *logrus.Entry

	// rebuildMu keeps builds into the shared output directory sequential
	rebuildMu sync.Mutex
}

// NewServer creates a preview server for the pages of b
func NewServer(cfg *config.Config, b *site.Builder, m *metrics.Metrics) *Server {
	if b.History == nil {
		b.History = site.NewHistory(cfg.Site.History)
	}

	s := &Server{
		config:  cfg,
		builder: b,
		metrics: m,
		hub:     NewReloadHub(),
		mux:     http.NewServeMux(),
		assets:  http.FileServer(http.FS(b.Source)),
		logger:  logging.NewLogger("server"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	// Health check
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Navigation and builds
	s.mux.HandleFunc("GET /api/nav", s.handleNav)
	s.mux.HandleFunc("GET /api/builds", s.handleBuilds)
	s.mux.HandleFunc("GET /api/logs", s.handleLogs)
	s.mux.HandleFunc("DELETE /api/logs", s.handleClearLogs)

	// Observability
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// Live reload and dashboard
	s.mux.Handle("GET /ws/reload", s.hub)
	s.mux.HandleFunc("GET /_preview", s.handleDashboard)

	// Pages and assets
	s.mux.HandleFunc("GET /", s.handlePage)
}

// Handler returns the root handler, including request metrics
func (s *Server) Handler() http.Handler {
	return s.metrics.Middleware(s.mux)
}

// Hub returns the live-reload hub
func (s *Server) Hub() *ReloadHub {
	return s.hub
}

// Rebuild builds the site and tells connected pages to reload
func (s *Server) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	rec, err := s.builder.Build(ctx)
	if err != nil {
		return err
	}
	s.hub.Broadcast(ReloadMessage{Type: "reload", Build: rec.ID})
	return nil
}

// Watch rebuilds on every settled change below dir until ctx is cancelled.
// The build output is not watched, so a build never triggers another.
func (s *Server) Watch(ctx context.Context, dir string) error {
	w, err := NewSourceWatcher(dir, s.config.Server.DebounceMs, func() {
		if err := s.Rebuild(ctx); err != nil && ctx.Err() == nil {
			s.logger.WithError(err).Warn("Rebuild failed")
		}
	}, s.builder.Output)
	if err != nil {
		return err
	}
	go w.Start(ctx)
	return nil
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errWriter := logging.Writer("http", logrus.ErrorLevel)
	defer errWriter.Close()

	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(errWriter, "", 0),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", srv.Addr).Info("Preview server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down preview server")
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "healthy",
	}
	if last, ok := s.builder.History.Last(); ok {
		resp["last_build"] = last
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleNav returns the navigation bar for a location as JSON
func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("variant")
	if name == "" {
		name = s.builder.Variant
	}
	v, name, err := s.config.Variant(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	location := r.URL.Query().Get("path")
	bar := nav.Build(v.Entries, location, v.Options())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"variant": name,
		"path":    nav.NormalizePath(location),
		"brand":   bar.Brand,
		"links":   bar.Links,
	})
}

// handleBuilds returns recent builds, newest first
func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"builds": s.builder.History.Entries(),
	})
}

// handleLogs returns captured log entries, optionally filtered by level
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	var levels []string
	if q := r.URL.Query().Get("level"); q != "" {
		levels = strings.Split(q, ",")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": logging.Buffer().Entries(levels),
	})
}

// handleClearLogs empties the captured log buffer
func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	logging.Buffer().Clear()
	w.WriteHeader(http.StatusNoContent)
}

// handleDashboard serves the preview dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(dashboardUI))
}

// handlePage serves decorated pages by route and everything else from the
// site source
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Path
	if p, ok := s.pageForFile(location); ok {
		location = p.Route
	}

	if _, ok := s.builder.Lookup(location); !ok {
		if s.isSourceDir(r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		s.assets.ServeHTTP(w, r)
		return
	}

	out, err := s.builder.RenderRoute(location)
	if err != nil {
		status := http.StatusInternalServerError
		if perrors.Is(err, perrors.ErrCodePageNotFound) {
			status = http.StatusNotFound
		}
		s.logger.WithError(err).WithField("path", r.URL.Path).Warn("Page render failed")
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(injectReload(out))
}

// pageForFile maps a request for a page file such as /config.html to its page
func (s *Server) pageForFile(urlPath string) (config.PageConfig, bool) {
	name := strings.TrimPrefix(path.Clean(urlPath), "/")
	for _, p := range s.builder.Pages {
		if path.Clean(p.File) == name {
			return p, true
		}
	}
	return config.PageConfig{}, false
}

// isSourceDir reports whether urlPath names a directory of the site source.
// Directories are not listed.
func (s *Server) isSourceDir(urlPath string) bool {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}
	info, err := fs.Stat(s.builder.Source, name)
	return err == nil && info.IsDir()
}

func injectReload(page []byte) []byte {
	i := bytes.LastIndex(page, []byte("</body>"))
	if i < 0 {
		return append(page, reloadScript...)
	}
	out := make([]byte, 0, len(page)+len(reloadScript))
	out = append(out, page[:i]...)
	out = append(out, reloadScript...)
	return append(out, page[i:]...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	var pe *perrors.PortalError
	if errors.As(err, &pe) {
		writeJSON(w, status, pe)
		return
	}
	writeJSON(w, status, perrors.Wrap(err, perrors.ErrCodeInternal, err.Error()))
}
