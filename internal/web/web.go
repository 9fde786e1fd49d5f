package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"time"

	"schedwidget/internal/config"
	appLog "schedwidget/internal/log"
	"schedwidget/internal/widget"
)

// Server serves host pages with their widget mounts rendered server side.
// Every request to a page is one independent page load.
type Server struct {
	cfg    *config.Config
	widget *widget.Widget
	mux    *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, w *widget.Widget) *Server {
	s := &Server{
		cfg:    cfg,
		widget: w,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password disables auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="schedwidget", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves until ctx is canceled, then shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, w *widget.Widget) error {
	s := NewServer(cfg, w)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

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

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/demo", s.handleDemo)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	s.mux.HandleFunc("/{$}", s.handlePage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePage renders the configured host page. The file is read on every
// request so edits show up without a restart.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	f, err := os.Open(s.cfg.Page)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		appLog.Error("page open failed", err, "path", s.cfg.Page)
		writeError(w, http.StatusInternalServerError, "page not available")
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := s.widget.ProcessHTML(r.Context(), f, &buf); err != nil {
		appLog.Error("page render failed", err, "path", s.cfg.Page)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, buf.Bytes())
}

var demoTemplate = template.Must(template.New("demo").Parse(`<!doctype html>
<html lang="{{.Lang}}">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Schedule Widget Demo</title>
    <style>body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Arial; margin: 24px; }</style>
  </head>
  <body>
    <div data-onec-schedule data-api-base="{{.APIBase}}" data-start-date="{{.StartDate}}" data-end-date="{{.EndDate}}"></div>
  </body>
</html>
`))

type demoPage struct {
	Lang      string
	APIBase   string
	StartDate string
	EndDate   string
}

// handleDemo renders a page with a single mount backed by the configured
// api_base. Callers only choose the dates; the API host is never taken from
// the request.
//
// GET /demo?start_date=..&end_date=..
//   - missing values leave the mount unconfigured
func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("api_base") {
		appLog.Debug("demo api_base parameter ignored", "api_base", appLog.RedactURL(q.Get("api_base")))
	}
	page := demoPage{
		Lang:      s.cfg.Language,
		APIBase:   s.cfg.APIBase,
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}

	var src bytes.Buffer
	if err := demoTemplate.Execute(&src, page); err != nil {
		appLog.Error("demo template failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build demo page")
		return
	}

	var out bytes.Buffer
	if _, err := s.widget.ProcessHTML(r.Context(), &src, &out); err != nil {
		appLog.Error("demo render failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, out.Bytes())
}

// handlePreview serves the last snapshot PNG from disk.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.Snapshot.Path)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
