// Package server is the HTTP display surface: it serves the rendered page,
// pushes updates over a WebSocket, serves local images of the displayed
// document and accepts documents from editor integrations.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alnah/go-mdslides"
	"github.com/alnah/go-mdslides/internal/live"
	"github.com/alnah/go-mdslides/internal/pipeline"
)

// Routes.
const (
	WSPath      = "/ws"
	FilesPrefix = "/files/"
)

// MaxDocumentSize bounds documents accepted by the push API.
const MaxDocumentSize = 10 << 20

const shutdownTimeout = 5 * time.Second

// Renderer renders documents and the page shown before any is open.
type Renderer interface {
	live.Renderer
	RenderWaiting(ctx context.Context, theme mdslides.Theme, liveURL string) (string, error)
}

// Config holds server settings.
type Config struct {
	Addr     string
	Theme    mdslides.Theme
	Mode     mdslides.Mode
	Debounce time.Duration
}

// Server is the HTTP display surface of one live session.
type Server struct {
	router   chi.Router
	renderer Renderer
	ctrl     *live.Controller
	hub      *Hub
	log      *slog.Logger
	cfg      Config
}

// New creates the server and its live controller.
func New(renderer Renderer, log *slog.Logger, cfg Config) *Server {
	s := &Server{
		renderer: renderer,
		hub:      NewHub(log),
		log:      log,
		cfg:      cfg,
	}

	opts := []live.Option{
		live.WithLogger(log),
		live.WithNotifier(s.hub),
		live.WithLiveURL(WSPath),
		live.WithAssets(s.assetsFor),
	}
	if cfg.Mode != "" {
		opts = append(opts, live.WithMode(cfg.Mode))
	}
	if cfg.Theme != "" {
		opts = append(opts, live.WithTheme(cfg.Theme))
	}
	if cfg.Debounce > 0 {
		opts = append(opts, live.WithDebounce(cfg.Debounce))
	}
	s.ctrl = live.New(renderer, func() (live.Surface, error) { return s.hub, nil }, opts...)

	s.setupRoutes()
	return s
}

// Controller returns the live controller driving this surface.
func (s *Server) Controller() *live.Controller {
	return s.ctrl
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handlePage)
	r.Get("/health", s.handleHealth)
	r.Get(WSPath, s.handleWS)
	r.Get(FilesPrefix+"*", s.handleFile)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/open", s.handleOpen)
		r.Post("/change", s.handleChange)
		r.Post("/theme", s.handleTheme)
		r.Post("/mode", s.handleMode)
		r.Post("/refresh", s.handleRefresh)
	})

	s.router = r
}

// Listen binds the configured address. Separate from Serve so callers can
// report a busy port before starting.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return ln, nil
}

// Serve handles requests on ln until ctx is cancelled, then shuts down
// gracefully and disposes the session.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.ctrl.Dispose()
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.ctrl.Dispose()
	// Hijacked WebSocket connections are not tracked by Shutdown.
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// handlePage serves the current page, or the waiting page before any
// document is open.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := s.ctrl.Page()
	if page == "" {
		var err error
		page, err = s.renderer.RenderWaiting(r.Context(), s.ctrl.Theme(), WSPath)
		if err != nil {
			s.log.Error("rendering waiting page", "error", err)
			http.Error(w, "rendering failed", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"session": s.ctrl.State().String(),
		"clients": s.hub.Clients(),
	})
}

// handleFile serves a file from the directory of the displayed document.
// Paths escaping that directory, through ".." or symlinks, are rejected.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	dir := s.documentDir()
	if dir == "" {
		http.NotFound(w, r)
		return
	}

	rel := chi.URLParam(r, "*")
	full, err := resolveFile(dir, rel)
	if err != nil {
		s.log.Debug("file request rejected", "path", rel, "error", err)
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}

// resolveFile maps rel onto a regular file under dir.
func resolveFile(dir, rel string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if realDir, err := filepath.EvalSymlinks(absDir); err == nil {
		absDir = realDir
	}

	full := filepath.Join(absDir, filepath.FromSlash(rel))
	if !pipeline.IsPathUnderDir(full, absDir) {
		return "", errors.New("outside document directory")
	}

	real, err := filepath.EvalSymlinks(full)
	if err != nil {
		return "", err
	}
	if !pipeline.IsPathUnderDir(real, absDir) {
		return "", errors.New("symlink outside document directory")
	}

	info, err := os.Stat(real)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", errors.New("is a directory")
	}
	return real, nil
}

// documentDir returns the directory local images are served from.
func (s *Server) documentDir() string {
	session, ok := s.ctrl.Session()
	if !ok {
		return ""
	}
	p := DocPath(session.DocID)
	if p == "" {
		return ""
	}
	return filepath.Dir(p)
}

// assetsFor resolves image references of docID to /files/ URLs.
// Documents that are not local files keep their references.
func (s *Server) assetsFor(docID string) mdslides.AssetResolver {
	p := DocPath(docID)
	if p == "" {
		return nil
	}
	return mdslides.ServedAssets(filepath.Dir(p), FilesPrefix)
}

// DocPath returns the local file path of a document id, which is either a
// path or a file:// URI. Returns "" for other URIs.
func DocPath(docID string) string {
	if docID == "" {
		return ""
	}
	if !strings.Contains(docID, "://") {
		return docID
	}
	u, err := url.Parse(docID)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return filepath.FromSlash(u.Path)
}

// documentRequest is the body of /api/open and /api/change.
type documentRequest struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.URI == "" {
		jsonError(w, "uri is required", http.StatusBadRequest)
		return
	}

	if err := s.ctrl.Open(r.Context(), req.URI, req.Text); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeStatus(w, http.StatusOK, s.ctrl.State().String())
}

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.URI == "" {
		jsonError(w, "uri is required", http.StatusBadRequest)
		return
	}

	// Debounced: the render happens after the response.
	s.ctrl.Changed(req.URI, req.Text)
	writeStatus(w, http.StatusAccepted, "scheduled")
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	theme, err := mdslides.ParseTheme(req.Theme)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.ctrl.SetTheme(r.Context(), theme); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeStatus(w, http.StatusOK, string(theme))
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	mode, err := mdslides.ParseMode(req.Mode)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.ctrl.SetMode(r.Context(), mode); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeStatus(w, http.StatusOK, string(mode))
}

// handleRefresh re-renders the open document, e.g. after custom styles or
// templates were edited. It takes no body.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Refresh(r.Context()); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeStatus(w, http.StatusOK, s.ctrl.State().String())
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, mdslides.ErrInvalidTheme), errors.Is(err, mdslides.ErrInvalidMode):
		return http.StatusBadRequest
	case errors.Is(err, live.ErrNoSurface):
		return http.StatusServiceUnavailable
	case errors.Is(err, live.ErrSessionDisposed):
		return http.StatusConflict
	case errors.Is(err, mdslides.ErrHTMLConversion), errors.Is(err, mdslides.ErrRender):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxDocumentSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "document too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
