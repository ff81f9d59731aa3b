package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/llmctx/internal/workspace"
)

// DefaultHistoryLimit is the number of snapshots listed on the form.
const DefaultHistoryLimit = 10

// shutdownTimeout bounds the graceful shutdown of ListenAndServe.
const shutdownTimeout = 5 * time.Second

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server is the HTTP front end of a workspace.
type Server struct {
	ws           *workspace.Workspace
	logger       *slog.Logger
	tmpl         *template.Template
	historyLimit int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHistoryLimit sets how many snapshots the form lists.
// Zero hides the history table.
func WithHistoryLimit(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.historyLimit = n
		}
	}
}

// NewServer creates a Server for ws.
// It fails only when the embedded templates do not parse.
func NewServer(ws *workspace.Workspace, opts ...Option) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		ws:           ws,
		logger:       slog.Default(),
		tmpl:         tmpl,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the router serving the form and the JSON endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/save", s.handleSave)
	r.Post("/refresh", s.handleRefresh)
	r.Post("/history/{id}/restore", s.handleRestore)
	r.Get("/data.json", s.handleDataFile)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/document", s.handleDocument)
		r.Get("/system", s.handleSystem)
		r.Get("/history", s.handleHistory)
	})

	static, err := fs.Sub(staticFS, "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts the
// server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("serving form", "addr", "http://"+ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
