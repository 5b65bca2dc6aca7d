// Package web serves the planner as a server-rendered HTML form.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/timebox/internal/logger"
	"github.com/julianstephens/timebox/internal/planner"
)

const (
	maxFormBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	planner *planner.Service
	tmpl    *template.Template
}

func New(p *planner.Service) (*Server, error) {
	if p == nil {
		return nil, errors.New("web: missing planner")
	}

	tmpl, err := template.New("layout").Parse(layoutHTML)
	if err != nil {
		return nil, err
	}
	if _, err := tmpl.New("index").Parse(indexHTML); err != nil {
		return nil, err
	}
	if _, err := tmpl.New("history").Parse(historyHTML); err != nil {
		return nil, err
	}

	return &Server{planner: p, tmpl: tmpl}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleSave)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleCSS)
	return withRequestID(withAccessLog(withSecurityHeaders(mux)))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Web surface listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down web surface")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
