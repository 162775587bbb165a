// Package server exposes the intake flows over HTTP. Each flow lives in a
// Manager keyed by id; clients edit fields, upload photos, move between steps
// and submit through JSON endpoints described by an embedded OpenAPI
// contract that every request is validated against.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-memora/internal/metrics"
	"github.com/goliatone/go-memora/pkg/albums"
	"github.com/goliatone/go-memora/pkg/catalog"
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/summary"
)

// Defaults applied by New.
const (
	DefaultAddr          = ":8080"
	DefaultShutdownGrace = 10 * time.Second
	DefaultMaxUpload     = 64 * formdata.MegaByte
)

// Options configures a Server.
type Options struct {
	Addr          string
	ShutdownGrace time.Duration
	// MaxUploadBytes caps a single multipart request.
	MaxUploadBytes int64

	Manager  *Manager
	Albums   *albums.Repository
	Catalog  *catalog.Catalog
	Summary  *summary.Renderer
	Recorder metrics.Recorder
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server is the intake HTTP server.
type Server struct {
	addr      string
	grace     time.Duration
	maxUpload int64

	manager   *Manager
	albums    *albums.Repository
	catalog   *catalog.Catalog
	summary   *summary.Renderer
	recorder  metrics.Recorder
	metrics   http.Handler
	logger    *slog.Logger
	validator *requestValidator

	handler http.Handler
}

// New builds a server. The manager is required; other collaborators fall
// back to in-memory defaults.
func New(opts Options) (*Server, error) {
	if opts.Manager == nil {
		return nil, errors.New("server: manager is required")
	}
	validator, err := newRequestValidator(context.Background())
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:      opts.Addr,
		grace:     opts.ShutdownGrace,
		maxUpload: opts.MaxUploadBytes,
		manager:   opts.Manager,
		albums:    opts.Albums,
		catalog:   opts.Catalog,
		summary:   opts.Summary,
		recorder:  opts.Recorder,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		validator: validator,
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	if s.grace <= 0 {
		s.grace = DefaultShutdownGrace
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}
	if s.albums == nil {
		s.albums = albums.NewRepository()
	}
	if s.catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("server: load catalog: %w", err)
		}
		s.catalog = cat
	}
	if s.recorder == nil {
		s.recorder = metrics.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully and abandons every live flow.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.manager.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}
