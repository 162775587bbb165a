// Package memora wires the intake flows, gateways, catalog and metrics into
// one application value shared by the CLI and the intake server.
package memora

import (
	"fmt"
	"log/slog"

	"github.com/goliatone/go-memora/internal/config"
	"github.com/goliatone/go-memora/internal/metrics"
	"github.com/goliatone/go-memora/internal/server"
	"github.com/goliatone/go-memora/pkg/album"
	"github.com/goliatone/go-memora/pkg/albums"
	"github.com/goliatone/go-memora/pkg/catalog"
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/request"
	"github.com/goliatone/go-memora/pkg/summary"
	"github.com/goliatone/go-memora/pkg/wizard"
)

// Option customises New.
type Option func(*App)

// WithLogger sets the application logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.Logger = logger
		}
	}
}

// WithGateway replaces the configured submission gateway.
func WithGateway(gw gateway.Gateway) Option {
	return func(a *App) {
		if gw != nil {
			a.Gateway = gw
		}
	}
}

// WithCatalog replaces the embedded catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(a *App) {
		if cat != nil {
			a.Catalog = cat
		}
	}
}

// WithoutSeed leaves the album repository empty.
func WithoutSeed() Option {
	return func(a *App) {
		a.seed = false
	}
}

// App holds the collaborators every entry point needs.
type App struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Albums   *albums.Repository
	Gateway  gateway.Gateway
	Previews *formdata.MemoryPreviews
	Metrics  *metrics.PrometheusRecorder
	Summary  *summary.Renderer
	Logger   *slog.Logger

	seed bool
}

// New builds an App from cfg. In mock mode submissions land in the in-memory
// album repository, seeded with demo albums; in http mode they are posted to
// gateway.endpoint.
func New(cfg *config.Config, options ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	app := &App{
		Config:   cfg,
		Albums:   albums.NewRepository(),
		Previews: formdata.NewMemoryPreviews(),
		Metrics:  metrics.NewPrometheusRecorder(),
		Logger:   slog.New(slog.DiscardHandler),
		seed:     true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(app)
	}

	if app.Catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("memora: load catalog: %w", err)
		}
		app.Catalog = cat
	}
	if app.seed {
		albums.Seed(app.Albums)
	}

	renderer, err := summary.New(app.Catalog)
	if err != nil {
		return nil, fmt.Errorf("memora: summary templates: %w", err)
	}
	app.Summary = renderer

	if app.Gateway == nil {
		gw, err := app.buildGateway()
		if err != nil {
			return nil, err
		}
		app.Gateway = gw
	}
	return app, nil
}

func (a *App) buildGateway() (gateway.Gateway, error) {
	var base gateway.Gateway
	switch a.Config.Gateway.Mode {
	case config.GatewayHTTP:
		gw, err := gateway.NewHTTP(gateway.HTTPOptions{
			BaseURL: a.Config.Gateway.Endpoint,
			Timeout: a.Config.Gateway.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("memora: http gateway: %w", err)
		}
		base = gw
	default:
		base = gateway.NewMock(
			gateway.WithLatency(a.Config.Gateway.Latency),
			gateway.WithRepository(a.Albums),
			gateway.WithCatalog(a.Catalog),
			gateway.WithLogger(a.Logger.With("component", "gateway")),
		)
	}

	registry := gateway.NewRegistry(nil)
	for _, flow := range []string{gateway.FlowAlbum, gateway.FlowRequest} {
		if err := registry.Register(flow, base); err != nil {
			return nil, fmt.Errorf("memora: %w", err)
		}
	}
	return registry, nil
}

// FlowDeps returns the collaborators handed to every flow.
func (a *App) FlowDeps() server.FlowDeps {
	return server.FlowDeps{
		Catalog:       a.Catalog,
		Gateway:       a.Gateway,
		Previews:      a.Previews,
		Summary:       a.Summary,
		Logger:        a.Logger.With("component", "wizard"),
		Recorder:      a.Metrics,
		SubmitTimeout: a.Config.Gateway.Timeout,
	}
}

func (a *App) flowOptions(session wizard.TokenSource) []wizard.Option {
	deps := a.FlowDeps()
	opts := []wizard.Option{
		wizard.WithLogger(deps.Logger),
		wizard.WithGateway(deps.Gateway),
		wizard.WithRecorder(deps.Recorder),
		wizard.WithSubmitTimeout(deps.SubmitTimeout),
	}
	if session != nil {
		opts = append(opts, wizard.WithSession(session))
	}
	return opts
}

// NewAlbumFlow starts an album creation flow for session, which may be nil.
func (a *App) NewAlbumFlow(session wizard.TokenSource) (*album.Flow, error) {
	return album.New(a.Config.Flows.Album,
		album.WithCatalog(a.Catalog),
		album.WithFileOptions(formdata.WithPreviews(a.Previews)),
		album.WithFlowOptions(a.flowOptions(session)...),
	)
}

// NewRequestFlow starts a service request flow for session, which may be nil.
func (a *App) NewRequestFlow(session wizard.TokenSource) (*request.Flow, error) {
	return request.New(a.Config.Flows.Request,
		request.WithFileOptions(formdata.WithPreviews(a.Previews)),
		request.WithFlowOptions(a.flowOptions(session)...),
	)
}

// NewServer builds the intake server with both flow kinds registered.
func (a *App) NewServer() (*server.Server, error) {
	manager := server.NewManager(
		server.WithTTL(a.Config.Server.FlowTTL),
		server.WithManagerLogger(a.Logger.With("component", "flows")),
		server.WithManagerRecorder(a.Metrics),
	)
	deps := a.FlowDeps()
	if err := manager.Register(gateway.FlowAlbum, server.AlbumFactory(a.Config.Flows.Album, deps)); err != nil {
		return nil, err
	}
	if err := manager.Register(gateway.FlowRequest, server.RequestFactory(a.Config.Flows.Request, deps)); err != nil {
		return nil, err
	}

	return server.New(server.Options{
		Addr:           a.Config.Server.Addr,
		ShutdownGrace:  a.Config.Server.ShutdownGrace,
		MaxUploadBytes: int64(a.Config.Server.MaxUploadMB) * formdata.MegaByte,
		Manager:        manager,
		Albums:         a.Albums,
		Catalog:        a.Catalog,
		Summary:        a.Summary,
		Recorder:       a.Metrics,
		Metrics:        a.Metrics.Handler(),
		Logger:         a.Logger.With("component", "server"),
	})
}
