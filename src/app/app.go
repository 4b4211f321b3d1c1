// Package app wires config, the analysis client, the report session and the
// two front doors (MCP tools and the viewer API) together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/Easy-Infra-Ltd/policyrisk/src/analysis"
	"github.com/Easy-Infra-Ltd/policyrisk/src/config"
	"github.com/Easy-Infra-Ltd/policyrisk/src/curation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/presentation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/session"
	"github.com/Easy-Infra-Ltd/policyrisk/src/tools"
	"github.com/Easy-Infra-Ltd/policyrisk/src/transport"
	"github.com/Easy-Infra-Ltd/policyrisk/src/viewer"
)

// App is the top-level orchestrator. One App owns one report session shared
// by every front door it starts.
type App struct {
	cfg     config.Config
	logger  *slog.Logger
	client  *analysis.Client
	catalog *presentation.Catalog
	session *session.Session
}

// New builds the curator, catalog, client and session from cfg.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	curator, err := curation.NewCurator(cfg.Curation.Options(), logger)
	if err != nil {
		return nil, fmt.Errorf("curation: %w", err)
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		client:  analysis.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.Timeout(), logger),
		catalog: presentation.CatalogFor(cfg.Locale),
		session: session.New(curator, cfg.Curation.Findings(), logger),
	}, nil
}

// Client returns the analysis service client.
func (a *App) Client() *analysis.Client { return a.client }

// Catalog returns the message catalog for the configured locale.
func (a *App) Catalog() *presentation.Catalog { return a.catalog }

// Session returns the shared report session.
func (a *App) Session() *session.Session { return a.session }

func (a *App) upstream() *transport.Upstream {
	up := transport.NewUpstream(a.cfg.Upstream, a.logger)
	count := tools.NewRegistry(up, a.session, a.client, a.catalog, a.logger).Register()
	a.logger.Info("tools registered", "count", count)
	return up
}

// RunMCP serves the report tools on the configured upstream transport.
// Blocks until SIGINT/SIGTERM or ctx cancellation.
func (a *App) RunMCP(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	up := a.upstream()
	a.logger.Info("upstream ready", "transport", a.cfg.Upstream.Transport)
	return up.Run(ctx)
}

// Serve runs the viewer API with the MCP tools mounted on the same listener
// at the configured upstream HTTP path. Blocks until SIGINT/SIGTERM or ctx
// cancellation.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	up := a.upstream()
	srv := viewer.NewServer(a.session, a.client, a.catalog, a.logger,
		viewer.WithCORSOrigins(a.cfg.Viewer.AllowedOrigins),
		viewer.WithMCPHandler(a.cfg.Upstream.HTTP.Path, up.Handler()),
	)

	a.logger.Info("starting viewer",
		"addr", a.cfg.Viewer.Addr,
		"analysis_service", a.cfg.Analysis.BaseURL,
		"mcp_path", a.cfg.Upstream.HTTP.Path,
	)
	return transport.ServeHTTP(ctx, a.cfg.Viewer.Addr, srv.Routes(), a.logger.With("area", "http"))
}
