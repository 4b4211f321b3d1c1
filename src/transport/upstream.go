package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Easy-Infra-Ltd/policyrisk/src/config"
)

const shutdownTimeout = 5 * time.Second

// Upstream wraps the MCP server that exposes the report tools to agent
// clients. Tools are registered on the underlying Server before calling Run.
type Upstream struct {
	Server *mcp.Server
	cfg    config.UpstreamConfig
	logger *slog.Logger
}

// NewUpstream creates an MCP server configured for the given transport.
func NewUpstream(cfg config.UpstreamConfig, logger *slog.Logger) *Upstream {
	srv := mcp.NewServer(
		&mcp.Implementation{
			Name:    "policyrisk",
			Title:   "Privacy policy risk report",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: "Analyze a privacy policy PDF, then read the top findings and their curated evidence quotes.",
			Logger:       logger,
		},
	)
	return &Upstream{
		Server: srv,
		cfg:    cfg,
		logger: logger.With("area", "upstream"),
	}
}

// Handler returns the streamable HTTP handler serving this MCP server, for
// mounting on a router that already owns the listener.
func (u *Upstream) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return u.Server },
		&mcp.StreamableHTTPOptions{Logger: u.logger},
	)
}

// Run starts the server on the configured transport and blocks until ctx is
// cancelled or the transport closes.
func (u *Upstream) Run(ctx context.Context) error {
	switch u.cfg.Transport {
	case config.TransportStdio:
		u.logger.Info("starting stdio transport")
		return u.Server.Run(ctx, &mcp.StdioTransport{})
	case config.TransportHTTP:
		mux := http.NewServeMux()
		mux.Handle(u.cfg.HTTP.Path, u.Handler())
		u.logger.Info("starting HTTP transport", "addr", u.cfg.HTTP.Addr, "path", u.cfg.HTTP.Path)
		return ServeHTTP(ctx, u.cfg.HTTP.Addr, mux, u.logger)
	default:
		return fmt.Errorf("unsupported upstream transport: %s", u.cfg.Transport)
	}
}

// ServeHTTP listens on addr and serves h until ctx is cancelled, then shuts
// down gracefully.
func ServeHTTP(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return Serve(ctx, ln, h, logger)
}

// Serve serves h on an existing listener until ctx is cancelled.
func Serve(ctx context.Context, ln net.Listener, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	logger.Info("listening", "addr", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP listener", "addr", ln.Addr())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
