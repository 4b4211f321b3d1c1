// Package viewer serves the current report session to the web front end
// over a small JSON API.
package viewer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Easy-Infra-Ltd/policyrisk/src/analysis"
	"github.com/Easy-Infra-Ltd/policyrisk/src/presentation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/session"
)

const (
	// maxUploadBytes bounds the multipart body accepted by /api/analyze.
	maxUploadBytes = 64 << 20
	shortTimeout   = 30 * time.Second
)

// Backend is the analysis service as seen by the viewer. *analysis.Client
// implements it.
type Backend interface {
	session.Analyzer
	Download(ctx context.Context, kind analysis.DownloadKind, analysisID string, w io.Writer) (int64, error)
	Health(ctx context.Context) error
}

// Server holds the dependencies of the viewer API.
type Server struct {
	session *session.Session
	backend Backend
	catalog *presentation.Catalog
	origins []string
	mcp     http.Handler
	mcpPath string
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithMCPHandler mounts an MCP streamable HTTP handler at path.
func WithMCPHandler(path string, h http.Handler) Option {
	return func(s *Server) {
		s.mcpPath = path
		s.mcp = h
	}
}

// NewServer creates a viewer bound to one session and backend.
func NewServer(sess *session.Session, backend Backend, catalog *presentation.Catalog, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		session: sess,
		backend: backend,
		catalog: catalog,
		logger:  logger.With("area", "viewer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the chi router with middleware and all routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Analysis can take minutes; the backend client's own timeout applies.
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/download/{kind}", s.handleDownload)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(shortTimeout))
			r.Get("/health", s.handleHealth)
			r.Get("/state", s.handleState)
			r.Get("/report", s.handleReport)
			r.Get("/report.md", s.handleReportMarkdown)
			r.Get("/findings/{index}/evidence", s.handleEvidence)
			r.Delete("/report", s.handleReset)
		})
	})

	if s.mcp != nil {
		r.Handle(s.mcpPath, s.mcp)
	}

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
