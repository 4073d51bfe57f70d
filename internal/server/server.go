// Package server provides the HTTP API of the extraction service.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/diyagk01/blii-pdf-service/internal/config"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// requestTimeout covers the whole strategy chain of one request.
const requestTimeout = 10 * time.Minute

// Extractor is the part of pipeline.Service the handlers use.
type Extractor interface {
	Extract(ctx context.Context, doc *models.Document, opts pipeline.Options) *models.Envelope
	Capabilities() models.CapabilitySet
}

// Resolver turns a pdf_url or file_path into a document.
type Resolver interface {
	Resolve(ctx context.Context, ref, filename string) (*models.Document, error)
}

// Server is the HTTP server for the extraction API.
type Server struct {
	extractor Extractor
	resolver  Resolver
	config    *config.ServerConfig
	logger    *zap.Logger
	version   string
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	extractor Extractor,
	resolver Resolver,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	version string,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		extractor: extractor,
		resolver:  resolver,
		config:    cfg,
		logger:    logger,
		version:   version,
	}
}

// Router returns the API routes with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/capabilities", s.handleCapabilities)
	r.Post("/extract", s.handleExtract)
	r.Post("/upload", s.handleUpload)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("version", s.version))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
