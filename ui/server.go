package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"surveyinsight/app"
	"surveyinsight/internal"
	"surveyinsight/internal/config"
)

// Server is the JSON API over the segment explorer
type Server struct {
	router         *gin.Engine
	service        *app.SegmentExplorerService
	logger         *internal.Logger
	maxUploadBytes int64
	metrics        http.Handler
	httpServer     *http.Server
}

// ServerOption customises a Server
type ServerOption func(*Server)

// WithMetricsHandler serves h on GET /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger replaces the LOG_LEVEL driven default logger
func WithLogger(logger *internal.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger.WithComponent("API")
	}
}

// NewServer builds the API router. The gin mode is a process-wide setting
// and is left to the caller.
func NewServer(service *app.SegmentExplorerService, cfg config.ServerConfig, options ...ServerOption) *Server {
	maxUpload := cfg.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 32
	}

	s := &Server{
		router:         gin.New(),
		service:        service,
		logger:         internal.NewDefaultLogger().WithComponent("API"),
		maxUploadBytes: int64(maxUpload) << 20,
	}
	s.router.MaxMultipartMemory = s.maxUploadBytes
	for _, opt := range options {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}

	api := s.router.Group("/api")
	{
		datasets := api.Group("/datasets")
		datasets.POST("", limitBody(s.maxUploadBytes), s.handleUpload)
		datasets.GET("", s.handleList)
		datasets.GET("/:id", s.handleGet)
		datasets.DELETE("/:id", s.handleDelete)
		datasets.GET("/:id/classification", s.handleClassification)
		datasets.GET("/:id/overview", s.handleOverview)
		datasets.POST("/:id/insights", limitBody(s.maxUploadBytes), s.handleInsights)
		datasets.GET("/:id/report", s.handleReport)
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the API until Shutdown is called
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening on http://%s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
