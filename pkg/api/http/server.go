package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aescanero/modhub/internal/application/auth"
	"github.com/aescanero/modhub/internal/application/catalog"
	"github.com/aescanero/modhub/internal/domain"
	"github.com/aescanero/modhub/internal/ports"
	"github.com/aescanero/modhub/pkg/adapters/gamebanana"
	"github.com/aescanero/modhub/pkg/adapters/uploads"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ExternalCatalog is the upstream mod repository
type ExternalCatalog interface {
	ListMods(ctx context.Context, page int) (*gamebanana.Page, error)
	FetchMod(ctx context.Context, modID int64) (*domain.Draft, error)
}

// Server represents the HTTP API server
type Server struct {
	router    *gin.Engine
	server    *http.Server
	catalog   *catalog.Service
	gate      *auth.Gate
	uploads   *uploads.Store
	external  ExternalCatalog
	metrics   ports.MetricsCollector
	logger    *zap.Logger
	maxUpload int64
	startedAt time.Time
}

// Config holds HTTP server configuration
type Config struct {
	Port           int
	Catalog        *catalog.Service
	Gate           *auth.Gate
	Uploads        *uploads.Store
	External       ExternalCatalog
	Metrics        ports.MetricsCollector
	MetricsHandler http.Handler
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(recoverPanic(cfg.Logger))
	router.Use(requestLogger(cfg.Logger))
	router.Use(requestMetrics(cfg.Metrics))
	router.Use(corsMiddleware())

	s := &Server{
		router:    router,
		catalog:   cfg.Catalog,
		gate:      cfg.Gate,
		uploads:   cfg.Uploads,
		external:  cfg.External,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		maxUpload: cfg.MaxUploadBytes,
		startedAt: time.Now(),
	}

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	s.setupRoutes(metricsHandler)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes(metricsHandler http.Handler) {
	s.router.GET("/metrics", gin.WrapH(metricsHandler))

	// Static pages and uploaded files
	for _, page := range []string{"index.html", "mod.html", "admin.html"} {
		s.router.GET("/"+page, s.servePage(page))
		s.router.HEAD("/"+page, s.servePage(page))
	}
	s.router.GET("/", s.servePage("index.html"))
	s.router.HEAD("/", s.servePage("index.html"))
	s.router.StaticFS("/uploads", s.uploads.FileSystem(uploads.KindFile))
	s.router.StaticFS("/images", s.uploads.FileSystem(uploads.KindImage))

	api := s.router.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		api.GET("/mods", s.handleListMods)
		api.GET("/mods/:id", s.handleGetMod)
		api.POST("/mods", s.handleCreateMod)
		api.POST("/mods/:id/like", s.handleLikeMod)

		api.GET("/games", s.handleListGames)
		api.GET("/tags", s.handleListTags)
		api.GET("/stats", s.handleStats)

		api.GET("/export", s.handleExport)
		api.POST("/import", s.handleImport)
		api.POST("/clear-cache", s.handleClearCache)

		api.POST("/admin/login", s.handleAdminLogin)
		admin := api.Group("/admin", adminAuth(s.gate))
		{
			admin.GET("/mods", s.handleAdminListMods)
			admin.POST("/mods", s.handleAdminCreateMod)
			admin.PUT("/mods/:id", s.handleAdminUpdateMod)
			admin.DELETE("/mods/:id", s.handleAdminDeleteMod)
		}

		api.GET("/gamebanana/fnf-mods", s.handleGameBananaList)
		api.POST("/gamebanana/import", adminAuth(s.gate), s.handleGameBananaImport)
	}
}

// servePage serves one file of the public root. http.FileServer would
// redirect index.html requests to "./", so the content is served directly.
func (s *Server) servePage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := s.uploads.Root().Open("/" + name)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			c.Status(http.StatusNotFound)
			return
		}
		http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
	}
}

// SetupWebSocket adds the catalog activity stream to the server
func (s *Server) SetupWebSocket(handler interface {
	HandleCatalogStream(*gin.Context)
}) {
	s.router.GET("/api/events", handler.HandleCatalogStream)
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

// requestLogger is a middleware for request logging
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}

// requestMetrics records every request under its route pattern
func requestMetrics(metrics ports.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
