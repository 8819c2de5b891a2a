package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/megafile/internal/logger"
)

// maxUploadMemory is the multipart memory budget before spilling to disk.
const maxUploadMemory = 32 << 20

// Server is the HTTP API server.
type Server struct {
	ports  *Ports
	engine *gin.Engine
	mcp    http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithMCPHandler mounts an MCP streamable HTTP handler at /mcp.
func WithMCPHandler(h http.Handler) Option {
	return func(s *Server) {
		s.mcp = h
	}
}

// NewServer creates the API server and registers its routes.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	if logger.IsVerbose() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.Writer()
	gin.DefaultErrorWriter = logger.Writer()

	s := &Server{
		ports:  ports,
		engine: gin.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine.MaxMultipartMemory = maxUploadMemory
	s.engine.Use(gin.Recovery(), requestLogger())
	s.registerRoutes()

	return s, nil
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/search", s.handleSearch)
		api.POST("/ask", s.handleAsk)

		ops := api.Group("/operations")
		ops.GET("", s.handleListOperations)
		ops.POST("", s.handleCreateOperation)
		ops.GET("/:id", s.handleGetOperation)
		ops.DELETE("/:id", s.handleDeleteOperation)
		ops.POST("/:id/process", s.handleProcessOperation)
		ops.GET("/:id/jobs", s.handleOperationJobs)

		docs := api.Group("/documents")
		docs.GET("/:id", s.handleGetDocument)
		docs.GET("/:id/content", s.handleDocumentContent)
		docs.GET("/:id/highlights", s.handleDocumentHighlights)
	}

	if s.mcp != nil {
		s.engine.Any("/mcp", gin.WrapH(s.mcp))
	}
}

// Run serves on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// requestLogger traces every request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
