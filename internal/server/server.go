// Package server exposes the verification pipeline over HTTP.
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rezonia/ledgercheck/internal/batch"
	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/pipeline"
)

// Config holds server configuration
type Config struct {
	Address        string
	MaxConcurrency int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Debug          bool
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *pipeline.Pipeline
	registry *engine.Registry
	logger   *slog.Logger
}

// NewServer creates a new API server around a configured pipeline and
// engine registry.
func NewServer(config *Config, p *pipeline.Pipeline, registry *engine.Registry, logger *slog.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:   config,
		router:   router,
		pipeline: p,
		registry: registry,
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/engines", s.handleEngines)
		v1.POST("/check", s.handleCheck)
		v1.POST("/compare", s.handleCompare)
		v1.POST("/batch", s.handleBatch)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"engines": s.registry.Names(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleEngines(c *gin.Context) {
	c.JSON(http.StatusOK, EnginesResponse{Engines: s.registry.Names()})
}

// handleCheck verifies a single document. The image travels as the raw
// request body; engines are selected with repeated ?engine= parameters,
// defaulting to every registered engine.
func (s *Server) handleCheck(c *gin.Context) {
	s.runDocument(c, c.QueryArray("engine"))
}

// handleCompare is handleCheck with every registered engine forced on, so
// the response always carries pairwise comparisons.
func (s *Server) handleCompare(c *gin.Context) {
	s.runDocument(c, s.registry.Names())
}

func (s *Server) runDocument(c *gin.Context, engineNames []string) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	engines, err := s.registry.Select(engineNames)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	doc := model.Document{
		ID:   documentID(c),
		Data: body,
		MIME: c.ContentType(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	result := s.pipeline.Process(ctx, doc, engines)
	s.logger.Info("document checked",
		"document_id", doc.ID,
		"success", result.Success,
		"engines", len(result.EngineResults),
	)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// handleBatch verifies a multipart upload of documents. Each part's file
// name becomes its document ID.
func (s *Server) handleBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "expected multipart form", Details: err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files provided"})
		return
	}

	engines, err := s.registry.Select(c.QueryArray("engine"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	docs := make([]model.Document, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to open upload", Details: fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read upload", Details: fh.Filename})
			return
		}
		docs = append(docs, model.Document{ID: fh.Filename, Data: data})
	}

	coordinator := batch.NewCoordinator(s.pipeline, engines,
		batch.WithMaxConcurrency(s.config.MaxConcurrency),
		batch.WithLogger(s.logger),
	)
	summary := coordinator.Run(c.Request.Context(), docs)
	c.JSON(http.StatusOK, summary)
}

func documentID(c *gin.Context) string {
	if id := c.Query("document_id"); id != "" {
		return id
	}
	return uuid.NewString()
}
