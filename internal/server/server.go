// Package server exposes the generation pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/abhisek/umlgen/internal/exercise"
	"github.com/abhisek/umlgen/internal/pipeline"
	"github.com/abhisek/umlgen/internal/store"
)

// Generator runs the generation pipeline. *pipeline.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, params exercise.ParameterSet, evaluate bool) (*pipeline.Result, error)
}

// Options configures the router.
type Options struct {
	// CORSOrigins lists allowed origins. "*" or empty allows any origin.
	CORSOrigins []string

	// Metrics mounts the Prometheus handler at /metrics.
	Metrics bool
}

// Server holds the HTTP handlers.
type Server struct {
	gen     Generator
	records store.GenerationRepo
	logger  *zap.Logger
	opts    Options
}

// New creates a Server. A nil logger discards output.
func New(gen Generator, records store.GenerationRepo, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{gen: gen, records: records, logger: logger, opts: opts}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("umlgen"))
	router.Use(s.requestLogger())
	router.Use(cors.New(corsConfig(s.opts.CORSOrigins)))

	api := router.Group("/api")
	api.GET("/health", s.health)
	api.POST("/generate", s.generate)
	api.GET("/requests", s.listRequests)
	api.GET("/requests/:id", s.getRequest)

	if s.opts.Metrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept"}
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
