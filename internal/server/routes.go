// Package server exposes a resource location over HTTP so the study client can read it remotely
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arcanaland/flashcards/internal/deck"
)

// New returns a gin engine serving the catalog and card sets found in source
func New(source deck.Source, catalogName string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{source: source, catalogName: catalogName, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	registerRoutes(r, h)
	return r
}

// registerRoutes mounts the resource and API routes on r
func registerRoutes(r *gin.Engine, h *handlers) {
	r.GET("/"+h.catalogName, h.catalog)
	r.GET("/"+deck.SetDir+"/*filename", h.cardSet)

	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/sets", h.sets)
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
