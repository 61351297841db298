// Package httpapi exposes a completion engine over HTTP with gin.
package httpapi

import (
	"time"

	"github.com/bastiangx/prefixd/internal/logger"
	"github.com/bastiangx/prefixd/internal/utils"
	"github.com/bastiangx/prefixd/pkg/config"
	"github.com/bastiangx/prefixd/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Handler serves completion and cache requests for one Suggester.
type Handler struct {
	suggester suggest.Suggester
	config    config.ServerConfig
	rules     utils.PrefixRules
}

// NewHandler binds s with the limits of the server section.
func NewHandler(s suggest.Suggester, cfg config.ServerConfig) *Handler {
	return &Handler{
		suggester: s,
		config:    cfg,
		rules:     cfg.PrefixRules(),
	}
}

// SetupRoutes builds the gin router.
func SetupRoutes(s suggest.Suggester, cfg config.ServerConfig) *gin.Engine {
	h := NewHandler(s, cfg)

	router := gin.New()
	router.Use(requestLogger(logger.New("http")), gin.Recovery())

	router.GET("/health", h.Health)

	api := router.Group("/api")
	{
		api.GET("/suggest", h.Suggest)
		api.GET("/cache", h.CacheInfo)
		api.DELETE("/cache", h.ClearCache)
	}
	return router
}

// requestLogger replaces gin's stdout logger with the charm one.
func requestLogger(l *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
