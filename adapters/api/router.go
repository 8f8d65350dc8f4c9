package api

import (
	"time"

	"goinsight/internal"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine serving h
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger))
	h.RegisterRoutes(router)
	return router
}

// requestLogger logs each request at DEBUG through the application logger
func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d in %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
