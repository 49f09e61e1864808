package api

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// loggingMiddleware registra le richieste e mette il logger nel contesto
func loggingMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context(), logger))

		c.Next()

		status := c.Writer.Status()
		args := []any{"method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "elapsed", time.Since(start)}
		switch {
		case status >= 500:
			logger.Error("richiesta", args...)
		case status >= 400:
			logger.Warn("richiesta", args...)
		default:
			logger.Debug("richiesta", args...)
		}
	}
}
