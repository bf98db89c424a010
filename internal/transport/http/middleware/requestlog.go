package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"studyassist/internal/platform/logger"
)

// RequestLog emits one structured log line per request.
func RequestLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
