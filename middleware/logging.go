package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"larre/logger"
)

// RequestLogger writes one access-log line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		log.LogHTTPRequest(
			c.Request.Method,
			path,
			c.Request.UserAgent(),
			c.ClientIP(),
			c.Writer.Status(),
			float64(time.Since(start).Microseconds())/1000,
		)
	}
}
