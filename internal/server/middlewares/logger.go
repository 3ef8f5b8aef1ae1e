package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger logs the start and the end of every request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := zap.S().Named("http")

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"ip", c.ClientIP(),
			"user-agent", c.Request.UserAgent(),
		}
		logger.Debugw("request started", append(fields, "time", start.Format(time.RFC3339))...)

		c.Next()

		fields = append(fields,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
		if sub := Subject(c); sub != "" {
			fields = append(fields, "subject", sub)
		}
		if len(c.Errors) > 0 {
			logger.Errorw("request failed", append(fields, "errors", c.Errors.String())...)
			return
		}
		logger.Infow("request completed", fields...)
	}
}
