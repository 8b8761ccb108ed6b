package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger emits one structured log line per inbound request. Request and
// response bodies are never logged: uploads are megabytes of image bytes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t0 := time.Now()

		c.Next()

		logFields := []any{
			slog.Group("http",
				slog.Group("request",
					"duration_ms", time.Since(t0).Milliseconds(),
					"method", c.Request.Method,
					"content_length", c.Request.ContentLength,
					slog.Group("url",
						"host", c.Request.Host,
						"path", c.Request.URL.Path,
					),
				),
				slog.Group("response",
					"status", c.Writer.Status(),
					"size", c.Writer.Size(),
				),
			),
		}

		slog.InfoContext(c.Request.Context(), "inbound request", logFields...)
	}
}
