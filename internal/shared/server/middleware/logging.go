package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ui-feedback-backend/internal/shared/telemetry"
)

// RunIDKey is the gin context key handlers use to tag the analysis run a
// request touched.
const RunIDKey = "runId"

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     c.GetString(userIDKey),
			"session_id":  c.GetString(sessionIDKey),
			"run_id":      c.GetString(RunIDKey),
			"client_ip":   c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		telemetry.Info("request.complete", fields)
	}
}
