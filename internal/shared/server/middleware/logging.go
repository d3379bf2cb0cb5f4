package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/shared/telemetry"
)

// ProcessIDKey is set by handlers that act on a single process.
const ProcessIDKey = "processId"

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		userID, _ := c.Get(userIDKey)
		processID, _ := c.Get(ProcessIDKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     userID,
			"process_id":  processID,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}

// ProcessIDParam reads the :id path parameter and records it for request logging.
func ProcessIDParam(c *gin.Context) (int64, bool) {
	processID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || processID <= 0 {
		return 0, false
	}
	c.Set(ProcessIDKey, processID)
	return processID, true
}
