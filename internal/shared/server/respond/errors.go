package respond

import (
	"github.com/gin-gonic/gin"

	"promotore-backend/internal/shared/telemetry"
)

// ErrorResponse is the error body returned by every JSON endpoint.
type ErrorResponse struct {
	Erro string `json:"erro"`
}

// Error logs the failure and aborts with {"erro": message}.
func Error(c *gin.Context, status int, message string) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID, ok := c.Get("userId"); ok {
		fields["user_id"] = userID
	}
	if processID, ok := c.Get("processId"); ok {
		fields["process_id"] = processID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Erro: message})
}
