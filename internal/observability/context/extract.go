package context

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RequestIDFromGin resolves the request id for handlers that respond before
// the logging middleware has run, falling back to the gin-local value.
func RequestIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if ctx := c.Request.Context(); ctx != nil {
		if value := RequestIDFromContext(ctx); value != "" {
			return value
		}
	}
	if value := strings.TrimSpace(c.GetString("request_id")); value != "" {
		return value
	}
	return ""
}
