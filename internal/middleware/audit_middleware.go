package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/services"
)

// auditSkipPrefixes lists paths that never produce audit rows. Reading
// the logs must not generate more logs.
var auditSkipPrefixes = []string{
	"/api/logs",
	"/api/ws",
	"/health",
}

// Audit writes a system log row for every mutating API call. Reads are
// skipped to keep the trail focused on state changes.
func Audit(logsService services.LogsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}
		path := c.Request.URL.Path
		for _, prefix := range auditSkipPrefixes {
			if strings.HasPrefix(path, prefix) {
				return
			}
		}

		user := "anonymous"
		if email, ok := c.Get("email"); ok {
			if emailStr, ok := email.(string); ok && emailStr != "" {
				user = emailStr
			}
		}
		role := "public"
		if r, ok := c.Get("userRole"); ok {
			if roleStr, ok := r.(string); ok && roleStr != "" {
				role = roleStr
			}
		}

		status := c.Writer.Status()
		level := models.LogLevelInfo
		switch {
		case status >= 500:
			level = models.LogLevelError
		case status >= 400:
			level = models.LogLevelWarn
		}

		message := fmt.Sprintf("%s %s -> %d", c.Request.Method, path, status)
		logsService.Record(c.Request.Context(), level, user, role, message)
	}
}
