package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loggate/loggate/internal/config"
)

const HeaderAdminKey = "X-Admin-Key"

// AdminMiddleware guards operator-only endpoints (the audit trail listing)
// behind a shared key. Unset key means the endpoint is off.
func AdminMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || cfg.Audit.AdminKey == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin key not configured"})
			c.Abort()
			return
		}
		if c.GetHeader(HeaderAdminKey) != cfg.Audit.AdminKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
