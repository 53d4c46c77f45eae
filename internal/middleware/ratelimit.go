package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loggate/loggate/internal/service"
)

// RateLimitMiddleware throttles submissions per client IP. This is abuse
// protection for the front door, not caller authentication.
func RateLimitMiddleware(limiters *service.LimiterRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := limiters.Get(c.ClientIP())
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
