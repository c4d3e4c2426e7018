package middleware

import (
	"context" // Request deadlines
	"time"    // Time durations

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequestTimeout bounds every downstream call made with the request context
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx) // Handlers and gorm see the deadline
		c.Next()
	}
}
