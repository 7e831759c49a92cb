package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicegate/observability"
)

// Metrics records inbound request counts and durations by matched route.
// A nil m records nothing.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		m.RecordRequestStart(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequestEnd(ctx, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
