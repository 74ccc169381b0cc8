package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/log-dashboard/log-dashboard/internal/telemetry"
)

// MetricsMiddleware records the request counter and latency histogram for
// every request passing through the router.
//
// The path label is set from c.FullPath(), which returns the matched route
// template (e.g. /api/v1/searches/:id) rather than the raw URL. Requests that
// match no registered route use the literal "<no-route>" so unhandled paths
// do not inflate label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
