// Package middleware provides Gin HTTP middleware for identity resolution,
// rate limiting, request correlation, and metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Recovery → RequestID → Metrics → Logger → RateLimit → Identity → Handler
//
// RequestID runs early so all downstream logging carries the ID. Rate
// limiting runs before identity so floods are rejected before any token
// parsing or DB work. Identity populates the caller's username and role;
// handlers read them from the Gin context.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the HTTP header used to propagate the request identifier.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin.Context key under which the request ID is stored.
	RequestIDKey = "request_id"
)

// RequestIDMiddleware ensures every request carries a unique identifier. An
// inbound X-Request-ID (from a load balancer or gateway) is reused unchanged;
// otherwise a new UUID v4 is generated. The identifier is stored in the Gin
// context and echoed in the response header so clients can correlate their
// request with server-side log entries.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
