// ratelimit.go provides Gin middleware that enforces per-client token-bucket
// rate limits, returning 429 responses when the configured requests-per-minute
// threshold is exceeded.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests allowed per minute
	RequestsPerMinute int
	// BurstSize is the maximum burst of requests allowed
	BurstSize int
	// CleanupInterval is how often to clean up expired entries
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns the limits applied to the browsing API.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 200,
		BurstSize:         50,
		CleanupInterval:   5 * time.Minute,
	}
}

// AuthRateLimitConfig returns stricter limits for the login endpoint.
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
		BurstSize:         5,
		CleanupInterval:   5 * time.Minute,
	}
}

// ExportRateLimitConfig returns limits for the export endpoint. Exports pull
// up to the full record cap from the backend per request, so they get a much
// smaller budget than interactive pages.
func ExportRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 6,
		BurstSize:         2,
		CleanupInterval:   5 * time.Minute,
	}
}

// rateLimitEntry tracks request tokens for a single client
type rateLimitEntry struct {
	tokens     float64
	lastUpdate time.Time
}

// RateLimiter implements a token bucket rate limiter
type RateLimiter struct {
	config  RateLimitConfig
	entries map[string]*rateLimitEntry
	mu      sync.RWMutex
	stopCh  chan struct{}
}

// NewRateLimiter creates a new rate limiter with the given config
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		entries: make(map[string]*rateLimitEntry),
		stopCh:  make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// cleanup periodically removes entries that have refilled completely.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.config.CleanupInterval)
			for key, entry := range rl.entries {
				if entry.lastUpdate.Before(cutoff) {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop terminates the cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Allow checks whether the client identified by key may proceed, consuming
// one token if so.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, exists := rl.entries[key]
	if !exists {
		rl.entries[key] = &rateLimitEntry{
			tokens:     float64(rl.config.BurstSize) - 1,
			lastUpdate: now,
		}
		return true
	}

	// Refill at RequestsPerMinute tokens per minute, capped at the burst size.
	elapsed := now.Sub(entry.lastUpdate).Minutes()
	entry.tokens += elapsed * float64(rl.config.RequestsPerMinute)
	if entry.tokens > float64(rl.config.BurstSize) {
		entry.tokens = float64(rl.config.BurstSize)
	}
	entry.lastUpdate = now

	if entry.tokens < 1 {
		return false
	}

	entry.tokens--
	return true
}

// RateLimitMiddleware enforces the limiter per client IP.
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(60/maxInt(limiter.config.RequestsPerMinute, 1)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
