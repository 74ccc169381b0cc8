// Package api wires together all HTTP routes for the log dashboard backend.
//
// Route grouping philosophy:
//   - /health and /ready are unauthenticated so orchestrator probes work
//     without credentials.
//   - /api/v1/auth/login is unauthenticated by nature but carries the strict
//     auth rate limit.
//   - Everything else under /api/v1/ requires an identity resolved by
//     middleware.IdentityMiddleware; role checks happen inside the handlers
//     because browse and export differ per role, not per route.
package api

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/log-dashboard/log-dashboard/internal/api/logs"
	"github.com/log-dashboard/log-dashboard/internal/api/searches"
	"github.com/log-dashboard/log-dashboard/internal/api/session"
	"github.com/log-dashboard/log-dashboard/internal/auth/keycloak"
	"github.com/log-dashboard/log-dashboard/internal/config"
	"github.com/log-dashboard/log-dashboard/internal/db/repositories"
	"github.com/log-dashboard/log-dashboard/internal/middleware"
	"github.com/log-dashboard/log-dashboard/internal/search"
)

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) calls Shutdown() after the HTTP server
// has drained.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB, searcher search.Searcher) (*gin.Engine, *BackgroundServices) {
	router := gin.New()
	bg := &BackgroundServices{}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware())

	// Repositories. The same handle serves both: plain database/sql for the
	// profile cache, sqlx for saved searches.
	profileRepo := repositories.NewUserProfileRepository(db)
	sqlxDB := sqlx.NewDb(db, "postgres")

	keycloakProvider, err := keycloak.NewProvider(&cfg.Auth.Keycloak)
	if err != nil {
		log.Fatalf("Failed to initialize Keycloak provider: %v", err)
	}

	logHandlers := logs.NewHandlers(searcher, cfg.Export.MaxRecords)
	searchHandlers := searches.NewHandlers(sqlxDB)
	sessionHandlers := session.NewHandlers(keycloakProvider, profileRepo)

	// Probes
	router.GET("/health", healthCheckHandler(db))
	router.GET("/ready", readinessHandler(db, searcher))

	apiV1 := router.Group("/api/v1")

	// Login: unauthenticated, strictly rate limited.
	if cfg.Security.RateLimiting.Enabled {
		authLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())
		bg.rateLimiters = append(bg.rateLimiters, authLimiter)
		apiV1.POST("/auth/login", middleware.RateLimitMiddleware(authLimiter), sessionHandlers.LoginHandler())
	} else {
		apiV1.POST("/auth/login", sessionHandlers.LoginHandler())
	}

	// Authenticated API
	authed := apiV1.Group("")
	if cfg.Security.RateLimiting.Enabled {
		generalLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.Security.RateLimiting.RequestsPerMinute,
			BurstSize:         cfg.Security.RateLimiting.Burst,
			CleanupInterval:   5 * time.Minute,
		})
		bg.rateLimiters = append(bg.rateLimiters, generalLimiter)
		authed.Use(middleware.RateLimitMiddleware(generalLimiter))
	}
	authed.Use(middleware.IdentityMiddleware(profileRepo))

	authed.GET("/logs", logHandlers.BrowseHandler())

	// Export pulls up to the full record cap per request, so it carries its
	// own much smaller budget on top of the general limiter.
	if cfg.Security.RateLimiting.Enabled {
		exportLimiter := middleware.NewRateLimiter(middleware.ExportRateLimitConfig())
		bg.rateLimiters = append(bg.rateLimiters, exportLimiter)
		authed.GET("/logs/export", middleware.RateLimitMiddleware(exportLimiter), logHandlers.ExportHandler())
	} else {
		authed.GET("/logs/export", logHandlers.ExportHandler())
	}

	authed.GET("/searches", searchHandlers.ListHandler())
	authed.POST("/searches", searchHandlers.CreateHandler())
	authed.PUT("/searches/:id", searchHandlers.UpdateHandler())
	authed.DELETE("/searches/:id", searchHandlers.DeleteHandler())

	return router, bg
}

// healthCheckHandler is the liveness probe: process up, database reachable.
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readinessHandler returns the readiness status of the service. Unlike the
// liveness probe, this also checks the search backend so a readiness gate
// fails when log queries would error.
func readinessHandler(db *sql.DB, searcher search.Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		if err := db.Ping(); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		if err := searcher.Ping(c.Request.Context()); err != nil {
			checks["search"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "search backend not ready",
			})
			return
		}
		checks["search"] = "healthy"

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// LoggerMiddleware provides structured request logging via the global slog
// handler; output format follows whatever telemetry.SetupLogger configured.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
		)
	}
}
