// auth.go resolves the caller identity from the Authorization header and
// refreshes the user profile cache.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/log-dashboard/log-dashboard/internal/auth"
	"github.com/log-dashboard/log-dashboard/internal/db/repositories"
	"github.com/log-dashboard/log-dashboard/internal/safego"
)

const (
	// IdentityKey is the gin.Context key holding the resolved *auth.Identity.
	IdentityKey = "identity"
	// RoleKey is the gin.Context key holding the resolved auth.Role.
	RoleKey = "role"
)

// IdentityMiddleware extracts the Bearer token, resolves the caller identity
// and application role, and stores both in the Gin context. Requests without
// a parseable identity are rejected with 401 before reaching any handler.
//
// The token claims are parsed, not signature-verified: tokens are issued by
// the Keycloak realm fronting this service (see internal/auth).
//
// On every successful resolution the UserProfile cache row is upserted
// asynchronously. The upsert is fire-and-forget: the cache is informational,
// and a failed write must not fail the request. The 5-second timeout prevents
// leaked goroutines if the DB is temporarily unreachable.
func IdentityMiddleware(profileRepo *repositories.UserProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		identity, err := auth.ParseIdentity(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		role := identity.Role()
		c.Set(IdentityKey, identity)
		c.Set(RoleKey, role)

		if profileRepo != nil {
			username := identity.Username
			safego.Go(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = profileRepo.Upsert(ctx, username, string(role))
			})
		}

		c.Next()
	}
}

// GetIdentity returns the identity stored by IdentityMiddleware, or nil when
// the request was not authenticated.
func GetIdentity(c *gin.Context) *auth.Identity {
	val, exists := c.Get(IdentityKey)
	if !exists {
		return nil
	}
	identity, ok := val.(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}
