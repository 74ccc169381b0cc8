// Package session implements the login endpoint that exchanges dashboard
// credentials for a Keycloak access token.
package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/log-dashboard/log-dashboard/internal/auth"
	"github.com/log-dashboard/log-dashboard/internal/auth/keycloak"
	"github.com/log-dashboard/log-dashboard/internal/db/repositories"
)

// Handlers holds the login endpoint dependencies.
type Handlers struct {
	provider    *keycloak.Provider
	profileRepo *repositories.UserProfileRepository
}

// NewHandlers creates session handlers using the given Keycloak provider.
func NewHandlers(provider *keycloak.Provider, profileRepo *repositories.UserProfileRepository) *Handlers {
	return &Handlers{provider: provider, profileRepo: profileRepo}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler exchanges username/password for a Keycloak token set and
// returns the access token together with the resolved application role.
// Implements: POST /api/v1/auth/login
//
// Bad credentials and an unreachable realm are both reported as a failed
// login; the distinction is logged server-side but not leaked to the caller.
func (h *Handlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}

		token, err := h.provider.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			slog.Warn("login failed", "username", req.Username, "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login failed"})
			return
		}

		identity, err := auth.ParseIdentity(token.AccessToken)
		if err != nil {
			slog.Error("keycloak returned an unparseable access token", "username", req.Username, "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login failed"})
			return
		}

		role := identity.Role()

		// Refresh the profile cache on the login path synchronously; a failure
		// only costs the cache row, never the login.
		if err := h.profileRepo.Upsert(c.Request.Context(), identity.Username, string(role)); err != nil {
			slog.Warn("failed to upsert user profile", "username", identity.Username, "error", err)
		}

		expiresIn := 0
		if !token.Expiry.IsZero() {
			expiresIn = int(time.Until(token.Expiry).Seconds())
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token": token.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   expiresIn,
			"username":     identity.Username,
			"role":         role,
		})
	}
}
