// Package searches implements CRUD over saved filter presets.
//
// Authorization model: every record has an owner. Owners and admins may
// mutate and delete; admins additionally see everyone's records on list.
// Not-found is checked before authorization so a caller probing a missing id
// gets 404, not a misleading 403.
package searches

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/log-dashboard/log-dashboard/internal/auth"
	"github.com/log-dashboard/log-dashboard/internal/db/repositories"
	"github.com/log-dashboard/log-dashboard/internal/middleware"
)

// Handlers holds the saved search endpoint dependencies.
type Handlers struct {
	repo *repositories.SavedSearchRepository
}

// NewHandlers creates saved search handlers over the given database handle.
func NewHandlers(db *sqlx.DB) *Handlers {
	return &Handlers{repo: repositories.NewSavedSearchRepository(db)}
}

// createRequest is the POST body. Name is required; an empty query is legal
// (it names the unfiltered view).
type createRequest struct {
	Name  string `json:"name" binding:"required"`
	Query string `json:"query"`
}

// updateRequest is the PUT body. Pointer fields distinguish "absent" from
// "set to empty": absent fields leave the stored value unchanged.
type updateRequest struct {
	Name  *string `json:"name"`
	Query *string `json:"query"`
}

// ListHandler lists saved searches: all of them for admins, own records for
// everyone else.
// Implements: GET /api/v1/searches
func (h *Handlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.GetIdentity(c)
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var err error
		var searches interface{}
		if identity.Role() == auth.RoleAdmin {
			searches, err = h.repo.ListAll(c.Request.Context())
		} else {
			searches, err = h.repo.ListByOwner(c.Request.Context(), identity.Username)
		}
		if err != nil {
			slog.Error("failed to list saved searches", "error", err, "username", identity.Username)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list saved searches"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"searches": searches})
	}
}

// CreateHandler stores a new saved search owned by the caller.
// Implements: POST /api/v1/searches
func (h *Handlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.GetIdentity(c)
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		record, err := h.repo.Create(c.Request.Context(), identity.Username, req.Name, req.Query)
		if err != nil {
			slog.Error("failed to create saved search", "error", err, "username", identity.Username)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create saved search"})
			return
		}

		c.JSON(http.StatusCreated, record)
	}
}

// UpdateHandler applies a partial update to a saved search.
// Implements: PUT /api/v1/searches/:id
func (h *Handlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.GetIdentity(c)
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		id := c.Param("id")
		existing, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			slog.Error("failed to load saved search", "error", err, "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load saved search"})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved search not found"})
			return
		}
		if !identity.CanManage(existing.Username) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner or an admin may modify this saved search"})
			return
		}

		updated, err := h.repo.Update(c.Request.Context(), id, repositories.SavedSearchUpdate{
			Name:  req.Name,
			Query: req.Query,
		})
		if err != nil {
			slog.Error("failed to update saved search", "error", err, "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update saved search"})
			return
		}
		if updated == nil {
			// Deleted between the ownership check and the update.
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved search not found"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// DeleteHandler removes a saved search.
// Implements: DELETE /api/v1/searches/:id
func (h *Handlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.GetIdentity(c)
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		id := c.Param("id")
		existing, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			slog.Error("failed to load saved search", "error", err, "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load saved search"})
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved search not found"})
			return
		}
		if !identity.CanManage(existing.Username) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner or an admin may delete this saved search"})
			return
		}

		deleted, err := h.repo.Delete(c.Request.Context(), id)
		if err != nil {
			slog.Error("failed to delete saved search", "error", err, "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete saved search"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved search not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Saved search deleted"})
	}
}
