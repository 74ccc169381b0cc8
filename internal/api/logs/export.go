// export.go implements the bulk log download endpoint.
package logs

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/log-dashboard/log-dashboard/internal/export"
	"github.com/log-dashboard/log-dashboard/internal/middleware"
	"github.com/log-dashboard/log-dashboard/internal/search"
	"github.com/log-dashboard/log-dashboard/internal/telemetry"
)

// ExportHandler handles bulk log extraction.
// Implements: GET /api/v1/logs/export?format=csv|json plus the browse filters.
//
// Only admins and developers may export; the role check happens before any
// backend query is issued. The query is the same composition the browse path
// uses, executed as a single page at the configured record ceiling. Unlike
// browsing, a backend failure here is a hard error: a partial or empty
// download must never masquerade as a successful export.
func (h *Handlers) ExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.GetIdentity(c)
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		role := identity.Role()
		if !role.CanExport() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Export requires the admin or developer role",
			})
			return
		}

		criteria := search.Normalize(search.RawFilters{
			Query:   c.Query("q"),
			Service: c.Query("service"),
			Level:   c.Query("level"),
			Start:   c.Query("start"),
			End:     c.Query("end"),
		})

		predicate := search.Compose(criteria, role, time.Now())

		result, err := h.searcher.Search(c.Request.Context(), &search.Request{
			Predicate: predicate,
			From:      0,
			Size:      h.exportCap,
		})
		if err != nil {
			slog.Error("log export query failed", "error", err, "username", identity.Username)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query logs"})
			return
		}

		format := export.ParseFormat(c.Query("format"))
		payload, err := export.Marshal(format, result.Records)
		if err != nil {
			slog.Error("log export serialization failed", "error", err, "format", format)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serialize logs"})
			return
		}

		telemetry.ExportRequestsTotal.WithLabelValues(string(format)).Inc()

		c.Header("Content-Disposition", `attachment; filename=`+format.Filename())
		c.Data(http.StatusOK, format.ContentType(), payload)
	}
}
