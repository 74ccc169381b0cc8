// Package logs implements the log browsing and export endpoints.
package logs

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/log-dashboard/log-dashboard/internal/middleware"
	"github.com/log-dashboard/log-dashboard/internal/search"
)

// Handlers holds the dependencies of the log endpoints.
type Handlers struct {
	searcher  search.Searcher
	exportCap int
}

// NewHandlers creates log handlers backed by the given search client.
// exportCap is the hard ceiling on records per export download.
func NewHandlers(s search.Searcher, exportCap int) *Handlers {
	return &Handlers{searcher: s, exportCap: exportCap}
}

// BrowseHandler handles interactive log browsing.
// Implements: GET /api/v1/logs?q=&service=&level=&start=&end=&page=&size=
//
// The caller's role restrictions are ANDed into the query before it reaches
// the backend; there is no post-filtering. A backend failure degrades to an
// empty page rather than an error so the dashboard still renders.
func (h *Handlers) BrowseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.GetIdentity(c)
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		criteria := search.Normalize(search.RawFilters{
			Query:   c.Query("q"),
			Service: c.Query("service"),
			Level:   c.Query("level"),
			Start:   c.Query("start"),
			End:     c.Query("end"),
			Page:    c.Query("page"),
			Size:    c.Query("size"),
		})

		predicate := search.Compose(criteria, identity.Role(), time.Now())

		result, err := h.searcher.Search(c.Request.Context(), &search.Request{
			Predicate: predicate,
			From:      search.Offset(criteria.Page, criteria.Size),
			Size:      criteria.Size,
		})
		if err != nil {
			slog.Error("log search failed, serving degraded page",
				"error", err, "username", identity.Username)
			page := search.NewPage(nil, 0, criteria.Page, criteria.Size)
			c.JSON(http.StatusOK, gin.H{
				"logs":     page.Records,
				"meta":     pageMeta(page),
				"degraded": true,
			})
			return
		}

		page := search.NewPage(result.Records, result.Total, criteria.Page, criteria.Size)
		c.JSON(http.StatusOK, gin.H{
			"logs": page.Records,
			"meta": pageMeta(page),
		})
	}
}

func pageMeta(p search.Page) gin.H {
	return gin.H{
		"page":        p.Page,
		"size":        p.Size,
		"total":       p.Total,
		"total_pages": p.TotalPages,
	}
}
