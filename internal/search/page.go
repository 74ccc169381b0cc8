// page.go implements the uniform page contract shared by interactive
// browsing and export.
package search

// Page is one page of results plus the exact totals the backend reported.
// A page beyond the last one carries an empty record list with the totals
// still accurate; that is not an error.
type Page struct {
	Records    []LogRecord `json:"logs"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
}

// Offset converts a 1-based page number and size into the backend's
// zero-based record offset.
func Offset(page, size int) int {
	return (page - 1) * size
}

// NewPage assembles a Page from backend results. size must be positive;
// Normalize guarantees that upstream.
func NewPage(records []LogRecord, total, page, size int) Page {
	if records == nil {
		records = []LogRecord{}
	}
	return Page{
		Records:    records,
		Total:      total,
		TotalPages: (total + size - 1) / size,
		Page:       page,
		Size:       size,
	}
}
