// filters.go normalizes raw request parameters into FilterCriteria.
package search

import (
	"strconv"
	"time"
)

const (
	// DefaultPageSize is used when the caller does not supply a size.
	DefaultPageSize = 10
	// MaxPageSize caps interactive page sizes; bulk extraction goes through
	// the export path with its own ceiling.
	MaxPageSize = 100
)

// FilterCriteria is the normalized, per-request filter set. Empty string
// fields mean "not filtered". Start and End hold RFC3339 strings when the
// raw input parsed as ISO-8601, otherwise the raw input unchanged.
type FilterCriteria struct {
	Query   string
	Service string
	Level   string
	Start   string
	End     string
	Page    int
	Size    int
}

// RawFilters carries the unparsed query-string values from the HTTP layer.
type RawFilters struct {
	Query   string
	Service string
	Level   string
	Start   string
	End     string
	Page    string
	Size    string
}

// timestampLayouts are the accepted ISO-8601 shapes, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Normalize parses and validates the raw filter inputs.
//
// Page values below 1 (including unparseable ones) clamp to 1. Size defaults
// to DefaultPageSize and clamps into [1, MaxPageSize]. Timestamps that parse
// as ISO-8601 are normalized to UTC RFC3339; anything else is passed through
// verbatim and left for the search backend's own date parsing to accept or
// reject. Service and level are opaque strings matched exactly downstream.
func Normalize(raw RawFilters) FilterCriteria {
	page := 1
	if p, err := strconv.Atoi(raw.Page); err == nil && p > 1 {
		page = p
	}

	size := DefaultPageSize
	if s, err := strconv.Atoi(raw.Size); err == nil && s > 0 {
		size = s
		if size > MaxPageSize {
			size = MaxPageSize
		}
	}

	return FilterCriteria{
		Query:   raw.Query,
		Service: raw.Service,
		Level:   raw.Level,
		Start:   normalizeTimestamp(raw.Start),
		End:     normalizeTimestamp(raw.End),
		Page:    page,
		Size:    size,
	}
}

// normalizeTimestamp converts a parseable ISO-8601 string to UTC RFC3339.
// Unparseable input is returned unchanged rather than rejected; the backend
// is the final arbiter of what it accepts as a date.
func normalizeTimestamp(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}
