// Package export serializes full (capped) result sets for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/log-dashboard/log-dashboard/internal/search"
)

// Format is the export output format selector.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat resolves the format query parameter. Anything that is not
// exactly "json" falls back to CSV, matching the permissive-fallback policy
// used for timestamps.
func ParseFormat(raw string) Format {
	if raw == string(FormatJSON) {
		return FormatJSON
	}
	return FormatCSV
}

// Filename returns the download filename for the format.
func (f Format) Filename() string {
	if f == FormatJSON {
		return "logs.json"
	}
	return "logs.csv"
}

// ContentType returns the response content type for the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// csvHeader is the fixed column set of CSV exports. Backend-internal fields
// such as the trace id are deliberately not included.
var csvHeader = []string{"Timestamp", "Level", "Service", "Message"}

// Marshal serializes the record set in the requested format.
func Marshal(format Format, records []search.LogRecord) ([]byte, error) {
	if format == FormatJSON {
		return marshalJSON(records)
	}
	return marshalCSV(records)
}

func marshalCSV(records []search.LogRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if err := w.Write([]string{r.Timestamp, r.Level, r.Service, r.Message}); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func marshalJSON(records []search.LogRecord) ([]byte, error) {
	if records == nil {
		records = []search.LogRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return data, nil
}
