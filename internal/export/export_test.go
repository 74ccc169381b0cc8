package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/log-dashboard/log-dashboard/internal/search"
)

var sampleRecords = []search.LogRecord{
	{Timestamp: "2025-11-28T10:00:05Z", Level: "ERROR", Service: "checkout-service", Message: "Database connection timeout", TraceID: "abc-123"},
	{Timestamp: "2025-11-28T10:00:01Z", Level: "INFO", Service: "payment-service", Message: "Transaction initiated, amount=10,50"},
}

// ---------------------------------------------------------------------------
// Format selection
// ---------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	tests := []struct {
		raw  string
		want Format
	}{
		{"csv", FormatCSV},
		{"json", FormatJSON},
		{"", FormatCSV},
		{"xml", FormatCSV},
		{"JSON", FormatCSV}, // selector is exact-match, anything else is csv
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.raw); got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestFormatMetadata(t *testing.T) {
	if FormatCSV.Filename() != "logs.csv" || FormatJSON.Filename() != "logs.json" {
		t.Error("unexpected filenames")
	}
	if FormatCSV.ContentType() != "text/csv" || FormatJSON.ContentType() != "application/json" {
		t.Error("unexpected content types")
	}
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

func TestMarshalCSV_HeaderAndRows(t *testing.T) {
	payload, err := Marshal(FormatCSV, sampleRecords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want header + 2 rows", len(lines))
	}
	if lines[0] != "Timestamp,Level,Service,Message" {
		t.Errorf("header = %q", lines[0])
	}
	// The second record's message contains a comma and must be quoted.
	if !strings.Contains(lines[2], `"Transaction initiated, amount=10,50"`) {
		t.Errorf("row not quoted: %q", lines[2])
	}
}

// CSV exports expose only the four header columns; backend-internal fields
// like the trace id stay out.
func TestMarshalCSV_ExcludesTraceID(t *testing.T) {
	payload, err := Marshal(FormatCSV, sampleRecords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(payload), "abc-123") {
		t.Error("csv export leaked the trace id")
	}
}

func TestMarshalCSV_EmptySet(t *testing.T) {
	payload, err := Marshal(FormatCSV, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(payload)) != "Timestamp,Level,Service,Message" {
		t.Errorf("empty export = %q, want header only", payload)
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestMarshalJSON_FullRecords(t *testing.T) {
	payload, err := Marshal(FormatJSON, sampleRecords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []search.LogRecord
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("record count = %d, want 2", len(decoded))
	}
	// JSON keeps the stored field set, trace id included.
	if decoded[0].TraceID != "abc-123" {
		t.Errorf("trace id = %q, want abc-123", decoded[0].TraceID)
	}
	// Pretty-printed for human inspection.
	if !strings.Contains(string(payload), "\n  ") {
		t.Error("JSON export should be indented")
	}
}

func TestMarshalJSON_EmptySetIsArray(t *testing.T) {
	payload, err := Marshal(FormatJSON, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(payload)) != "[]" {
		t.Errorf("empty export = %q, want []", payload)
	}
}
