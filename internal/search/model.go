// Package search implements the log query engine: filter normalization,
// role-scoped query composition, pagination, and the OpenSearch client the
// composed queries are executed against.
package search

// LogRecord is one indexed application log entry as stored by the ingestion
// pipeline. Records are immutable once indexed; this service only reads them.
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service"`
	Message   string `json:"message"`
	TraceID   string `json:"trace_id,omitempty"`
}
