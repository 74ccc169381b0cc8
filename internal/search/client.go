// client.go is the OpenSearch-backed implementation of the Searcher
// capability. The connection is constructed once at process start and passed
// explicitly to every component that queries logs, so tests substitute a fake
// without touching process-wide state.
package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/log-dashboard/log-dashboard/internal/config"
	"github.com/log-dashboard/log-dashboard/internal/telemetry"
)

// ErrBackendUnavailable indicates the search backend could not be reached or
// rejected the query. Browsing degrades to an empty page on this error;
// export fails loudly.
var ErrBackendUnavailable = errors.New("search backend unavailable")

// Request is one composed query execution: the predicate tree plus the
// record window to fetch.
type Request struct {
	Predicate map[string]interface{}
	From      int
	Size      int
}

// Result is the requested window of records plus the exact total match count.
type Result struct {
	Records []LogRecord
	Total   int
}

// Searcher is the capability every log-querying component holds.
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Result, error)
	Ping(ctx context.Context) error
}

// Client queries log records from an OpenSearch cluster.
type Client struct {
	client *opensearch.Client
	index  string
}

// NewClient creates a search client for the configured cluster.
func NewClient(cfg *config.SearchConfig) (*Client, error) {
	osCfg := opensearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	if cfg.InsecureSkipVerify {
		osCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- opt-in for local clusters with demo certs
		}
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &Client{client: client, index: cfg.IndexPattern}, nil
}

// searchBody is the full request document. track_total_hits forces an exact
// count instead of the default 10k approximation; the paginator's arithmetic
// depends on it.
func searchBody(req *Request) map[string]interface{} {
	return map[string]interface{}{
		"query":            req.Predicate,
		"from":             req.From,
		"size":             req.Size,
		"sort":             []interface{}{map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}}},
		"track_total_hits": true,
	}
}

// searchResponse mirrors the slice of the OpenSearch response we consume.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source LogRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search executes one composed query and returns the requested window plus
// the exact total. Records come back newest first; ordering of records with
// equal timestamps is whatever the backend returns, no secondary key is
// imposed.
func (c *Client) Search(ctx context.Context, req *Request) (*Result, error) {
	timer := prometheus.NewTimer(telemetry.SearchQueryDuration)
	defer timer.ObserveDuration()

	body, err := json.Marshal(searchBody(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	ignoreUnavailable := true
	osReq := opensearchapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
		// A day with no index yet (fresh cluster, quiet period) is not an error.
		IgnoreUnavailable: &ignoreUnavailable,
	}

	res, err := osReq.Do(ctx, c.client)
	if err != nil {
		telemetry.SearchQueryErrors.Inc()
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		telemetry.SearchQueryErrors.Inc()
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		telemetry.SearchQueryErrors.Inc()
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrBackendUnavailable, err)
	}

	records := make([]LogRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, hit.Source)
	}

	return &Result{Records: records, Total: parsed.Hits.Total.Value}, nil
}

// Ping checks cluster reachability for the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	res, err := opensearchapi.PingRequest{}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrBackendUnavailable, res.String())
	}
	return nil
}
