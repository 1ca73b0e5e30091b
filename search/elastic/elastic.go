// Package elastic provides an Elasticsearch-compatible search backend
// speaking the plain JSON REST API: index create/delete, _bulk upserts and
// bool/multi_match queries.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ontoflow/ontoflow/search"
)

// Config holds the cluster connection settings.
type Config struct {
	// BaseURL is the cluster endpoint, e.g. http://localhost:9200.
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// Username and Password enable basic auth when set.
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`

	// Timeout bounds each request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Indexer is the Elasticsearch-backed search indexer.
type Indexer struct {
	config Config
	client *http.Client
}

// New returns an indexer for the configured cluster.
func New(config Config) *Indexer {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Indexer{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (x *Indexer) do(ctx context.Context, method, path, contentType string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(x.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if x.config.Username != "" {
		req.SetBasicAuth(x.config.Username, x.config.Password)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, payload, nil
}

// CreateIndex creates the index; an already-existing index is a no-op.
func (x *Indexer) CreateIndex(ctx context.Context, index string) error {
	status, body, err := x.do(ctx, http.MethodPut, "/"+index, "application/json", nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}
	if status == http.StatusBadRequest && bytes.Contains(body, []byte("resource_already_exists_exception")) {
		return nil
	}
	return fmt.Errorf("create index %s: status %d: %s", index, status, body)
}

// DeleteIndex removes the index; a missing index is a no-op.
func (x *Indexer) DeleteIndex(ctx context.Context, index string) error {
	status, body, err := x.do(ctx, http.MethodDelete, "/"+index, "", nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK || status == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("delete index %s: status %d: %s", index, status, body)
}

// IndexDocument upserts one document keyed by its id.
func (x *Indexer) IndexDocument(ctx context.Context, index string, doc search.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	path := "/" + index + "/_doc/" + doc.ID()
	status, body, err := x.do(ctx, http.MethodPut, path, "application/json", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("index document %s: status %d: %s", doc.ID(), status, body)
	}
	return nil
}

// IndexDocuments upserts a batch through the _bulk endpoint.
func (x *Indexer) IndexDocuments(ctx context.Context, index string, docs []search.Document) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		action := map[string]map[string]string{
			"index": {"_index": index, "_id": doc.ID()},
		}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode bulk document: %w", err)
		}
	}

	status, body, err := x.do(ctx, http.MethodPost, "/_bulk", "application/x-ndjson", buf.Bytes())
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("bulk index: status %d: %s", status, body)
	}

	var result struct {
		Errors bool `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if result.Errors {
		return fmt.Errorf("bulk index reported item failures")
	}
	return nil
}

// Search runs the query contract as a bool query of multi_match clauses.
func (x *Indexer) Search(ctx context.Context, index string, q search.Query) ([]search.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{"query": buildQuery(q)})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	status, body, err := x.do(ctx, http.MethodPost, "/"+index+"/_search", "application/json", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search %s: status %d: %s", index, status, body)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source search.Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]search.Document, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

// buildQuery maps the query contract onto the Elasticsearch DSL.
func buildQuery(q search.Query) map[string]any {
	multiMatch := map[string]any{
		"query": q.Query,
	}
	if len(q.Fields) > 0 {
		multiMatch["fields"] = q.Fields
	}
	if q.And {
		multiMatch["operator"] = "and"
	}
	if !q.Exact {
		multiMatch["fuzziness"] = "AUTO"
	}
	if !q.And && q.MinimumShouldMatchPercentage > 0 {
		multiMatch["minimum_should_match"] = strconv.Itoa(q.MinimumShouldMatchPercentage) + "%"
	}
	return map[string]any{
		"bool": map[string]any{
			"must": []any{
				map[string]any{"multi_match": multiMatch},
			},
		},
	}
}
