// Package triplestore loads raw ontology revisions into an external RDF
// triplestore and passes SPARQL queries through to it. The store itself is
// an external dependency reached over the SPARQL 1.1 HTTP protocols; no
// triples are evaluated locally beyond a structural validation pass.
package triplestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/knakk/rdf"
)

// Config holds the triplestore endpoints.
type Config struct {
	// QueryURL is the SPARQL query endpoint, e.g. http://host:3030/ds/sparql.
	QueryURL string `json:"queryUrl" yaml:"queryUrl"`

	// GraphStoreURL is the SPARQL Graph Store Protocol endpoint,
	// e.g. http://host:3030/ds/data.
	GraphStoreURL string `json:"graphStoreUrl" yaml:"graphStoreUrl"`

	// Timeout bounds each request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Client talks to one external triplestore.
type Client struct {
	config Config
	client *http.Client
}

// New returns a client for the configured store.
func New(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// GraphIRI names the store graph holding one ontology revision.
func GraphIRI(ontologyID, revisionID int64) string {
	return fmt.Sprintf("urn:ontoflow:ontology:%d:revision:%d", ontologyID, revisionID)
}

// Validate decodes the document to confirm it is structurally sound RDF/XML
// before it is shipped to the store.
func Validate(document []byte) (int, error) {
	dec := rdf.NewTripleDecoder(bytes.NewReader(document), rdf.RDFXML)
	triples, err := dec.DecodeAll()
	if err != nil {
		return 0, fmt.Errorf("decode rdf document: %w", err)
	}
	if len(triples) == 0 {
		return 0, fmt.Errorf("document contains no rdf statements")
	}
	return len(triples), nil
}

// Load replaces the named graph for (ontologyID, revisionID) with the
// given RDF/XML document. PUT semantics make re-delivery idempotent.
func (c *Client) Load(ctx context.Context, ontologyID, revisionID int64, document []byte) error {
	if _, err := Validate(document); err != nil {
		return err
	}

	endpoint := c.config.GraphStoreURL + "?graph=" + url.QueryEscape(GraphIRI(ontologyID, revisionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(document))
	if err != nil {
		return fmt.Errorf("build graph store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/rdf+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("put graph: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("put graph: status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Query passes a SPARQL query through to the store and returns the raw
// SPARQL JSON results, opaque to the pipeline.
func (c *Client) Query(ctx context.Context, sparql string) ([]byte, error) {
	if strings.TrimSpace(sparql) == "" {
		return nil, fmt.Errorf("empty sparql query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.QueryURL,
		strings.NewReader(sparql))
	if err != nil {
		return nil, fmt.Errorf("build sparql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/sparql-query")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post sparql query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sparql response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sparql query: status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
