// Package search defines the indexer contract: graph vertices projected
// into flattened documents, upserted by vertex id, queried with exact or
// fuzzy matching across configurable fields.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ontoflow/ontoflow/graph"
)

// Document is the flattened projection of one vertex. Re-derivable from
// the property graph at any time, never the source of truth.
type Document struct {
	VertexID   uint64         `json:"vertexId"`
	OntologyID int64          `json:"ontologyId"`
	RevisionID int64          `json:"revisionId"`
	IRI        string         `json:"iri"`
	Label      string         `json:"label"`
	Kind       string         `json:"kind"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ID returns the document's upsert key.
func (d Document) ID() string {
	return strconv.FormatInt(d.OntologyID, 10) + "-" + strconv.FormatUint(d.VertexID, 10)
}

// Query is the search request contract. Absent Fields means all indexed
// text fields. And selects all-tokens-must-match over any-token. Exact
// disables fuzzy matching. MinimumShouldMatchPercentage applies to OR
// queries only; zero means any single match suffices.
type Query struct {
	Query                        string   `json:"query"`
	Fields                       []string `json:"fields,omitempty"`
	And                          bool     `json:"and"`
	Exact                        bool     `json:"exact"`
	MinimumShouldMatchPercentage int      `json:"minimumShouldMatchPercentage,omitempty"`
}

// Validate rejects structurally unusable queries.
func (q Query) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("empty query")
	}
	if q.MinimumShouldMatchPercentage < 0 || q.MinimumShouldMatchPercentage > 100 {
		return fmt.Errorf("minimumShouldMatchPercentage out of range: %d", q.MinimumShouldMatchPercentage)
	}
	return nil
}

// Indexer is implemented by every search backend.
type Indexer interface {
	// CreateIndex is idempotent: creating an existing index is a no-op.
	CreateIndex(ctx context.Context, index string) error

	// DeleteIndex removes an index; deleting a missing index is a no-op.
	DeleteIndex(ctx context.Context, index string) error

	// IndexDocument upserts one document keyed by Document.ID.
	IndexDocument(ctx context.Context, index string, doc Document) error

	// IndexDocuments upserts a batch.
	IndexDocuments(ctx context.Context, index string, docs []Document) error

	Search(ctx context.Context, index string, q Query) ([]Document, error)
}

// FromGraph projects every vertex of the modelled graph into a document.
func FromGraph(g *graph.PropertyGraph) []Document {
	docs := make([]Document, 0, len(g.Vertices))
	for _, v := range g.SortedVertices() {
		docs = append(docs, Document{
			VertexID:   v.ID,
			OntologyID: g.OntologyID,
			RevisionID: g.RevisionID,
			IRI:        v.IRI,
			Label:      v.Label,
			Kind:       v.Kind,
			Properties: v.Properties,
		})
	}
	return docs
}
