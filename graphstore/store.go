package graphstore

import (
	"context"
	"errors"
	"time"

	"github.com/ontoflow/ontoflow/graph"
)

// DefaultQueryTimeout bounds a single traversal query so one slow query
// cannot starve a stage's consumer.
const DefaultQueryTimeout = 15 * time.Second

// ErrUnsupported is returned by operations a backend's capability vector
// rules out, such as WriteGraph on a remote store.
var ErrUnsupported = errors.New("graphstore: operation not supported by backend")

// Capabilities is a backend's fixed capability vector, declared at
// construction and never changing for the lifetime of the store.
type Capabilities struct {
	// UserDefinedIDs reports whether the backend accepts caller-chosen
	// entity ids instead of assigning its own.
	UserDefinedIDs bool `json:"userDefinedIds"`

	// NonStringIDs reports whether ids may be numeric.
	NonStringIDs bool `json:"nonStringIds"`

	// Schema reports whether the backend supports index/schema creation.
	Schema bool `json:"schema"`

	// Transactions reports whether writes are transactional.
	Transactions bool `json:"transactions"`

	// Geoshape reports whether geospatial property types are supported.
	Geoshape bool `json:"geoshape"`

	// TraversalByProperty reports whether the backend can filter a
	// traversal on an arbitrary property key.
	TraversalByProperty bool `json:"traversalByProperty"`
}

// Store is the single contract every graph backend implements.
//
// Close is safe on a store that was never opened. CreateSchema is a no-op
// when the capability vector reports Schema false. Query applies
// DefaultQueryTimeout when the context carries no earlier deadline.
type Store interface {
	// Capabilities returns the backend's fixed capability vector.
	Capabilities() Capabilities

	// Dialect identifies the backend's native query language.
	Dialect() Dialect

	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// CreateSchema creates the indices for the standard vertex keys if
	// they do not already exist. Idempotent, safe on every startup.
	CreateSchema(ctx context.Context) error

	// AddVertex stores one vertex and returns its store id.
	AddVertex(ctx context.Context, v *graph.Vertex) (string, error)
	UpdateVertex(ctx context.Context, id string, properties map[string]any) error
	DeleteVertex(ctx context.Context, id string) error

	// AddEdge stores one edge between two store vertex ids and returns
	// the edge's store id.
	AddEdge(ctx context.Context, e *graph.Edge, sourceID, targetID string) (string, error)
	UpdateEdge(ctx context.Context, id string, properties map[string]any) error
	DeleteEdge(ctx context.Context, id string) error

	// BulkAddVertices stores all vertices and returns the mapping from
	// modelled vertex id to store id, consumed by BulkAddEdges.
	BulkAddVertices(ctx context.Context, vertices []*graph.Vertex) (map[uint64]string, error)
	BulkAddEdges(ctx context.Context, edges []*graph.Edge, vertexIDs map[uint64]string) error

	// Query executes a raw query in the backend's native traversal
	// language and returns an ordered list of opaque result rows.
	Query(ctx context.Context, query string) ([]map[string]any, error)

	// DeleteSubGraph removes every vertex (with its edges) whose given
	// property matches value. Used to clear an ontology before re-loading
	// a revision.
	DeleteSubGraph(ctx context.Context, key string, value any) error

	// WriteGraph serializes the store contents to path. Only file-backed
	// embedded stores support it; remote stores return ErrUnsupported.
	WriteGraph(path string) error
}

// QueryContext derives a context bounded by DefaultQueryTimeout unless the
// caller already set an earlier deadline.
func QueryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= DefaultQueryTimeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, DefaultQueryTimeout)
}
