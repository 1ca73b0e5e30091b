// Package gremlin provides a remote graph store reached over a Gremlin
// Server websocket, covering the HTTP/websocket-fronted managed services.
package gremlin

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ontoflow/ontoflow/graph"
	"github.com/ontoflow/ontoflow/graphstore"
)

// Config holds the Gremlin Server connection settings.
type Config struct {
	// URL is the websocket endpoint, e.g. ws://localhost:8182/gremlin.
	URL string `json:"url" yaml:"url"`

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration `json:"handshakeTimeout" yaml:"handshakeTimeout"`
}

// Store is the Gremlin Server-backed graph store. One websocket connection
// is shared; submissions are serialized by a mutex, matching the
// one-message-at-a-time stage concurrency model.
type Store struct {
	config Config

	mu   sync.Mutex
	conn *websocket.Conn
}

// New returns an unopened Gremlin store.
func New(config Config) *Store {
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	return &Store{config: config}
}

// Capabilities reports the Gremlin Server capability vector.
func (s *Store) Capabilities() graphstore.Capabilities {
	return graphstore.Capabilities{
		UserDefinedIDs:      false,
		NonStringIDs:        true,
		Schema:              false,
		Transactions:        false,
		Geoshape:            false,
		TraversalByProperty: true,
	}
}

// Dialect returns the Gremlin dialect.
func (s *Store) Dialect() graphstore.Dialect {
	return graphstore.DialectGremlin
}

// Open dials the websocket endpoint.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}
	dialer := websocket.Dialer{HandshakeTimeout: s.config.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.config.URL, nil)
	if err != nil {
		return fmt.Errorf("dial gremlin server %s: %w", s.config.URL, err)
	}
	s.conn = conn
	return nil
}

// Close shuts the websocket down. Safe on an unopened store.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// request is one Gremlin Server eval frame.
type request struct {
	RequestID string         `json:"requestId"`
	Op        string         `json:"op"`
	Processor string         `json:"processor"`
	Args      map[string]any `json:"args"`
}

// response is one Gremlin Server result frame.
type response struct {
	RequestID string `json:"requestId"`
	Status    struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Result struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
}

// Gremlin Server status codes.
const (
	statusSuccess        = 200
	statusNoContent      = 204
	statusPartialContent = 206
)

// submit evaluates one traversal, collecting partial-content frames until
// the final status arrives.
func (s *Store) submit(ctx context.Context, gremlin string, bindings map[string]any) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, fmt.Errorf("store not open")
	}

	req := request{
		RequestID: uuid.NewString(),
		Op:        "eval",
		Processor: "",
		Args: map[string]any{
			"gremlin":  gremlin,
			"bindings": bindings,
			"language": "gremlin-groovy",
		},
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetWriteDeadline(deadline)
		_ = s.conn.SetReadDeadline(deadline)
	} else {
		_ = s.conn.SetWriteDeadline(time.Time{})
		_ = s.conn.SetReadDeadline(time.Time{})
	}

	if err := s.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("write gremlin request: %w", err)
	}

	var data []json.RawMessage
	for {
		var resp response
		if err := s.conn.ReadJSON(&resp); err != nil {
			return nil, fmt.Errorf("read gremlin response: %w", err)
		}
		if resp.RequestID != req.RequestID {
			// Stale frame from an abandoned request.
			continue
		}

		switch resp.Status.Code {
		case statusNoContent:
			return data, nil
		case statusSuccess, statusPartialContent:
			if len(resp.Result.Data) > 0 {
				var items []json.RawMessage
				if err := json.Unmarshal(resp.Result.Data, &items); err != nil {
					return nil, fmt.Errorf("decode gremlin result data: %w", err)
				}
				data = append(data, items...)
			}
			if resp.Status.Code != statusPartialContent {
				return data, nil
			}
		default:
			return nil, fmt.Errorf("gremlin server status %d: %s", resp.Status.Code, resp.Status.Message)
		}
	}
}

// CreateSchema is a no-op: schema management is server-side configuration.
func (s *Store) CreateSchema(_ context.Context) error {
	return nil
}

// AddVertex creates one vertex labelled with the vertex kind, tagged with
// a generated sid property used as the store id.
func (s *Store) AddVertex(ctx context.Context, v *graph.Vertex) (string, error) {
	id := uuid.NewString()
	gremlin, bindings := addVertexTraversal(v, id)
	if _, err := s.submit(ctx, gremlin, bindings); err != nil {
		return "", fmt.Errorf("add vertex %s: %w", v.IRI, err)
	}
	return id, nil
}

func addVertexTraversal(v *graph.Vertex, id string) (string, map[string]any) {
	var b strings.Builder
	bindings := map[string]any{
		"kind":  v.Kind,
		"sid":   id,
		"iri":   v.IRI,
		"label": v.Label,
	}
	b.WriteString("g.addV(kind).property('sid', sid).property('iri', iri).property('label', label)")
	appendProperties(&b, bindings, v.Properties)
	return b.String(), bindings
}

// appendProperties appends one property step per key. Keys are bound, not
// interpolated, so quoting in user-supplied keys cannot break the traversal.
func appendProperties(b *strings.Builder, bindings map[string]any, properties map[string]any) {
	for i, key := range sortedKeys(properties) {
		keyName := fmt.Sprintf("k%d", i)
		valueName := fmt.Sprintf("p%d", i)
		bindings[keyName] = key
		bindings[valueName] = properties[key]
		fmt.Fprintf(b, ".property(%s, %s)", keyName, valueName)
	}
}

// UpdateVertex sets properties on the vertex with the given store id.
func (s *Store) UpdateVertex(ctx context.Context, id string, properties map[string]any) error {
	var b strings.Builder
	bindings := map[string]any{"sid": id}
	b.WriteString("g.V().has('sid', sid)")
	appendProperties(&b, bindings, properties)
	_, err := s.submit(ctx, b.String(), bindings)
	return err
}

// DeleteVertex drops the vertex with the given store id.
func (s *Store) DeleteVertex(ctx context.Context, id string) error {
	_, err := s.submit(ctx, "g.V().has('sid', sid).drop()", map[string]any{"sid": id})
	return err
}

// AddEdge creates one edge between two stored vertices.
func (s *Store) AddEdge(ctx context.Context, e *graph.Edge, sourceID, targetID string) (string, error) {
	id := uuid.NewString()
	var b strings.Builder
	bindings := map[string]any{
		"elabel": e.Label,
		"sid":    id,
		"from":   sourceID,
		"to":     targetID,
	}
	b.WriteString("g.V().has('sid', from).addE(elabel).to(__.V().has('sid', to)).property('sid', sid)")
	appendProperties(&b, bindings, e.Properties)
	if _, err := s.submit(ctx, b.String(), bindings); err != nil {
		return "", fmt.Errorf("add edge %d: %w", e.ID, err)
	}
	return id, nil
}

// UpdateEdge sets properties on the edge with the given store id.
func (s *Store) UpdateEdge(ctx context.Context, id string, properties map[string]any) error {
	var b strings.Builder
	bindings := map[string]any{"sid": id}
	b.WriteString("g.E().has('sid', sid)")
	appendProperties(&b, bindings, properties)
	_, err := s.submit(ctx, b.String(), bindings)
	return err
}

// DeleteEdge drops the edge with the given store id.
func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	_, err := s.submit(ctx, "g.E().has('sid', sid).drop()", map[string]any{"sid": id})
	return err
}

// BulkAddVertices creates all vertices one traversal at a time; Gremlin
// Server sessions are not transactional here.
func (s *Store) BulkAddVertices(ctx context.Context, vertices []*graph.Vertex) (map[uint64]string, error) {
	ids := make(map[uint64]string, len(vertices))
	for _, v := range vertices {
		id, err := s.AddVertex(ctx, v)
		if err != nil {
			return nil, err
		}
		ids[v.ID] = id
	}
	return ids, nil
}

// BulkAddEdges creates all edges, translating modelled endpoint ids.
func (s *Store) BulkAddEdges(ctx context.Context, edges []*graph.Edge, vertexIDs map[uint64]string) error {
	for _, e := range edges {
		sourceID, ok := vertexIDs[e.SourceID]
		if !ok {
			return fmt.Errorf("edge %d: no store id for source vertex %d", e.ID, e.SourceID)
		}
		targetID, ok := vertexIDs[e.TargetID]
		if !ok {
			return fmt.Errorf("edge %d: no store id for target vertex %d", e.ID, e.TargetID)
		}
		if _, err := s.AddEdge(ctx, e, sourceID, targetID); err != nil {
			return err
		}
	}
	return nil
}

// Query submits a raw Gremlin traversal. Scalar results are wrapped under
// a "count" key; object results pass through.
func (s *Store) Query(ctx context.Context, query string) ([]map[string]any, error) {
	ctx, cancel := graphstore.QueryContext(ctx)
	defer cancel()

	data, err := s.submit(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(data))
	for _, item := range data {
		var row map[string]any
		if err := json.Unmarshal(item, &row); err == nil {
			rows = append(rows, row)
			continue
		}
		var scalar any
		if err := json.Unmarshal(item, &scalar); err != nil {
			return nil, fmt.Errorf("decode result item: %w", err)
		}
		rows = append(rows, map[string]any{"count": scalar})
	}
	return rows, nil
}

// DeleteSubGraph drops every vertex whose property matches value.
func (s *Store) DeleteSubGraph(ctx context.Context, key string, value any) error {
	_, err := s.submit(ctx, "g.V().has(pk, val).drop()", map[string]any{"pk": key, "val": value})
	return err
}

// WriteGraph is unsupported: durability belongs to the server.
func (s *Store) WriteGraph(string) error {
	return graphstore.ErrUnsupported
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Stable traversal text keeps retried submissions identical.
	sort.Strings(keys)
	return keys
}
