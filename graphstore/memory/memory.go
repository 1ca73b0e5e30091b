// Package memory provides the embedded in-process graph store. Durability
// is out-of-band: a background timer serializes the store to a configured
// path at a fixed interval, skipped entirely when no path is set.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/ontoflow/ontoflow/graph"
	"github.com/ontoflow/ontoflow/graphstore"
)

// Config controls the embedded store's disk-flush behaviour.
type Config struct {
	// FlushPath is where the store is periodically serialized. Empty
	// disables flushing.
	FlushPath string `json:"flushPath" yaml:"flushPath"`

	// FlushInterval is the time between flushes.
	FlushInterval time.Duration `json:"flushInterval" yaml:"flushInterval"`

	// InitialDelay postpones the first flush after Open.
	InitialDelay time.Duration `json:"initialDelay" yaml:"initialDelay"`
}

// DefaultConfig returns the flush schedule used when none is configured.
func DefaultConfig() Config {
	return Config{
		FlushInterval: 5 * time.Minute,
		InitialDelay:  30 * time.Second,
	}
}

type vertexRecord struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

type edgeRecord struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	OutID      string         `json:"outId"`
	InID       string         `json:"inId"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Store is the embedded graph store. Safe for concurrent use.
type Store struct {
	config Config
	logger *slog.Logger

	mu       sync.RWMutex
	open     bool
	vertices map[string]*vertexRecord
	edges    map[string]*edgeRecord
	nextID   uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an unopened embedded store.
func New(config Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = DefaultConfig().FlushInterval
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = DefaultConfig().InitialDelay
	}
	return &Store{
		config:   config,
		logger:   logger,
		vertices: make(map[string]*vertexRecord),
		edges:    make(map[string]*edgeRecord),
	}
}

// Capabilities reports the embedded store's capability vector.
func (s *Store) Capabilities() graphstore.Capabilities {
	return graphstore.Capabilities{
		UserDefinedIDs:      true,
		NonStringIDs:        true,
		Schema:              false,
		Transactions:        false,
		Geoshape:            false,
		TraversalByProperty: true,
	}
}

// Dialect returns the embedded store's query dialect.
func (s *Store) Dialect() graphstore.Dialect {
	return graphstore.DialectMemory
}

// Open marks the store live and starts the disk-flush timer when a flush
// path is configured.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil
	}
	s.open = true

	if s.config.FlushPath == "" {
		return nil
	}

	flushCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.flushLoop(flushCtx)
	return nil
}

// Close stops the flush timer and performs one final flush. Safe on an
// unopened store.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil
	}
	s.open = false
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		if err := s.WriteGraph(s.config.FlushPath); err != nil {
			s.logger.Warn("final graph flush failed", "path", s.config.FlushPath, "error", err)
		}
	}
	return nil
}

// flushLoop writes the store to disk on a fixed schedule independent of
// message traffic. Write failures are logged, never propagated.
func (s *Store) flushLoop(ctx context.Context) {
	defer close(s.done)

	delay := time.NewTimer(s.config.InitialDelay)
	defer delay.Stop()
	select {
	case <-ctx.Done():
		return
	case <-delay.C:
	}

	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()
	for {
		if err := s.WriteGraph(s.config.FlushPath); err != nil {
			s.logger.Warn("periodic graph flush failed", "path", s.config.FlushPath, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CreateSchema is a no-op: the embedded store has no schema support.
func (s *Store) CreateSchema(_ context.Context) error {
	return nil
}

// AddVertex stores one vertex under a fresh store id.
func (s *Store) AddVertex(_ context.Context, v *graph.Vertex) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addVertexLocked(v), nil
}

func (s *Store) addVertexLocked(v *graph.Vertex) string {
	s.nextID++
	id := "v" + strconv.FormatUint(s.nextID, 10)
	properties := cloneProperties(v.Properties)
	properties[graphstore.IRIKey] = v.IRI
	properties["label"] = v.Label
	s.vertices[id] = &vertexRecord{
		ID:         id,
		Label:      v.Kind,
		Properties: properties,
	}
	return id
}

// UpdateVertex merges properties into an existing vertex.
func (s *Store) UpdateVertex(_ context.Context, id string, properties map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.vertices[id]
	if !ok {
		return fmt.Errorf("vertex %s not found", id)
	}
	for k, v := range properties {
		record.Properties[k] = v
	}
	return nil
}

// DeleteVertex removes a vertex and every edge touching it.
func (s *Store) DeleteVertex(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteVertexLocked(id)
	return nil
}

func (s *Store) deleteVertexLocked(id string) {
	delete(s.vertices, id)
	for edgeID, e := range s.edges {
		if e.OutID == id || e.InID == id {
			delete(s.edges, edgeID)
		}
	}
}

// AddEdge stores one edge between two store vertex ids.
func (s *Store) AddEdge(_ context.Context, e *graph.Edge, sourceID, targetID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addEdgeLocked(e, sourceID, targetID)
}

func (s *Store) addEdgeLocked(e *graph.Edge, sourceID, targetID string) (string, error) {
	if _, ok := s.vertices[sourceID]; !ok {
		return "", fmt.Errorf("source vertex %s not found", sourceID)
	}
	if _, ok := s.vertices[targetID]; !ok {
		return "", fmt.Errorf("target vertex %s not found", targetID)
	}
	s.nextID++
	id := "e" + strconv.FormatUint(s.nextID, 10)
	s.edges[id] = &edgeRecord{
		ID:         id,
		Label:      e.Label,
		OutID:      sourceID,
		InID:       targetID,
		Properties: cloneProperties(e.Properties),
	}
	return id, nil
}

// UpdateEdge merges properties into an existing edge.
func (s *Store) UpdateEdge(_ context.Context, id string, properties map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.edges[id]
	if !ok {
		return fmt.Errorf("edge %s not found", id)
	}
	for k, v := range properties {
		record.Properties[k] = v
	}
	return nil
}

// DeleteEdge removes one edge.
func (s *Store) DeleteEdge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges, id)
	return nil
}

// BulkAddVertices stores all vertices and returns the modelled-id to
// store-id mapping.
func (s *Store) BulkAddVertices(_ context.Context, vertices []*graph.Vertex) (map[uint64]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[uint64]string, len(vertices))
	for _, v := range vertices {
		ids[v.ID] = s.addVertexLocked(v)
	}
	return ids, nil
}

// BulkAddEdges stores all edges, translating modelled endpoint ids.
func (s *Store) BulkAddEdges(_ context.Context, edges []*graph.Edge, vertexIDs map[uint64]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range edges {
		sourceID, ok := vertexIDs[e.SourceID]
		if !ok {
			return fmt.Errorf("edge %d: no store id for source vertex %d", e.ID, e.SourceID)
		}
		targetID, ok := vertexIDs[e.TargetID]
		if !ok {
			return fmt.Errorf("edge %d: no store id for target vertex %d", e.ID, e.TargetID)
		}
		if _, err := s.addEdgeLocked(e, sourceID, targetID); err != nil {
			return err
		}
	}
	return nil
}

var (
	countVertices      = regexp.MustCompile(`^V\(\)\.count\(\)$`)
	countVerticesLabel = regexp.MustCompile(`^V\(\)\.hasLabel\('([^']*)'\)\.count\(\)$`)
	countVerticesHas   = regexp.MustCompile(`^V\(\)\.has\('([^']*)',\s*'([^']*)'\)\.count\(\)$`)
	countEdges         = regexp.MustCompile(`^E\(\)\.count\(\)$`)
)

// Query evaluates the embedded store's minimal count-traversal language.
func (s *Store) Query(ctx context.Context, query string) ([]map[string]any, error) {
	ctx, cancel := graphstore.QueryContext(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case countVertices.MatchString(query):
		return countResult(int64(len(s.vertices))), nil
	case countEdges.MatchString(query):
		return countResult(int64(len(s.edges))), nil
	}

	if m := countVerticesLabel.FindStringSubmatch(query); m != nil {
		var n int64
		for _, v := range s.vertices {
			if v.Label == m[1] {
				n++
			}
		}
		return countResult(n), nil
	}

	if m := countVerticesHas.FindStringSubmatch(query); m != nil {
		var n int64
		for _, v := range s.vertices {
			if fmt.Sprint(v.Properties[m[1]]) == m[2] {
				n++
			}
		}
		return countResult(n), nil
	}

	return nil, fmt.Errorf("unsupported query: %q", query)
}

func countResult(n int64) []map[string]any {
	return []map[string]any{{"count": n}}
}

// DeleteSubGraph removes every vertex whose property matches value, along
// with its edges.
func (s *Store) DeleteSubGraph(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := fmt.Sprint(value)
	for id, v := range s.vertices {
		if fmt.Sprint(v.Properties[key]) == want {
			s.deleteVertexLocked(id)
		}
	}
	return nil
}

// snapshot is the on-disk serialization of the store.
type snapshot struct {
	Vertices []*vertexRecord `json:"vertices"`
	Edges    []*edgeRecord   `json:"edges"`
}

// WriteGraph serializes the store contents to path.
func (s *Store) WriteGraph(path string) error {
	if path == "" {
		return graphstore.ErrUnsupported
	}

	s.mu.RLock()
	snap := snapshot{
		Vertices: make([]*vertexRecord, 0, len(s.vertices)),
		Edges:    make([]*edgeRecord, 0, len(s.edges)),
	}
	for _, v := range s.vertices {
		snap.Vertices = append(snap.Vertices, v)
	}
	for _, e := range s.edges {
		snap.Edges = append(snap.Edges, e)
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write graph snapshot: %w", err)
	}
	return nil
}

// Counts returns the stored vertex and edge counts.
func (s *Store) Counts() (vertices, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vertices), len(s.edges)
}

func cloneProperties(properties map[string]any) map[string]any {
	clone := make(map[string]any, len(properties)+2)
	for k, v := range properties {
		clone[k] = v
	}
	return clone
}
