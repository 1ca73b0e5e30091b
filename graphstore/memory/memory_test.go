package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoflow/ontoflow/graph"
	"github.com/ontoflow/ontoflow/graphstore"
)

func openStore(t *testing.T, config Config) *Store {
	t.Helper()
	s := New(config, nil)
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestCloseUnopened(t *testing.T) {
	s := New(Config{}, nil)
	assert.NoError(t, s.Close(context.Background()))
}

func TestCreateSchemaIsNoOp(t *testing.T) {
	s := openStore(t, Config{})
	assert.False(t, s.Capabilities().Schema)
	assert.NoError(t, s.CreateSchema(context.Background()))
}

func TestVertexCRUD(t *testing.T) {
	s := openStore(t, Config{})
	ctx := context.Background()

	id, err := s.AddVertex(ctx, &graph.Vertex{
		ID:    1,
		IRI:   "http://example.com/net#Network",
		Label: "Network",
		Kind:  graph.KindClass,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.UpdateVertex(ctx, id, map[string]any{"definition": "updated"}))
	assert.Error(t, s.UpdateVertex(ctx, "missing", nil))

	require.NoError(t, s.DeleteVertex(ctx, id))
	vertices, _ := s.Counts()
	assert.Zero(t, vertices)
}

func TestEdgeEndpointsMustExist(t *testing.T) {
	s := openStore(t, Config{})
	ctx := context.Background()

	id, err := s.AddVertex(ctx, &graph.Vertex{ID: 1, IRI: "a", Kind: graph.KindClass})
	require.NoError(t, err)

	_, err = s.AddEdge(ctx, &graph.Edge{ID: 1, Label: graph.EdgeSubClassOf}, id, "missing")
	assert.Error(t, err)
}

func TestDeleteVertexRemovesEdges(t *testing.T) {
	s := openStore(t, Config{})
	ctx := context.Background()

	a, _ := s.AddVertex(ctx, &graph.Vertex{ID: 1, IRI: "a", Kind: graph.KindClass})
	b, _ := s.AddVertex(ctx, &graph.Vertex{ID: 2, IRI: "b", Kind: graph.KindClass})
	_, err := s.AddEdge(ctx, &graph.Edge{ID: 1, Label: graph.EdgeSubClassOf}, a, b)
	require.NoError(t, err)

	require.NoError(t, s.DeleteVertex(ctx, a))
	_, edges := s.Counts()
	assert.Zero(t, edges)
}

func TestQueryLanguage(t *testing.T) {
	s := openStore(t, Config{})
	ctx := context.Background()

	a, _ := s.AddVertex(ctx, &graph.Vertex{ID: 1, IRI: "a", Kind: graph.KindClass})
	b, _ := s.AddVertex(ctx, &graph.Vertex{ID: 2, IRI: "b", Kind: graph.KindNamedIndividual,
		Properties: map[string]any{"ontologyId": int64(7)}})
	_, err := s.AddEdge(ctx, &graph.Edge{ID: 1, Label: graph.EdgeInstanceOf}, b, a)
	require.NoError(t, err)

	tests := []struct {
		query string
		count int64
	}{
		{"V().count()", 2},
		{"E().count()", 1},
		{"V().hasLabel('class').count()", 1},
		{"V().hasLabel('namedIndividual').count()", 1},
		{"V().has('ontologyId', '7').count()", 1},
		{"V().hasLabel('nothing').count()", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rows, err := s.Query(ctx, tt.query)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.count, rows[0]["count"])
		})
	}

	_, err = s.Query(ctx, "V().weird()")
	assert.Error(t, err)
}

func TestWriteGraphSnapshot(t *testing.T) {
	s := openStore(t, Config{})
	ctx := context.Background()

	_, err := s.AddVertex(ctx, &graph.Vertex{ID: 1, IRI: "a", Label: "A", Kind: graph.KindClass})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, s.WriteGraph(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap struct {
		Vertices []json.RawMessage `json:"vertices"`
		Edges    []json.RawMessage `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Len(t, snap.Vertices, 1)
	assert.Empty(t, snap.Edges)
}

func TestWriteGraphWithoutPath(t *testing.T) {
	s := openStore(t, Config{})
	assert.ErrorIs(t, s.WriteGraph(""), graphstore.ErrUnsupported)
}

func TestBackgroundFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flush.json")
	s := New(Config{
		FlushPath:     path,
		FlushInterval: 10 * time.Millisecond,
		InitialDelay:  time.Millisecond,
	}, nil)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx))

	_, err := s.AddVertex(ctx, &graph.Vertex{ID: 1, IRI: "a", Kind: graph.KindClass})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Close(ctx))
	// Close performed a final flush.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"vertices"`)
}

func TestDeleteSubGraph(t *testing.T) {
	s := openStore(t, Config{})
	ctx := context.Background()

	a, _ := s.AddVertex(ctx, &graph.Vertex{ID: 1, IRI: "a", Kind: graph.KindClass,
		Properties: map[string]any{"ontologyId": int64(1)}})
	b, _ := s.AddVertex(ctx, &graph.Vertex{ID: 2, IRI: "b", Kind: graph.KindClass,
		Properties: map[string]any{"ontologyId": int64(1)}})
	_, _ = s.AddVertex(ctx, &graph.Vertex{ID: 3, IRI: "c", Kind: graph.KindClass,
		Properties: map[string]any{"ontologyId": int64(2)}})
	_, err := s.AddEdge(ctx, &graph.Edge{ID: 1, Label: graph.EdgeSubClassOf}, a, b)
	require.NoError(t, err)

	require.NoError(t, s.DeleteSubGraph(ctx, "ontologyId", int64(1)))
	vertices, edges := s.Counts()
	assert.Equal(t, 1, vertices)
	assert.Zero(t, edges)
}
