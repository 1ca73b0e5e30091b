package graphstore_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoflow/ontoflow/graph"
	"github.com/ontoflow/ontoflow/graphstore"
	"github.com/ontoflow/ontoflow/graphstore/memory"
	"github.com/ontoflow/ontoflow/owl"
)

func smallGraph(t *testing.T, ontologyID, revisionID int64) *graph.PropertyGraph {
	t.Helper()
	g := graph.NewPropertyGraph(ontologyID, revisionID)
	g.Vertices[1] = &graph.Vertex{ID: 1, IRI: "http://example.com/net#Network", Label: "Network", Kind: graph.KindClass}
	g.Vertices[2] = &graph.Vertex{ID: 2, IRI: "http://example.com/net#Router", Label: "Router", Kind: graph.KindClass}
	g.Edges = append(g.Edges, &graph.Edge{ID: 1, SourceID: 2, TargetID: 1, Label: graph.EdgeSubClassOf})
	return g
}

func TestLoadCreatesVerticesBeforeEdges(t *testing.T) {
	store := memory.New(memory.Config{}, nil)
	ctx := context.Background()
	require.NoError(t, store.Open(ctx))
	defer store.Close(ctx)

	require.NoError(t, graphstore.Load(ctx, store, smallGraph(t, 1, 1)))

	vertices, edges := store.Counts()
	assert.Equal(t, 2, vertices)
	assert.Equal(t, 1, edges)
}

func TestLoadRejectsInvalidGraph(t *testing.T) {
	store := memory.New(memory.Config{}, nil)
	ctx := context.Background()
	require.NoError(t, store.Open(ctx))
	defer store.Close(ctx)

	g := smallGraph(t, 1, 1)
	g.Edges = append(g.Edges, &graph.Edge{ID: 2, SourceID: 99, TargetID: 1, Label: graph.EdgeSubClassOf})

	assert.Error(t, graphstore.Load(context.Background(), store, g))
	vertices, _ := store.Counts()
	assert.Zero(t, vertices)
}

func TestLoadIsIdempotentPerOntology(t *testing.T) {
	store := memory.New(memory.Config{}, nil)
	ctx := context.Background()
	require.NoError(t, store.Open(ctx))
	defer store.Close(ctx)

	// Re-delivering the same revision clears the subgraph before loading,
	// so the end state is identical.
	require.NoError(t, graphstore.Load(ctx, store, smallGraph(t, 1, 1)))
	require.NoError(t, graphstore.Load(ctx, store, smallGraph(t, 1, 1)))

	vertices, edges := store.Counts()
	assert.Equal(t, 2, vertices)
	assert.Equal(t, 1, edges)

	// A different ontology's subgraph is untouched.
	require.NoError(t, graphstore.Load(ctx, store, smallGraph(t, 2, 1)))
	vertices, edges = store.Counts()
	assert.Equal(t, 4, vertices)
	assert.Equal(t, 2, edges)
}

func TestEndToEndModelAndLoad(t *testing.T) {
	ont := &owl.Ontology{
		Classes:              make(map[string]*owl.Class),
		ObjectProperties:     map[string]*owl.ObjectProperty{},
		AnnotationProperties: map[string]*owl.AnnotationProperty{},
		Individuals:          map[string]*owl.NamedIndividual{},
	}
	root := "http://example.com/big#Thing0"
	ont.Classes[root] = &owl.Class{IRI: root, Label: "Thing 0", Parents: map[string]string{}}
	for i := 1; i < 196; i++ {
		iri := fmt.Sprintf("http://example.com/big#Thing%d", i)
		ont.Classes[iri] = &owl.Class{
			IRI:     iri,
			Label:   fmt.Sprintf("Thing %d", i),
			Parents: map[string]string{root: ""},
		}
	}

	g, err := graph.Model(42, 1, ont, nil)
	require.NoError(t, err)

	store := memory.New(memory.Config{}, nil)
	ctx := context.Background()
	require.NoError(t, store.Open(ctx))
	defer store.Close(ctx)

	require.NoError(t, graphstore.Load(ctx, store, g))

	rows, err := store.Query(ctx, graphstore.CountVerticesQuery(store.Dialect(), graph.KindClass))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(196), rows[0]["count"])

	rows, err = store.Query(ctx, graphstore.CountEdgesQuery(store.Dialect()))
	require.NoError(t, err)
	assert.Equal(t, int64(195), rows[0]["count"])
}

func TestCountRecipesPerDialect(t *testing.T) {
	assert.Equal(t, "g.V().hasLabel('class').count()",
		graphstore.CountVerticesQuery(graphstore.DialectGremlin, "class"))
	assert.Equal(t, "g.E().count()", graphstore.CountEdgesQuery(graphstore.DialectGremlin))
	assert.Equal(t, "MATCH (n:`class`) RETURN count(n) AS count",
		graphstore.CountVerticesQuery(graphstore.DialectCypher, "class"))
	assert.Equal(t, "V().count()", graphstore.CountVerticesQuery(graphstore.DialectMemory, ""))
}
