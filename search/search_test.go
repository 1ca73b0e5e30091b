package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoflow/ontoflow/graph"
)

func TestFromGraph(t *testing.T) {
	g := graph.NewPropertyGraph(3, 9)
	g.Vertices[2] = &graph.Vertex{ID: 2, IRI: "b", Label: "B", Kind: graph.KindClass}
	g.Vertices[1] = &graph.Vertex{ID: 1, IRI: "a", Label: "A", Kind: graph.KindClass,
		Properties: map[string]any{"definition": "first"}}

	docs := FromGraph(g)
	require.Len(t, docs, 2)

	// Documents come out in vertex id order.
	assert.Equal(t, uint64(1), docs[0].VertexID)
	assert.Equal(t, int64(3), docs[0].OntologyID)
	assert.Equal(t, int64(9), docs[0].RevisionID)
	assert.Equal(t, "first", docs[0].Properties["definition"])
	assert.Equal(t, uint64(2), docs[1].VertexID)
}

func TestDocumentID(t *testing.T) {
	doc := Document{VertexID: 42, OntologyID: 7}
	assert.Equal(t, "7-42", doc.ID())
}

func TestQueryValidate(t *testing.T) {
	assert.Error(t, Query{}.Validate())
	assert.Error(t, Query{Query: "x", MinimumShouldMatchPercentage: 101}.Validate())
	assert.NoError(t, Query{Query: "x", MinimumShouldMatchPercentage: 80}.Validate())
}
