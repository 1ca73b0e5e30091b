package export_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoflow/ontoflow/graph"
	"github.com/ontoflow/ontoflow/graph/export"
)

func testGraph() *graph.PropertyGraph {
	g := graph.NewPropertyGraph(1, 10)
	g.Vertices[1] = &graph.Vertex{
		ID:    1,
		IRI:   "http://example.com/net#Network",
		Label: "Network",
		Kind:  graph.KindClass,
		Properties: map[string]any{
			"definition": "A set of linked nodes.",
		},
	}
	g.Vertices[2] = &graph.Vertex{
		ID:    2,
		IRI:   "http://example.com/net#Transport Network",
		Label: "Transport Network",
		Kind:  graph.KindClass,
	}
	g.Edges = append(g.Edges, &graph.Edge{
		ID:       1,
		SourceID: 2,
		TargetID: 1,
		Label:    graph.EdgeSubClassOf,
		Properties: map[string]any{
			graph.RelationshipKey: graph.EdgeSubClassOf,
		},
	})
	return g
}

func TestNativeRoundTrip(t *testing.T) {
	g := testGraph()

	data, err := export.Native(g)
	require.NoError(t, err)

	parsed, err := export.ParseNative(data)
	require.NoError(t, err)

	wantV, wantE := g.Counts()
	gotV, gotE := parsed.Counts()
	assert.Equal(t, wantV, gotV)
	assert.Equal(t, wantE, gotE)
	assert.Equal(t, g.Vertices[1], parsed.Vertices[1])
	assert.Equal(t, g.Edges[0], parsed.Edges[0])
}

func TestParseNativeRejectsDanglingEdges(t *testing.T) {
	_, err := export.ParseNative([]byte(`{
		"ontologyId": 1,
		"revisionId": 1,
		"vertices": {},
		"edges": [{"id": 1, "sourceVertexId": 5, "targetVertexId": 6, "label": "subClassOf"}]
	}`))
	assert.Error(t, err)
}

func TestInterchangeDocument(t *testing.T) {
	doc := export.Interchange(testGraph())

	require.Len(t, doc.Vertices, 2)
	require.Len(t, doc.Edges, 1)
	assert.Equal(t, "NORMAL", doc.Mode)

	v := doc.Vertices[0]
	assert.Equal(t, "1", v[export.KeyID])
	assert.Equal(t, export.TypeVertex, v[export.KeyType])
	assert.Equal(t, graph.KindClass, v[export.KeyLabel])
	assert.Equal(t, "Network", v[export.NameKey])
	assert.Equal(t, "A set of linked nodes.", v["definition"])

	e := doc.Edges[0]
	assert.Equal(t, "1", e[export.KeyID])
	assert.Equal(t, export.TypeEdge, e[export.KeyType])
	assert.Equal(t, graph.EdgeSubClassOf, e[export.KeyLabel])
	assert.Equal(t, "2", e[export.KeyOutV])
	assert.Equal(t, "1", e[export.KeyInV])
	assert.Equal(t, export.DefaultEdgeWeight, e["weight"])
	assert.Equal(t, graph.EdgeSubClassOf, e[graph.RelationshipKey])
}

func TestVisDocument(t *testing.T) {
	doc := export.Vis(testGraph())

	require.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Edges, 1)

	assert.Equal(t, "1", doc.Nodes[0].ID)
	assert.Equal(t, "Network", doc.Nodes[0].Type)
	assert.Equal(t, "network", doc.Nodes[0].Group)
	assert.Equal(t, "transportnetwork", doc.Nodes[1].Group)

	e := doc.Edges[0]
	assert.Equal(t, "2", e.From)
	assert.Equal(t, "1", e.To)
	assert.Equal(t, graph.EdgeSubClassOf, e.Label)
	assert.Equal(t, 1, e.Weight)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "transportnetwork", export.Slug("Transport Network"))
	assert.Equal(t, "router", export.Slug("Router"))
	assert.Equal(t, "", export.Slug("   "))
}
