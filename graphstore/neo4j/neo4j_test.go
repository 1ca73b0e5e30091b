package neo4j

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoflow/ontoflow/graph"
	"github.com/ontoflow/ontoflow/graphstore"
)

// The statement helpers must accept the driver's transaction directly and
// sessions through the adapter.
var (
	_ runner = (neo4j.Transaction)(nil)
	_ runner = sessionRunner{}
)

type fakeRunner struct {
	statements []string
	params     []map[string]any
}

func (f *fakeRunner) Run(cypher string, params map[string]any) (neo4j.Result, error) {
	f.statements = append(f.statements, cypher)
	f.params = append(f.params, params)
	return nil, nil
}

func TestAddVertexStatement(t *testing.T) {
	r := &fakeRunner{}
	v := &graph.Vertex{
		ID:    1,
		IRI:   "http://example.com/net#Network",
		Label: "Network",
		Kind:  graph.KindClass,
	}

	id, err := addVertex(r, v)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, r.statements, 1)
	assert.Equal(t, "CREATE (n:`class` $props)", r.statements[0])

	props := r.params[0]["props"].(map[string]any)
	assert.Equal(t, id, props["sid"])
	assert.Equal(t, "http://example.com/net#Network", props[graphstore.IRIKey])
	assert.Equal(t, "Network", props["label"])
}

func TestAddEdgeStatement(t *testing.T) {
	r := &fakeRunner{}
	e := &graph.Edge{
		ID:       1,
		SourceID: 1,
		TargetID: 2,
		Label:    graph.EdgeSubClassOf,
	}

	id, err := addEdge(r, e, "src-id", "dst-id")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, r.params, 1)
	assert.Equal(t, "src-id", r.params[0]["fromID"])
	assert.Equal(t, "dst-id", r.params[0]["toID"])

	props := r.params[0]["props"].(map[string]any)
	assert.Equal(t, graph.EdgeSubClassOf, props[graph.RelationshipKey])
}

func TestCapabilities(t *testing.T) {
	s := New(Config{URI: "bolt://localhost:7687"})
	caps := s.Capabilities()
	assert.False(t, caps.UserDefinedIDs)
	assert.True(t, caps.Schema)
	assert.True(t, caps.Transactions)
	assert.Equal(t, graphstore.DialectCypher, s.Dialect())
}

func TestCloseUnopened(t *testing.T) {
	s := New(Config{URI: "bolt://localhost:7687"})
	assert.NoError(t, s.Close(context.Background()))
}
