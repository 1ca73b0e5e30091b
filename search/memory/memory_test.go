package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoflow/ontoflow/search"
)

func seedIndexer(t *testing.T) *Indexer {
	t.Helper()
	x := New()
	ctx := context.Background()
	require.NoError(t, x.CreateIndex(ctx, "ontologies"))
	require.NoError(t, x.IndexDocuments(ctx, "ontologies", []search.Document{
		{
			VertexID: 1, OntologyID: 1, IRI: "http://example.com/net#Network",
			Label: "Network", Kind: "class",
			Properties: map[string]any{
				"synonym":      []string{"Network", "Transport Network"},
				"businessArea": []string{"Network", "Security"},
			},
		},
		{
			VertexID: 2, OntologyID: 1, IRI: "http://example.com/net#Router",
			Label: "Router", Kind: "class",
			Properties: map[string]any{
				"definition": "Forwards packets between networks",
			},
		},
		{
			VertexID: 3, OntologyID: 1, IRI: "http://example.com/net#Firewall",
			Label: "Firewall", Kind: "class",
			Properties: map[string]any{
				"businessArea": []string{"Security"},
			},
		},
	}))
	return x
}

func TestSearchAnyToken(t *testing.T) {
	x := seedIndexer(t)

	docs, err := x.Search(context.Background(), "ontologies", search.Query{
		Query:  "network security",
		Fields: []string{"businessArea"},
	})
	require.NoError(t, err)
	// Any-of semantics: both the Network and Firewall vertices match.
	require.Len(t, docs, 2)
}

func TestSearchAllTokens(t *testing.T) {
	x := seedIndexer(t)

	docs, err := x.Search(context.Background(), "ontologies", search.Query{
		Query:  "network security",
		Fields: []string{"businessArea"},
		And:    true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, uint64(1), docs[0].VertexID)
}

func TestSearchExact(t *testing.T) {
	x := seedIndexer(t)
	ctx := context.Background()

	docs, err := x.Search(ctx, "ontologies", search.Query{
		Query: "Net", Fields: []string{"label"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	docs, err = x.Search(ctx, "ontologies", search.Query{
		Query: "Net", Fields: []string{"label"}, Exact: true,
	})
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = x.Search(ctx, "ontologies", search.Query{
		Query: "Network", Fields: []string{"label"}, Exact: true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestSearchAllFieldsWhenUnspecified(t *testing.T) {
	x := seedIndexer(t)

	docs, err := x.Search(context.Background(), "ontologies", search.Query{Query: "packets"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Router", docs[0].Label)
}

func TestSearchMinimumShouldMatch(t *testing.T) {
	x := seedIndexer(t)

	// Three tokens, 67% requires at least two matches.
	docs, err := x.Search(context.Background(), "ontologies", search.Query{
		Query:                        "network security unrelated",
		Fields:                       []string{"businessArea"},
		MinimumShouldMatchPercentage: 67,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, uint64(1), docs[0].VertexID)
}

func TestCandidateResolution(t *testing.T) {
	x := seedIndexer(t)
	data := x.indices["ontologies"]

	// Exact token, restricted to one field.
	ids := data.candidates([]string{"packets"}, []string{"definition"})
	assert.ElementsMatch(t, []string{"1-2"}, ids.ToSlice())

	// Prefix token across all fields reaches every vertex that mentions a
	// network, including the Router definition text.
	ids = data.candidates([]string{"net"}, nil)
	assert.ElementsMatch(t, []string{"1-1", "1-2", "1-3"}, ids.ToSlice())

	// A field restriction excludes documents whose only hits are elsewhere.
	ids = data.candidates([]string{"security"}, []string{"businessArea"})
	assert.ElementsMatch(t, []string{"1-1", "1-3"}, ids.ToSlice())

	ids = data.candidates([]string{"absent"}, nil)
	assert.Equal(t, 0, ids.Cardinality())
}

func TestIndexDocumentUpsert(t *testing.T) {
	x := seedIndexer(t)
	ctx := context.Background()

	require.NoError(t, x.IndexDocument(ctx, "ontologies", search.Document{
		VertexID: 2, OntologyID: 1, IRI: "http://example.com/net#Router",
		Label: "Router", Kind: "class",
		Properties: map[string]any{"definition": "Replacement text"},
	}))

	docs, err := x.Search(ctx, "ontologies", search.Query{Query: "packets"})
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = x.Search(ctx, "ontologies", search.Query{Query: "replacement"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestDeleteIndex(t *testing.T) {
	x := seedIndexer(t)
	ctx := context.Background()

	require.NoError(t, x.DeleteIndex(ctx, "ontologies"))
	require.NoError(t, x.DeleteIndex(ctx, "ontologies"))

	_, err := x.Search(ctx, "ontologies", search.Query{Query: "network"})
	assert.Error(t, err)
}
