package elastic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoflow/ontoflow/search"
)

func TestCreateIndexAlreadyExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/ontologies", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"resource_already_exists_exception"}}`))
	}))
	defer server.Close()

	x := New(Config{BaseURL: server.URL})
	assert.NoError(t, x.CreateIndex(context.Background(), "ontologies"))
}

func TestDeleteMissingIndexIsNoOp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	x := New(Config{BaseURL: server.URL})
	assert.NoError(t, x.DeleteIndex(context.Background(), "ontologies"))
}

func TestBulkIndexDocuments(t *testing.T) {
	var captured []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_bulk", r.URL.Path)
		assert.Equal(t, "application/x-ndjson", r.Header.Get("Content-Type"))
		body := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(body)
		captured = body
		_, _ = w.Write([]byte(`{"errors":false}`))
	}))
	defer server.Close()

	x := New(Config{BaseURL: server.URL})
	err := x.IndexDocuments(context.Background(), "ontologies", []search.Document{
		{VertexID: 1, OntologyID: 7, Label: "Network", Kind: "class"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(captured), `"_id":"7-1"`)
	assert.Contains(t, string(captured), `"_index":"ontologies"`)
}

func TestBulkReportsItemFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors":true}`))
	}))
	defer server.Close()

	x := New(Config{BaseURL: server.URL})
	err := x.IndexDocuments(context.Background(), "ontologies", []search.Document{{VertexID: 1}})
	assert.Error(t, err)
}

func TestSearchRequestShape(t *testing.T) {
	var request map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ontologies/_search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"vertexId":1,"label":"Network"}}]}}`))
	}))
	defer server.Close()

	x := New(Config{BaseURL: server.URL})
	docs, err := x.Search(context.Background(), "ontologies", search.Query{
		Query:                        "network",
		Fields:                       []string{"label", "synonym"},
		MinimumShouldMatchPercentage: 80,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Network", docs[0].Label)

	boolQuery := request["query"].(map[string]any)["bool"].(map[string]any)
	multiMatch := boolQuery["must"].([]any)[0].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "network", multiMatch["query"])
	assert.Equal(t, "80%", multiMatch["minimum_should_match"])
	assert.Equal(t, "AUTO", multiMatch["fuzziness"])
}
