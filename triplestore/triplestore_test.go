package triplestore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyRDF = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#">
  <rdf:Description rdf:about="http://example.com/net#Network">
    <rdfs:label>Network</rdfs:label>
  </rdf:Description>
</rdf:RDF>`

func TestValidate(t *testing.T) {
	n, err := Validate([]byte(tinyRDF))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = Validate([]byte("not rdf"))
	assert.Error(t, err)
}

func TestGraphIRI(t *testing.T) {
	assert.Equal(t, "urn:ontoflow:ontology:3:revision:12", GraphIRI(3, 12))
}

func TestLoadPutsNamedGraph(t *testing.T) {
	var gotGraph, gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotGraph = r.URL.Query().Get("graph")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := New(Config{GraphStoreURL: server.URL})
	require.NoError(t, c.Load(context.Background(), 3, 12, []byte(tinyRDF)))
	assert.Equal(t, "urn:ontoflow:ontology:3:revision:12", gotGraph)
	assert.Equal(t, "application/rdf+xml", gotContentType)
	assert.Equal(t, tinyRDF, string(gotBody))
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	c := New(Config{GraphStoreURL: "http://unused"})
	assert.Error(t, c.Load(context.Background(), 1, 1, []byte("garbage")))
}

func TestQueryPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/sparql-query", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "SELECT * WHERE { ?s ?p ?o } LIMIT 1", string(body))
		_, _ = w.Write([]byte(`{"results":{"bindings":[]}}`))
	}))
	defer server.Close()

	c := New(Config{QueryURL: server.URL})
	results, err := c.Query(context.Background(), "SELECT * WHERE { ?s ?p ?o } LIMIT 1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":{"bindings":[]}}`, string(results))

	_, err = c.Query(context.Background(), "   ")
	assert.Error(t, err)
}
