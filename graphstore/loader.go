package graphstore

import (
	"context"
	"fmt"

	"github.com/ontoflow/ontoflow/graph"
)

// Revision keys stamped onto every stored vertex and edge so that one
// ontology's subgraph can be cleared and re-loaded idempotently.
const (
	OntologyIDKey = "ontologyId"
	RevisionIDKey = "revisionId"
	VertexIDKey   = "vertexId"
	IRIKey        = "iri"
)

// Load bulk-loads a modelled graph into the store: the ontology's existing
// subgraph is deleted first, then vertices are created before edges. The
// modelled-id to store-id correspondence lives only for the duration of
// this call.
func Load(ctx context.Context, store Store, g *graph.PropertyGraph) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("refusing to load invalid graph: %w", err)
	}

	if err := store.DeleteSubGraph(ctx, OntologyIDKey, g.OntologyID); err != nil {
		return fmt.Errorf("clear previous subgraph: %w", err)
	}

	vertices := g.SortedVertices()
	stamped := make([]*graph.Vertex, len(vertices))
	for i, v := range vertices {
		stamped[i] = &graph.Vertex{
			ID:         v.ID,
			IRI:        v.IRI,
			Label:      v.Label,
			Kind:       v.Kind,
			Properties: stampProperties(v.Properties, g, v.ID),
		}
	}

	vertexIDs, err := store.BulkAddVertices(ctx, stamped)
	if err != nil {
		return fmt.Errorf("bulk add vertices: %w", err)
	}

	edges := make([]*graph.Edge, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = &graph.Edge{
			ID:         e.ID,
			SourceID:   e.SourceID,
			TargetID:   e.TargetID,
			Label:      e.Label,
			Properties: stampProperties(e.Properties, g, 0),
		}
	}

	if err := store.BulkAddEdges(ctx, edges, vertexIDs); err != nil {
		return fmt.Errorf("bulk add edges: %w", err)
	}

	return nil
}

func stampProperties(properties map[string]any, g *graph.PropertyGraph, vertexID uint64) map[string]any {
	stamped := make(map[string]any, len(properties)+3)
	for k, v := range properties {
		stamped[k] = v
	}
	stamped[OntologyIDKey] = g.OntologyID
	stamped[RevisionIDKey] = g.RevisionID
	if vertexID != 0 {
		stamped[VertexIDKey] = vertexID
	}
	return stamped
}
