package graph

import (
	"fmt"
	"sort"
)

// Vertex kinds assigned by the modeller and used as store-level labels.
const (
	KindClass           = "class"
	KindNamedIndividual = "namedIndividual"
)

// Edge kinds assigned when no object property resolves.
const (
	EdgeSubClassOf = "subClassOf"
	EdgeInstanceOf = "instanceOf"
	EdgeLinkedTo   = "linkedTo"
)

// RelationshipKey is the edge property carrying the resolved relationship
// description.
const RelationshipKey = "relationship"

// Vertex is one modelled ontology resource.
type Vertex struct {
	// ID is unique within the graph, assigned sequentially from 1 in one
	// modelling pass and never reused.
	ID uint64 `json:"id"`

	// IRI is the ontology resource IRI.
	IRI string `json:"iri"`

	// Label is the resource's primary rdfs:label, or its IRI local name
	// when no label is asserted.
	Label string `json:"label"`

	// Kind is the vertex type label (class or namedIndividual) used by
	// graph stores.
	Kind string `json:"kind"`

	// Properties holds resolved, normalised annotation values.
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge is one modelled relationship between two vertices.
type Edge struct {
	// ID is unique among edges, assigned sequentially from 1, independent
	// of vertex ids.
	ID uint64 `json:"id"`

	SourceID uint64 `json:"sourceVertexId"`
	TargetID uint64 `json:"targetVertexId"`

	// Label is the resolved object property label, or the edge kind when
	// no object property applies.
	Label string `json:"label"`

	Properties map[string]any `json:"properties,omitempty"`
}

// PropertyGraph is the modelled output of one ontology revision.
type PropertyGraph struct {
	OntologyID int64 `json:"ontologyId"`
	RevisionID int64 `json:"revisionId"`

	Vertices map[uint64]*Vertex `json:"vertices"`
	Edges    []*Edge            `json:"edges"`
}

// NewPropertyGraph returns an empty graph for the given revision key.
func NewPropertyGraph(ontologyID, revisionID int64) *PropertyGraph {
	return &PropertyGraph{
		OntologyID: ontologyID,
		RevisionID: revisionID,
		Vertices:   make(map[uint64]*Vertex),
	}
}

// Validate checks referential integrity: every edge endpoint must exist in
// the vertex mapping. A dangling reference is a fatal modelling error.
func (g *PropertyGraph) Validate() error {
	for _, e := range g.Edges {
		if _, ok := g.Vertices[e.SourceID]; !ok {
			return fmt.Errorf("edge %d: dangling source vertex %d", e.ID, e.SourceID)
		}
		if _, ok := g.Vertices[e.TargetID]; !ok {
			return fmt.Errorf("edge %d: dangling target vertex %d", e.ID, e.TargetID)
		}
	}
	return nil
}

// SortedVertices returns the vertices ordered by id.
func (g *PropertyGraph) SortedVertices() []*Vertex {
	vertices := make([]*Vertex, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		vertices = append(vertices, v)
	}
	sort.Slice(vertices, func(i, j int) bool { return vertices[i].ID < vertices[j].ID })
	return vertices
}

// VertexByIRI returns the vertex with the given IRI, if present.
func (g *PropertyGraph) VertexByIRI(iri string) (*Vertex, bool) {
	for _, v := range g.Vertices {
		if v.IRI == iri {
			return v, true
		}
	}
	return nil, false
}

// Counts returns the vertex and edge counts.
func (g *PropertyGraph) Counts() (vertices, edges int) {
	return len(g.Vertices), len(g.Edges)
}
