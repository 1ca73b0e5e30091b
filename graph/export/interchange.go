package export

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ontoflow/ontoflow/graph"
)

// Sentinel keys of the interchange graph document.
const (
	KeyID    = "_id"
	KeyType  = "_type"
	KeyLabel = "_label"
	KeyOutV  = "_outV"
	KeyInV   = "_inV"

	TypeVertex = "vertex"
	TypeEdge   = "edge"

	// NameKey is the promoted display-label field on vertices.
	NameKey = "name"

	// DefaultEdgeWeight is attached to every interchange edge.
	DefaultEdgeWeight = 1
)

// InterchangeGraph is the vendor-neutral interchange document: flat vertex
// and edge property maps tagged with sentinel keys.
type InterchangeGraph struct {
	Mode     string           `json:"mode"`
	Vertices []map[string]any `json:"vertices"`
	Edges    []map[string]any `json:"edges"`
}

// Interchange builds the interchange document for g. The vertex rdfs label
// is promoted to the name field; all other properties are flattened
// alongside the sentinel keys.
func Interchange(g *graph.PropertyGraph) *InterchangeGraph {
	doc := &InterchangeGraph{
		Mode:     "NORMAL",
		Vertices: make([]map[string]any, 0, len(g.Vertices)),
		Edges:    make([]map[string]any, 0, len(g.Edges)),
	}

	for _, v := range g.SortedVertices() {
		item := map[string]any{
			KeyID:    strconv.FormatUint(v.ID, 10),
			KeyType:  TypeVertex,
			KeyLabel: v.Kind,
			NameKey:  v.Label,
			"iri":    v.IRI,
		}
		for key, value := range v.Properties {
			item[key] = value
		}
		doc.Vertices = append(doc.Vertices, item)
	}

	for _, e := range g.Edges {
		item := map[string]any{
			KeyID:    strconv.FormatUint(e.ID, 10),
			KeyType:  TypeEdge,
			KeyLabel: e.Label,
			KeyOutV:  strconv.FormatUint(e.SourceID, 10),
			KeyInV:   strconv.FormatUint(e.TargetID, 10),
			"weight": DefaultEdgeWeight,
		}
		for key, value := range e.Properties {
			item[key] = value
		}
		doc.Edges = append(doc.Edges, item)
	}

	return doc
}

// InterchangeJSON renders the interchange document as JSON.
func InterchangeJSON(g *graph.PropertyGraph) ([]byte, error) {
	data, err := json.MarshalIndent(Interchange(g), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal interchange graph: %w", err)
	}
	return data, nil
}
