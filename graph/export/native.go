package export

import (
	"encoding/json"
	"fmt"

	"github.com/ontoflow/ontoflow/graph"
)

// Native serializes the graph in its direct structural JSON form.
func Native(g *graph.PropertyGraph) ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal property graph: %w", err)
	}
	return data, nil
}

// ParseNative reverses Native, reconstructing a PropertyGraph from its
// structural JSON form.
func ParseNative(data []byte) (*graph.PropertyGraph, error) {
	var g graph.PropertyGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("unmarshal property graph: %w", err)
	}
	if g.Vertices == nil {
		g.Vertices = make(map[uint64]*graph.Vertex)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("parsed graph failed validation: %w", err)
	}
	return &g, nil
}
