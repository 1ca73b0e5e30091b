package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ontoflow/ontoflow/graph"
)

// VisNode is one visualisation dataset node. Nodes are grouped by the
// slugified display label so that rendering libraries can colour by group.
type VisNode struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Group string `json:"group"`
}

// VisEdge is one visualisation dataset edge with a default display weight.
type VisEdge struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// VisGraph is the lightweight visualisation document.
type VisGraph struct {
	Nodes []VisNode `json:"nodes"`
	Edges []VisEdge `json:"edges"`
}

// Vis builds the visualisation dataset for g.
func Vis(g *graph.PropertyGraph) *VisGraph {
	doc := &VisGraph{
		Nodes: make([]VisNode, 0, len(g.Vertices)),
		Edges: make([]VisEdge, 0, len(g.Edges)),
	}

	for _, v := range g.SortedVertices() {
		doc.Nodes = append(doc.Nodes, VisNode{
			ID:    fmt.Sprintf("%d", v.ID),
			Type:  v.Label,
			Group: Slug(v.Label),
		})
	}

	for _, e := range g.Edges {
		doc.Edges = append(doc.Edges, VisEdge{
			ID:     fmt.Sprintf("%d", e.ID),
			From:   fmt.Sprintf("%d", e.SourceID),
			To:     fmt.Sprintf("%d", e.TargetID),
			Label:  e.Label,
			Weight: DefaultEdgeWeight,
		})
	}

	return doc
}

// VisJSON renders the visualisation dataset as JSON.
func VisJSON(g *graph.PropertyGraph) ([]byte, error) {
	data, err := json.MarshalIndent(Vis(g), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal vis graph: %w", err)
	}
	return data, nil
}

// Slug lower-cases a label and removes all whitespace.
func Slug(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "")
}
