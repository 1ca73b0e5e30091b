package graphstore

import "fmt"

// Dialect identifies a backend's native query language.
type Dialect string

const (
	// DialectMemory is the embedded store's minimal traversal language.
	DialectMemory Dialect = "memory"

	// DialectGremlin is Gremlin Groovy, submitted to a Gremlin Server.
	DialectGremlin Dialect = "gremlin"

	// DialectCypher is Cypher over Bolt.
	DialectCypher Dialect = "cypher"
)

// Canned count traversals per dialect. Callers read the single "count"
// column of the first result row.

// CountVerticesQuery returns the dialect's query counting vertices with
// the given label; an empty label counts all vertices.
func CountVerticesQuery(d Dialect, label string) string {
	switch d {
	case DialectGremlin:
		if label == "" {
			return "g.V().count()"
		}
		return fmt.Sprintf("g.V().hasLabel('%s').count()", label)
	case DialectCypher:
		if label == "" {
			return "MATCH (n) RETURN count(n) AS count"
		}
		return fmt.Sprintf("MATCH (n:`%s`) RETURN count(n) AS count", label)
	default:
		if label == "" {
			return "V().count()"
		}
		return fmt.Sprintf("V().hasLabel('%s').count()", label)
	}
}

// CountEdgesQuery returns the dialect's query counting all edges.
func CountEdgesQuery(d Dialect) string {
	switch d {
	case DialectGremlin:
		return "g.E().count()"
	case DialectCypher:
		return "MATCH ()-[r]->() RETURN count(r) AS count"
	default:
		return "E().count()"
	}
}
