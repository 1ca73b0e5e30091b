// Package neo4j provides the Bolt-backed remote graph store.
package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v4/neo4j"

	"github.com/ontoflow/ontoflow/graph"
	"github.com/ontoflow/ontoflow/graphstore"
)

// Config holds the Bolt connection settings.
type Config struct {
	URI      string `json:"uri" yaml:"uri"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Store is the Neo4j-backed graph store.
type Store struct {
	config Config
	driver neo4j.Driver
}

// New returns an unopened Neo4j store.
func New(config Config) *Store {
	return &Store{config: config}
}

// Capabilities reports the Neo4j capability vector.
func (s *Store) Capabilities() graphstore.Capabilities {
	return graphstore.Capabilities{
		UserDefinedIDs:      false,
		NonStringIDs:        false,
		Schema:              true,
		Transactions:        true,
		Geoshape:            true,
		TraversalByProperty: true,
	}
}

// Dialect returns the Cypher dialect.
func (s *Store) Dialect() graphstore.Dialect {
	return graphstore.DialectCypher
}

// Open creates the driver and verifies connectivity.
func (s *Store) Open(_ context.Context) error {
	if s.driver != nil {
		return nil
	}
	driver, err := neo4j.NewDriver(s.config.URI, neo4j.BasicAuth(s.config.Username, s.config.Password, ""))
	if err != nil {
		return fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(); err != nil {
		_ = driver.Close()
		return fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	s.driver = driver
	return nil
}

// Close releases the driver. Safe on an unopened store.
func (s *Store) Close(_ context.Context) error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close()
	s.driver = nil
	return err
}

func (s *Store) session() (neo4j.Session, error) {
	if s.driver == nil {
		return nil, fmt.Errorf("store not open")
	}
	return s.driver.NewSession(neo4j.SessionConfig{}), nil
}

// CreateSchema creates the index on the vertex IRI key for each vertex
// label. IF NOT EXISTS keeps the call idempotent across restarts.
func (s *Store) CreateSchema(_ context.Context) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	defer session.Close()

	for _, kind := range []string{graph.KindClass, graph.KindNamedIndividual} {
		stmt := fmt.Sprintf(
			"CREATE INDEX %s_iri IF NOT EXISTS FOR (n:`%s`) ON (n.iri)",
			strings.ToLower(kind), kind)
		if _, err := session.Run(stmt, nil); err != nil {
			return fmt.Errorf("create index for %s: %w", kind, err)
		}
	}
	return nil
}

// AddVertex creates one node labelled with the vertex kind and returns the
// generated store id.
func (s *Store) AddVertex(_ context.Context, v *graph.Vertex) (string, error) {
	session, err := s.session()
	if err != nil {
		return "", err
	}
	defer session.Close()
	return addVertex(sessionRunner{session}, v)
}

// runner matches neo4j.Transaction.Run so the statement helpers serve both
// single-statement sessions and bulk write transactions.
type runner interface {
	Run(cypher string, params map[string]any) (neo4j.Result, error)
}

// sessionRunner adapts a session to the transaction Run signature.
type sessionRunner struct {
	session neo4j.Session
}

func (s sessionRunner) Run(cypher string, params map[string]any) (neo4j.Result, error) {
	return s.session.Run(cypher, params)
}

func addVertex(r runner, v *graph.Vertex) (string, error) {
	id := uuid.NewString()
	props := map[string]any{
		"sid":             id,
		graphstore.IRIKey: v.IRI,
		"label":           v.Label,
	}
	for k, value := range v.Properties {
		props[k] = value
	}
	stmt := fmt.Sprintf("CREATE (n:`%s` $props)", v.Kind)
	if _, err := r.Run(stmt, map[string]any{"props": props}); err != nil {
		return "", fmt.Errorf("create vertex %s: %w", v.IRI, err)
	}
	return id, nil
}

func addEdge(r runner, e *graph.Edge, sourceID, targetID string) (string, error) {
	id := uuid.NewString()
	props := map[string]any{
		"sid":                 id,
		graph.RelationshipKey: e.Label,
	}
	for k, value := range e.Properties {
		props[k] = value
	}
	stmt := `
		MATCH (from {sid: $fromID})
		MATCH (to {sid: $toID})
		CREATE (from)-[r:RELATES $props]->(to)`
	params := map[string]any{"fromID": sourceID, "toID": targetID, "props": props}
	if _, err := r.Run(stmt, params); err != nil {
		return "", fmt.Errorf("create edge %d: %w", e.ID, err)
	}
	return id, nil
}

// UpdateVertex merges properties onto the node with the given store id.
func (s *Store) UpdateVertex(_ context.Context, id string, properties map[string]any) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	defer session.Close()
	_, err = session.Run("MATCH (n {sid: $id}) SET n += $props",
		map[string]any{"id": id, "props": properties})
	return err
}

// DeleteVertex removes the node and its relationships.
func (s *Store) DeleteVertex(_ context.Context, id string) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	defer session.Close()
	_, err = session.Run("MATCH (n {sid: $id}) DETACH DELETE n", map[string]any{"id": id})
	return err
}

// AddEdge creates one relationship between two stored vertices.
func (s *Store) AddEdge(_ context.Context, e *graph.Edge, sourceID, targetID string) (string, error) {
	session, err := s.session()
	if err != nil {
		return "", err
	}
	defer session.Close()
	return addEdge(sessionRunner{session}, e, sourceID, targetID)
}

// UpdateEdge merges properties onto the relationship with the store id.
func (s *Store) UpdateEdge(_ context.Context, id string, properties map[string]any) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	defer session.Close()
	_, err = session.Run("MATCH ()-[r {sid: $id}]->() SET r += $props",
		map[string]any{"id": id, "props": properties})
	return err
}

// DeleteEdge removes the relationship with the store id.
func (s *Store) DeleteEdge(_ context.Context, id string) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	defer session.Close()
	_, err = session.Run("MATCH ()-[r {sid: $id}]->() DELETE r", map[string]any{"id": id})
	return err
}

// BulkAddVertices creates all nodes inside one write transaction.
func (s *Store) BulkAddVertices(_ context.Context, vertices []*graph.Vertex) (map[uint64]string, error) {
	session, err := s.session()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	ids := make(map[uint64]string, len(vertices))
	_, err = session.WriteTransaction(func(tx neo4j.Transaction) (any, error) {
		for _, v := range vertices {
			id, err := addVertex(tx, v)
			if err != nil {
				return nil, err
			}
			ids[v.ID] = id
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// BulkAddEdges creates all relationships inside one write transaction.
func (s *Store) BulkAddEdges(_ context.Context, edges []*graph.Edge, vertexIDs map[uint64]string) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	defer session.Close()

	_, err = session.WriteTransaction(func(tx neo4j.Transaction) (any, error) {
		for _, e := range edges {
			sourceID, ok := vertexIDs[e.SourceID]
			if !ok {
				return nil, fmt.Errorf("edge %d: no store id for source vertex %d", e.ID, e.SourceID)
			}
			targetID, ok := vertexIDs[e.TargetID]
			if !ok {
				return nil, fmt.Errorf("edge %d: no store id for target vertex %d", e.ID, e.TargetID)
			}
			if _, err := addEdge(tx, e, sourceID, targetID); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// Query runs a raw Cypher statement with the default traversal timeout.
func (s *Store) Query(ctx context.Context, query string) ([]map[string]any, error) {
	ctx, cancel := graphstore.QueryContext(ctx)
	defer cancel()

	session, err := s.session()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	timeout := graphstore.DefaultQueryTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	result, err := session.Run(query, nil, neo4j.WithTxTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}

	var rows []map[string]any
	for result.Next() {
		record := result.Record()
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = record.Values[i]
		}
		rows = append(rows, row)
	}
	return rows, result.Err()
}

// DeleteSubGraph detaches and deletes every node whose property matches.
func (s *Store) DeleteSubGraph(_ context.Context, key string, value any) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	defer session.Close()

	stmt := fmt.Sprintf("MATCH (n) WHERE n.`%s` = $value DETACH DELETE n", key)
	_, err = session.Run(stmt, map[string]any{"value": value})
	return err
}

// WriteGraph is unsupported: durability belongs to the server.
func (s *Store) WriteGraph(string) error {
	return graphstore.ErrUnsupported
}
