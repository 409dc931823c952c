//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/luagraph/internal/metrics"
)

// KuzuStore implements the Store interface using KuzuDB as the graph
// backend. It requires CGO because the go-kuzu driver wraps KuzuDB's C
// library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself, so the
// graph survives across sessions.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// semanticRelTables holds one relationship table per knowledge-graph
// relation, keeping traversal queries per-relation instead of filtered.
var semanticRelTables = []Relation{
	RelationContains,
	RelationCalls,
	RelationDefines,
	RelationReferences,
	RelationRequires,
}

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS SyntaxNode(
		id STRING,
		kind STRING,
		file STRING,
		start_line INT64,
		end_line INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Entity(
		id STRING,
		category STRING,
		name STRING,
		file STRING,
		start_line INT64,
		end_line INT64,
		cyclomatic INT64,
		halstead_volume DOUBLE,
		loc_logical INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CHILD(FROM SyntaxNode TO SyntaxNode, ordinal INT64, file STRING)`,
	`CREATE REL TABLE IF NOT EXISTS CONTAINS(FROM Entity TO Entity, file STRING)`,
	`CREATE REL TABLE IF NOT EXISTS CALLS(FROM Entity TO Entity, file STRING)`,
	`CREATE REL TABLE IF NOT EXISTS DEFINES(FROM Entity TO Entity, file STRING)`,
	`CREATE REL TABLE IF NOT EXISTS REFERENCES_(FROM Entity TO Entity, file STRING)`,
	`CREATE REL TABLE IF NOT EXISTS REQUIRES(FROM Entity TO Entity, file STRING)`,
}

// relTableName maps a relation to its Kuzu table. REFERENCES is a reserved
// word in Cypher, hence the trailing underscore.
func relTableName(rel Relation) string {
	if rel == RelationReferences {
		return "REFERENCES_"
	}
	return string(rel)
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddStructuralVertex inserts a SyntaxNode.
func (s *KuzuStore) AddStructuralVertex(_ context.Context, v StructuralVertex) error {
	return s.exec(
		`CREATE (n:SyntaxNode {
			id: $id, kind: $kind, file: $file,
			start_line: $sl, end_line: $el
		})`,
		map[string]any{
			"id":   v.ID,
			"kind": v.Kind,
			"file": v.File,
			"sl":   int64(v.Range.StartLine),
			"el":   int64(v.Range.EndLine),
		},
	)
}

// AddStructuralEdge inserts a CHILD relationship.
func (s *KuzuStore) AddStructuralEdge(_ context.Context, e StructuralEdge) error {
	return s.exec(
		`MATCH (a:SyntaxNode {id: $src}), (b:SyntaxNode {id: $dst})
		 CREATE (a)-[:CHILD {ordinal: $ord, file: $file}]->(b)`,
		map[string]any{
			"src":  e.From,
			"dst":  e.To,
			"ord":  int64(e.Ordinal),
			"file": e.File,
		},
	)
}

// AddSemanticVertex inserts an Entity. Metric columns stay zero for
// non-function categories.
func (s *KuzuStore) AddSemanticVertex(_ context.Context, v SemanticVertex) error {
	var m metrics.Metrics
	if v.Metrics != nil {
		m = *v.Metrics
	}
	return s.exec(
		`CREATE (n:Entity {
			id: $id, category: $cat, name: $name, file: $file,
			start_line: $sl, end_line: $el,
			cyclomatic: $cc, halstead_volume: $vol, loc_logical: $loc
		})`,
		map[string]any{
			"id":   v.ID,
			"cat":  string(v.Category),
			"name": v.Name,
			"file": v.File,
			"sl":   int64(v.Range.StartLine),
			"el":   int64(v.Range.EndLine),
			"cc":   int64(m.Cyclomatic),
			"vol":  m.Halstead.Volume,
			"loc":  int64(m.LOC.Logical),
		},
	)
}

// AddSemanticEdge inserts a relationship into the table matching its
// relation.
func (s *KuzuStore) AddSemanticEdge(_ context.Context, e SemanticEdge) error {
	table := relTableName(e.Relation)
	cypher := fmt.Sprintf(
		`MATCH (a:Entity {id: $src}), (b:Entity {id: $dst})
		 CREATE (a)-[:%s {file: $file}]->(b)`, table)
	return s.exec(cypher, map[string]any{
		"src":  e.From,
		"dst":  e.To,
		"file": e.File,
	})
}

// RemoveFile deletes every vertex and edge attributed to fileID.
// Relationships attached to deleted nodes go with them (DETACH).
func (s *KuzuStore) RemoveFile(_ context.Context, fileID string) error {
	statements := []string{
		"MATCH (n:SyntaxNode {file: $file}) DETACH DELETE n",
		"MATCH (n:Entity {file: $file}) DETACH DELETE n",
	}
	for _, cypher := range statements {
		if err := s.exec(cypher, map[string]any{"file": fileID}); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Read operations ----------

// GetSemanticVertex retrieves a single Entity by id, or nil if not found.
func (s *KuzuStore) GetSemanticVertex(_ context.Context, id string) (*SemanticVertex, error) {
	rows, err := s.query(
		`MATCH (n:Entity {id: $id})
		 RETURN n.id, n.category, n.name, n.file, n.start_line, n.end_line`,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToEntity(rows[0]), nil
}

// QueryFunctions returns Function entities whose name contains the query
// string.
func (s *KuzuStore) QueryFunctions(_ context.Context, queryStr string, limit int) ([]SemanticVertex, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.query(
		`MATCH (n:Entity) WHERE n.category = 'Function' AND n.name CONTAINS $q
		 RETURN n.id, n.category, n.name, n.file, n.start_line, n.end_line
		 LIMIT $lim`,
		map[string]any{
			"q":   queryStr,
			"lim": int64(limit),
		},
	)
	if err != nil {
		return nil, err
	}
	out := make([]SemanticVertex, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToEntity(r))
	}
	return out, nil
}

// ---------- Graph traversal ----------

// CallChains performs a BFS over CALLS edges from vertexID in the given
// direction, up to maxDepth hops. It returns one chain per reachable vertex.
func (s *KuzuStore) CallChains(_ context.Context, vertexID string, dir Direction, maxDepth int) ([]CallChain, error) {
	if maxDepth <= 0 {
		maxDepth = 10
	}

	// BFS state.
	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{vertexID: true}
	queue := []bfsEntry{{path: []string{vertexID}, depth: 0}}
	var chains []CallChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.callNeighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, CallChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// callNeighbors returns entities one CALLS hop away.
func (s *KuzuStore) callNeighbors(id string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionCallees:
		cypher = "MATCH (a:Entity {id: $id})-[:CALLS]->(b:Entity) RETURN b.id"
	case DirectionCallers:
		cypher = "MATCH (a:Entity)-[:CALLS]->(b:Entity {id: $id}) RETURN a.id"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns counts of stored vertices, edges, and distinct files.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	syntaxNodes, err := s.countTable("SyntaxNode")
	if err != nil {
		return nil, err
	}
	entities, err := s.countTable("Entity")
	if err != nil {
		return nil, err
	}
	childEdges, err := s.countRelTable("CHILD")
	if err != nil {
		return nil, err
	}
	semanticEdges := 0
	for _, rel := range semanticRelTables {
		n, err := s.countRelTable(relTableName(rel))
		if err != nil {
			return nil, err
		}
		semanticEdges += n
	}
	files, err := s.countFiles()
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		StructuralVertices: syntaxNodes,
		StructuralEdges:    childEdges,
		SemanticVertices:   entities,
		SemanticEdges:      semanticEdges,
		Files:              files,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countRelTable returns the number of edges in a relationship table.
func (s *KuzuStore) countRelTable(table string) (int, error) {
	cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		// Table may not exist yet; treat as zero.
		return 0, nil
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countFiles returns the number of distinct files across both node tables.
func (s *KuzuStore) countFiles() (int, error) {
	files := make(map[string]bool)
	for _, table := range []string{"SyntaxNode", "Entity"} {
		cypher := fmt.Sprintf("MATCH (n:%s) RETURN DISTINCT n.file", table)
		rows, err := s.query(cypher, nil)
		if err != nil {
			return 0, err
		}
		for _, r := range rows {
			files[toString(r[0])] = true
		}
	}
	return len(files), nil
}

// rowToEntity converts a 6-column result row into a SemanticVertex.
// Column order: id, category, name, file, start_line, end_line.
func rowToEntity(r []any) *SemanticVertex {
	v := &SemanticVertex{
		ID:       toString(r[0]),
		Category: Category(toString(r[1])),
		Name:     toString(r[2]),
		File:     toString(r[3]),
	}
	v.Range.File = v.File
	v.Range.StartLine = toInt(r[4])
	v.Range.EndLine = toInt(r[5])
	return v
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
