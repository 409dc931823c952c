package graph

import (
	"context"
	"io"
)

// Store is the interface for the analysis graph backend.
// Implementations: KuzuStore (persistent), MemStore (default, testing).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddStructuralVertex(ctx context.Context, v StructuralVertex) error
	AddStructuralEdge(ctx context.Context, e StructuralEdge) error
	AddSemanticVertex(ctx context.Context, v SemanticVertex) error
	AddSemanticEdge(ctx context.Context, e SemanticEdge) error

	// RemoveFile deletes every vertex and edge attributed to fileID, in
	// both graphs. Used by incremental rebuilds before re-inserting.
	RemoveFile(ctx context.Context, fileID string) error

	// Read operations.
	GetSemanticVertex(ctx context.Context, id string) (*SemanticVertex, error)
	QueryFunctions(ctx context.Context, query string, limit int) ([]SemanticVertex, error)

	// CallChains walks CALLS edges from vertexID up to maxDepth hops.
	CallChains(ctx context.Context, vertexID string, direction Direction, maxDepth int) ([]CallChain, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls call-chain traversal direction.
type Direction string

const (
	DirectionCallees Direction = "callees" // what does this call?
	DirectionCallers Direction = "callers" // what calls this?
)

// CallChain is one path through CALLS edges, root first.
type CallChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// GraphStats summarizes stored graph cardinalities.
type GraphStats struct {
	StructuralVertices int `json:"structural_vertices"`
	StructuralEdges    int `json:"structural_edges"`
	SemanticVertices   int `json:"semantic_vertices"`
	SemanticEdges      int `json:"semantic_edges"`
	Files              int `json:"files"`
}

// Load inserts a merged result into a store, replacing any prior entities
// of the files it covers.
func Load(ctx context.Context, store Store, result *ProjectResult) error {
	seen := make(map[string]bool)
	for _, v := range result.LuaGraph.Vertices {
		if !seen[v.File] {
			seen[v.File] = true
			if err := store.RemoveFile(ctx, v.File); err != nil {
				return err
			}
		}
	}
	for _, v := range result.KnowledgeGraph.Vertices {
		if !seen[v.File] {
			seen[v.File] = true
			if err := store.RemoveFile(ctx, v.File); err != nil {
				return err
			}
		}
	}

	for _, v := range result.LuaGraph.Vertices {
		if err := store.AddStructuralVertex(ctx, v); err != nil {
			return err
		}
	}
	for _, e := range result.LuaGraph.Edges {
		if err := store.AddStructuralEdge(ctx, e); err != nil {
			return err
		}
	}
	for _, v := range result.KnowledgeGraph.Vertices {
		if err := store.AddSemanticVertex(ctx, v); err != nil {
			return err
		}
	}
	for _, e := range result.KnowledgeGraph.Edges {
		if err := store.AddSemanticEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
