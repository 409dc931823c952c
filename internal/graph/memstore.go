package graph

import (
	"context"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu                 sync.RWMutex
	structuralVertices map[string]StructuralVertex
	semanticVertices   map[string]SemanticVertex
	structuralEdges    []StructuralEdge
	semanticEdges      []SemanticEdge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		structuralVertices: make(map[string]StructuralVertex),
		semanticVertices:   make(map[string]SemanticVertex),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddStructuralVertex stores a structural vertex keyed by its id.
func (m *MemStore) AddStructuralVertex(_ context.Context, v StructuralVertex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.structuralVertices[v.ID] = v
	return nil
}

// AddStructuralEdge appends a CHILD edge.
func (m *MemStore) AddStructuralEdge(_ context.Context, e StructuralEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.structuralEdges = append(m.structuralEdges, e)
	return nil
}

// AddSemanticVertex stores a knowledge-graph vertex keyed by its id.
func (m *MemStore) AddSemanticVertex(_ context.Context, v SemanticVertex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.semanticVertices[v.ID] = v
	return nil
}

// AddSemanticEdge appends a knowledge-graph edge. Duplicate triples are
// kept: the graph is a multigraph, one edge per site.
func (m *MemStore) AddSemanticEdge(_ context.Context, e SemanticEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.semanticEdges = append(m.semanticEdges, e)
	return nil
}

// RemoveFile deletes every entity attributed to fileID from both graphs.
func (m *MemStore) RemoveFile(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, v := range m.structuralVertices {
		if v.File == fileID {
			delete(m.structuralVertices, id)
		}
	}
	for id, v := range m.semanticVertices {
		if v.File == fileID {
			delete(m.semanticVertices, id)
		}
	}

	kept := m.structuralEdges[:0]
	for _, e := range m.structuralEdges {
		if e.File != fileID {
			kept = append(kept, e)
		}
	}
	m.structuralEdges = kept

	keptSem := m.semanticEdges[:0]
	for _, e := range m.semanticEdges {
		if e.File != fileID {
			keptSem = append(keptSem, e)
		}
	}
	m.semanticEdges = keptSem
	return nil
}

// GetSemanticVertex returns the vertex for the given id, or nil if absent.
func (m *MemStore) GetSemanticVertex(_ context.Context, id string) (*SemanticVertex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.semanticVertices[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// QueryFunctions returns Function vertices whose name contains query
// (case-insensitive), up to limit results. A limit <= 0 returns all matches.
func (m *MemStore) QueryFunctions(_ context.Context, query string, limit int) ([]SemanticVertex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lowerQuery := strings.ToLower(query)
	var results []SemanticVertex
	for _, v := range m.semanticVertices {
		if v.Category != CategoryFunction {
			continue
		}
		if strings.Contains(strings.ToLower(v.Name), lowerQuery) {
			results = append(results, v)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// CallChains performs a BFS over CALLS edges from vertexID in the given
// direction, up to maxDepth hops. It returns one chain per reachable vertex.
func (m *MemStore) CallChains(_ context.Context, vertexID string, direction Direction, maxDepth int) ([]CallChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state: each entry tracks the path from vertexID to the current
	// vertex.
	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{vertexID: true}
	queue := []bfsEntry{{id: vertexID, path: []string{vertexID}}}
	var chains []CallChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.callNeighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, CallChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// callNeighbors returns vertices one CALLS hop away from id.
func (m *MemStore) callNeighbors(id string, direction Direction) []string {
	var result []string
	for _, e := range m.semanticEdges {
		if e.Relation != RelationCalls {
			continue
		}
		switch direction {
		case DirectionCallees:
			if e.From == id {
				result = append(result, e.To)
			}
		case DirectionCallers:
			if e.To == id {
				result = append(result, e.From)
			}
		}
	}
	return result
}

// Stats returns counts of stored vertices, edges, and distinct files.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string]bool)
	for _, v := range m.structuralVertices {
		files[v.File] = true
	}
	for _, v := range m.semanticVertices {
		files[v.File] = true
	}

	return &GraphStats{
		StructuralVertices: len(m.structuralVertices),
		StructuralEdges:    len(m.structuralEdges),
		SemanticVertices:   len(m.semanticVertices),
		SemanticEdges:      len(m.semanticEdges),
		Files:              len(files),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
