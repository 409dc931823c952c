package graph

import (
	"fmt"

	"github.com/dusk-indust/luagraph/internal/ast"
)

// StructuralBuilder turns a normalized syntax tree into the per-file
// structural graph in a single depth-first traversal. Identical input under
// an unchanged policy always yields byte-identical vertex and edge sets:
// ids depend only on (file, kind, preorder position among kept nodes).
type StructuralBuilder struct {
	Policy ast.KindPolicy
}

// NewStructuralBuilder creates a builder with the default drop policy.
func NewStructuralBuilder() *StructuralBuilder {
	return &StructuralBuilder{Policy: ast.DefaultPolicy()}
}

// Build emits one vertex per kept node and one CHILD edge per kept node
// with a kept ancestor, skipping over dropped intermediates. The root is
// always kept so the per-file graph stays connected.
func (b *StructuralBuilder) Build(root *ast.Node, fileID string) ([]StructuralVertex, []StructuralEdge) {
	if root == nil {
		return nil, nil
	}

	var vertices []StructuralVertex
	var edges []StructuralEdge
	counter := 0

	var walk func(n *ast.Node, parentID string, siblingOrdinal *int)
	walk = func(n *ast.Node, parentID string, siblingOrdinal *int) {
		keep := parentID == "" || b.Policy.Keeps(n.Kind)
		if !keep {
			// Dropped node: its kept descendants attach to the nearest
			// kept ancestor, in order.
			for _, c := range n.Children {
				walk(c, parentID, siblingOrdinal)
			}
			return
		}

		id := structuralID(fileID, counter, n.Kind)
		counter++
		vertices = append(vertices, StructuralVertex{
			ID:    id,
			Kind:  n.Kind,
			File:  fileID,
			Range: n.Range,
		})

		if parentID != "" {
			edges = append(edges, StructuralEdge{
				From:     parentID,
				To:       id,
				Relation: RelationChild,
				Ordinal:  *siblingOrdinal,
				File:     fileID,
			})
			*siblingOrdinal++
		}

		childOrdinal := 0
		for _, c := range n.Children {
			walk(c, id, &childOrdinal)
		}
	}

	rootOrdinal := 0
	walk(root, "", &rootOrdinal)
	return vertices, edges
}

// structuralID derives a stable vertex id from the file identity, the
// node's preorder position among kept nodes, and its kind.
func structuralID(fileID string, position int, kind string) string {
	return fmt.Sprintf("%s:s%d:%s", fileID, position, kind)
}
