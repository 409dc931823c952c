package ast

// Range locates a node within its source file. Lines and columns are
// 1-based; byte offsets are 0-based half-open.
type Range struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
	StartByte int    `json:"-"`
	EndByte   int    `json:"-"`
}

// Node is the normalized view of one concrete-syntax-tree node. Children
// are exclusively owned by their parent and preserve source order. Text is
// populated for leaf tokens only.
type Node struct {
	Kind     string
	Range    Range
	Children []*Node
	Text     string
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Walk visits n and every descendant in depth-first preorder. Returning
// false from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FirstOfKind returns the first node of the given kind in preorder, or nil.
func (n *Node) FirstOfKind(kind string) *Node {
	if n.Kind == kind {
		return n
	}
	for _, c := range n.Children {
		if found := c.FirstOfKind(kind); found != nil {
			return found
		}
	}
	return nil
}

// AllOfKind returns every node of the given kind in preorder.
func (n *Node) AllOfKind(kind string) []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if node.Kind == kind {
			out = append(out, node)
		}
		return true
	})
	return out
}

// ChildOfKind returns the first direct child of the given kind, or nil.
func (n *Node) ChildOfKind(kind string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}
