package ast

import (
	"errors"
	"fmt"

	tree_sitter_lua "github.com/tree-sitter-grammars/tree-sitter-lua/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrParse marks a file whose syntax tree is unusable: the parser produced
// error nodes beyond the configured tolerance. Wrap-checked with errors.Is.
var ErrParse = errors.New("unrecoverable parse errors")

// DefaultErrorTolerance is the maximum ratio of error nodes to total nodes
// before a file is rejected as unparseable.
const DefaultErrorTolerance = 0.2

// Parser normalizes Lua source into Node trees. A new tree-sitter parser is
// created per ParseFile call, so a single Parser value is safe to share
// across concurrent per-file tasks.
type Parser struct {
	lang *tree_sitter.Language

	// ErrorTolerance is the maximum error-node ratio before ParseFile
	// returns ErrParse. Error subtrees below the threshold are kept as
	// nodes of kind ERROR.
	ErrorTolerance float64
}

// NewParser creates a Parser with the Lua grammar and default tolerance.
func NewParser() *Parser {
	return &Parser{
		lang:           tree_sitter.NewLanguage(tree_sitter_lua.Language()),
		ErrorTolerance: DefaultErrorTolerance,
	}
}

// ParseFile parses source and returns the normalized root Node for fileID.
// It returns an error wrapping ErrParse when the error-node ratio exceeds
// the tolerance.
func (p *Parser) ParseFile(fileID string, source []byte) (*Node, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.lang); err != nil {
		return nil, fmt.Errorf("set lua language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: tree-sitter returned no tree for %s", ErrParse, fileID)
	}
	defer tree.Close()

	root := tree.RootNode()

	var total, errCount int
	countErrors(root, &total, &errCount)
	if total > 0 {
		ratio := float64(errCount) / float64(total)
		if ratio > p.ErrorTolerance {
			return nil, fmt.Errorf("%w: %s has %d error nodes out of %d (%.0f%%)",
				ErrParse, fileID, errCount, total, ratio*100)
		}
	}

	return normalize(root, source, fileID), nil
}

// countErrors tallies total and error/missing nodes in the raw tree.
func countErrors(node *tree_sitter.Node, total, errs *int) {
	*total++
	if node.IsError() || node.IsMissing() {
		*errs++
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		countErrors(child, total, errs)
	}
}

// normalize converts a raw tree-sitter node into the internal Node form.
// Missing nodes (inserted by error recovery, zero-width) are dropped; error
// nodes are kept under the kind ERROR so the surrounding structure stays
// usable.
func normalize(raw *tree_sitter.Node, source []byte, fileID string) *Node {
	kind := raw.Kind()
	if raw.IsError() {
		kind = "ERROR"
	}

	start := raw.StartPosition()
	end := raw.EndPosition()
	n := &Node{
		Kind: kind,
		Range: Range{
			File:      fileID,
			StartLine: int(start.Row) + 1,
			StartCol:  int(start.Column) + 1,
			EndLine:   int(end.Row) + 1,
			EndCol:    int(end.Column) + 1,
			StartByte: int(raw.StartByte()),
			EndByte:   int(raw.EndByte()),
		},
	}

	childCount := raw.ChildCount()
	if childCount == 0 {
		n.Text = raw.Utf8Text(source)
		return n
	}

	n.Children = make([]*Node, 0, childCount)
	for i := uint(0); i < childCount; i++ {
		child := raw.Child(i)
		if child == nil || child.IsMissing() {
			continue
		}
		n.Children = append(n.Children, normalize(child, source, fileID))
	}
	return n
}
