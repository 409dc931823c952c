// Package metrics computes per-function complexity and size metrics from
// normalized syntax subtrees.
package metrics

import (
	"math"

	"github.com/dusk-indust/luagraph/internal/ast"
)

// Halstead holds the software-science metrics derived from operator and
// operand token counts within a function's range.
type Halstead struct {
	DistinctOperators int     `json:"n1"`
	DistinctOperands  int     `json:"n2"`
	TotalOperators    int     `json:"N1"`
	TotalOperands     int     `json:"N2"`
	Vocabulary        int     `json:"vocabulary"`
	Length            int     `json:"length"`
	Volume            float64 `json:"volume"`
	Difficulty        float64 `json:"difficulty"`
	Effort            float64 `json:"effort"`
	Time              float64 `json:"time"`
	Bugs              float64 `json:"bugs"`
}

// LOC holds the line-of-code counts for a function.
type LOC struct {
	Physical int `json:"physical"`
	Logical  int `json:"logical"`
	Comment  int `json:"comment"`
}

// Metrics is the full metric set attached to Function vertices.
type Metrics struct {
	Cyclomatic int      `json:"cyclomatic"`
	Halstead   Halstead `json:"halstead"`
	LOC        LOC      `json:"loc"`
}

// Engine computes Metrics for function-like subtrees. The classification
// tables are grammar-specific configuration: kinds in none of the sets are
// neither operator nor operand and are ignored.
type Engine struct {
	// Operators classifies leaf token kinds (or texts) as Halstead operators.
	Operators map[string]bool
	// Ignored lists leaf kinds skipped entirely: closing halves of paired
	// tokens (counted once at the opener) and comments.
	Ignored map[string]bool
	// StatementKinds are the node kinds counted as logical lines.
	StatementKinds map[string]bool
	// DecisionKinds are the statement kinds that add one to cyclomatic
	// complexity.
	DecisionKinds map[string]bool
	// ShortCircuit are the operator token kinds ("and", "or") that add one
	// to cyclomatic complexity per occurrence.
	ShortCircuit map[string]bool
	// FunctionKinds delimit nested functions, which are excluded from the
	// enclosing function's cyclomatic and logical counts and measured
	// independently.
	FunctionKinds map[string]bool
	// CommentKinds are the node kinds counted as comment lines.
	CommentKinds map[string]bool
}

// NewEngine returns an Engine with the default Lua classification tables.
func NewEngine() *Engine {
	return &Engine{
		Operators:      toSet(DefaultOperatorTokens),
		Ignored:        toSet(DefaultIgnoredTokens),
		StatementKinds: toSet(DefaultStatementKinds),
		DecisionKinds:  toSet(DefaultDecisionKinds),
		ShortCircuit:   toSet(DefaultShortCircuitTokens),
		FunctionKinds:  toSet(DefaultFunctionKinds),
		CommentKinds:   toSet(DefaultCommentKinds),
	}
}

// Compute measures one function-like subtree. A malformed subtree (missing
// body) degrades gracefully: logical LOC 0, complexity 1, no error.
func (e *Engine) Compute(fn *ast.Node) Metrics {
	m := Metrics{Cyclomatic: 1}
	if fn == nil {
		return m
	}

	m.LOC.Physical = fn.Range.EndLine - fn.Range.StartLine + 1

	if fn.ChildOfKind("block") == nil {
		// No body: metrics degrade rather than aborting the file.
		return m
	}

	e.countStatements(fn, &m, "", true)
	e.countTokens(fn, &m)
	m.Halstead.finish()
	return m
}

// countStatements walks the subtree accumulating cyclomatic complexity,
// logical LOC, and comment LOC. Nested function subtrees contribute only
// their comments (cyclomatic and logical counts stop at their boundary).
func (e *Engine) countStatements(n *ast.Node, m *Metrics, parentKind string, isRoot bool) {
	if !isRoot && e.FunctionKinds[n.Kind] {
		m.LOC.Comment += e.commentCount(n)
		return
	}

	if e.CommentKinds[n.Kind] {
		m.LOC.Comment++
		return
	}
	if e.DecisionKinds[n.Kind] {
		m.Cyclomatic++
	}
	if n.IsLeaf() && e.ShortCircuit[n.Kind] {
		m.Cyclomatic++
	}
	if e.StatementKinds[n.Kind] {
		// The assignment wrapped by a local declaration is the same
		// logical line as the declaration itself.
		if !(n.Kind == "assignment_statement" && parentKind == "variable_declaration") {
			m.LOC.Logical++
		}
	}

	for _, c := range n.Children {
		e.countStatements(c, m, n.Kind, false)
	}
}

// commentCount tallies comment nodes in a subtree.
func (e *Engine) commentCount(n *ast.Node) int {
	count := 0
	n.Walk(func(node *ast.Node) bool {
		if e.CommentKinds[node.Kind] {
			count++
		}
		return true
	})
	return count
}

// countTokens classifies every leaf token under the function's range for
// the Halstead counts. Nested functions are included: every token enclosed
// in the range is measured.
func (e *Engine) countTokens(n *ast.Node, m *Metrics) {
	operators := make(map[string]bool)
	operands := make(map[string]bool)

	n.Walk(func(node *ast.Node) bool {
		if e.CommentKinds[node.Kind] {
			return false
		}
		if !node.IsLeaf() {
			// String content subtrees count as a single operand kind.
			if node.Kind == "string_content" {
				operands["string_content"] = true
				m.Halstead.TotalOperands++
				return false
			}
			return true
		}
		switch {
		case e.Ignored[node.Kind]:
			// Closing halves of paired tokens: counted at the opener.
		case e.Operators[node.Kind] || e.Operators[node.Text]:
			operators[node.Kind] = true
			m.Halstead.TotalOperators++
		case node.Kind == "string_content":
			operands["string_content"] = true
			m.Halstead.TotalOperands++
		default:
			operands[node.Text] = true
			m.Halstead.TotalOperands++
		}
		return true
	})

	m.Halstead.DistinctOperators = len(operators)
	m.Halstead.DistinctOperands = len(operands)
}

// finish derives vocabulary, length, volume, difficulty, effort, time, and
// bugs from the raw counts.
func (h *Halstead) finish() {
	h.Vocabulary = h.DistinctOperators + h.DistinctOperands
	h.Length = h.TotalOperators + h.TotalOperands

	if h.Vocabulary > 1 {
		h.Volume = float64(h.Length) * math.Log2(float64(h.Vocabulary))
	}
	if h.DistinctOperands > 0 {
		h.Difficulty = float64(h.DistinctOperators) / 2.0 *
			float64(h.TotalOperands) / float64(h.DistinctOperands)
	}
	h.Effort = h.Difficulty * h.Volume
	if h.Effort > 0 {
		h.Time = h.Effort / 18.0
		h.Bugs = math.Pow(h.Effort, 2.0/3.0) / 3000.0
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}
