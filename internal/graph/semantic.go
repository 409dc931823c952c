package graph

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/luagraph/internal/ast"
	"github.com/dusk-indust/luagraph/internal/metrics"
)

// ResolutionStrategy controls how call sites are resolved to definitions.
type ResolutionStrategy string

const (
	// ResolveLexical resolves plain identifier callees through the scope
	// chain.
	ResolveLexical ResolutionStrategy = "lexical"
	// ResolveMember additionally resolves member calls (m.f(), m:f())
	// through the dotted name or the base identifier.
	ResolveMember ResolutionStrategy = "member"
)

// DefaultMustRecognizeKinds are the node kinds expected to yield a semantic
// vertex; one that matches no rule is recorded as an unsupported construct.
var DefaultMustRecognizeKinds = []string{
	"function_declaration",
	"variable_declaration",
	"function_call",
}

// SemanticOptions configures the semantic builder.
type SemanticOptions struct {
	Resolution    ResolutionStrategy
	MustRecognize map[string]bool
}

// DefaultSemanticOptions returns lexical resolution with the default
// must-recognize list.
func DefaultSemanticOptions() SemanticOptions {
	mr := make(map[string]bool, len(DefaultMustRecognizeKinds))
	for _, k := range DefaultMustRecognizeKinds {
		mr[k] = true
	}
	return SemanticOptions{Resolution: ResolveLexical, MustRecognize: mr}
}

// scopeKinds introduce a new lexical scope.
var scopeKinds = map[string]bool{
	"chunk":                true,
	"function_declaration": true,
	"function_definition":  true,
	"do_statement":         true,
	"while_statement":      true,
	"repeat_statement":     true,
	"for_statement":        true,
	"if_statement":         true,
}

// SemanticBuilder derives the knowledge graph from a file's normalized
// syntax tree. Recognition runs in two passes: all declarations are
// collected first, then calls and references are resolved, so forward
// calls within a file resolve correctly.
type SemanticBuilder struct {
	Engine  *metrics.Engine
	Options SemanticOptions
}

// NewSemanticBuilder creates a builder with default options and a default
// metrics engine.
func NewSemanticBuilder() *SemanticBuilder {
	return &SemanticBuilder{
		Engine:  metrics.NewEngine(),
		Options: DefaultSemanticOptions(),
	}
}

// Derive pattern-matches over the structural tree and emits knowledge-graph
// vertices and edges. The returned unsupported list names must-recognize
// nodes that matched no rule; it is recorded, never fatal.
func (b *SemanticBuilder) Derive(root *ast.Node, fileID string) ([]SemanticVertex, []SemanticEdge, []string) {
	if root == nil {
		return nil, nil, nil
	}

	d := &derivation{
		b:        b,
		fileID:   fileID,
		table:    NewSymbolTable(),
		scopeOf:  make(map[*ast.Node]*Scope),
		vertexOf: make(map[*ast.Node]string),
		produced: make(map[*ast.Node]bool),
		consumed: make(map[*ast.Node]bool),
	}

	// Module vertex for the file itself.
	d.moduleID = d.addVertex(CategoryModule, moduleName(fileID), root.Range, nil)
	d.produced[root] = true

	fileScope := d.table.OpenScope(d.scopeID(), nil)
	d.scopeOf[root] = fileScope

	for _, c := range root.Children {
		d.declare(c, fileScope, d.moduleID)
	}
	for _, c := range root.Children {
		d.resolve(c, fileScope, d.moduleID)
	}

	var unsupported []string
	root.Walk(func(n *ast.Node) bool {
		if b.Options.MustRecognize[n.Kind] && !d.produced[n] {
			unsupported = append(unsupported, fmt.Sprintf(
				"unrecognized %s at %s:%d", n.Kind, fileID, n.Range.StartLine))
		}
		return true
	})

	return d.vertices, d.edges, unsupported
}

// derivation is the per-file state of one Derive call.
type derivation struct {
	b        *SemanticBuilder
	fileID   string
	table    *SymbolTable
	moduleID string

	vertices []SemanticVertex
	edges    []SemanticEdge

	scopeOf  map[*ast.Node]*Scope  // scope opened at this node
	vertexOf map[*ast.Node]string  // semantic vertex for function nodes
	produced map[*ast.Node]bool    // node matched a rule
	consumed map[*ast.Node]bool    // node handled by an enclosing rule

	vertexCounter int
	scopeCounter  int
}

// --- Declaration pass ---

// declarationRule recognizes one construct kind. Rules are tried in order;
// the first match consumes the node (most specific first).
type declarationRule struct {
	name  string
	match func(d *derivation, n *ast.Node) bool
	apply func(d *derivation, n *ast.Node, sc *Scope, container string)
}

// declarationRules is the ordered recognition table for the declaration
// pass. Adding a semantic category means adding a row, not restructuring
// the walk. Populated in init: the apply methods call declare, which reads
// this table, so a composite literal would form an initialization cycle.
var declarationRules []declarationRule

func init() {
	declarationRules = []declarationRule{
		{
			name: "function-declaration",
			match: func(d *derivation, n *ast.Node) bool {
				return n.Kind == "function_declaration"
			},
			apply: (*derivation).declareFunction,
		},
		{
			name: "local-declaration",
			match: func(d *derivation, n *ast.Node) bool {
				return n.Kind == "variable_declaration" ||
					(n.Kind == "assignment_statement" && !d.consumed[n])
			},
			apply: (*derivation).declareVariables,
		},
		{
			name: "require-call",
			match: func(d *derivation, n *ast.Node) bool {
				return isRequireCall(n) && !d.consumed[n]
			},
			apply: (*derivation).declareRequire,
		},
		{
			name: "anonymous-function",
			match: func(d *derivation, n *ast.Node) bool {
				return n.Kind == "function_definition" && !d.consumed[n]
			},
			apply: (*derivation).declareAnonymousFunction,
		},
	}
}

// declare runs the declaration pass on one node.
func (d *derivation) declare(n *ast.Node, sc *Scope, container string) {
	for _, rule := range declarationRules {
		if rule.match(d, n) {
			rule.apply(d, n, sc, container)
			return
		}
	}

	if scopeKinds[n.Kind] {
		inner := d.table.OpenScope(d.scopeID(), sc)
		d.scopeOf[n] = inner
		if n.Kind == "for_statement" {
			d.declareLoopVariables(n, inner)
		}
		sc = inner
	}
	for _, c := range n.Children {
		d.declare(c, sc, container)
	}
}

// declareFunction handles named function declarations: Function vertex with
// metrics, CONTAINS from the enclosing scope vertex, a symbol in the
// enclosing lexical scope, and a fresh scope holding the parameters.
func (d *derivation) declareFunction(n *ast.Node, sc *Scope, container string) {
	nameNode := functionNameNode(n)
	if nameNode == nil {
		// No resolvable name: leave unproduced so the must-recognize
		// check records it, but still visit the body for nested
		// constructs.
		inner := d.table.OpenScope(d.scopeID(), sc)
		d.scopeOf[n] = inner
		for _, c := range n.Children {
			d.declare(c, inner, container)
		}
		return
	}

	name := nodeText(nameNode)
	m := d.b.Engine.Compute(n)
	id := d.addVertex(CategoryFunction, name, n.Range, &m)
	d.addEdge(container, id, RelationContains)
	d.produced[n] = true
	d.vertexOf[n] = id

	d.table.Declare(sc, &Symbol{Name: name, Category: CategoryFunction, VertexID: id})

	inner := d.table.OpenScope(d.scopeID(), sc)
	d.scopeOf[n] = inner
	d.declareParameters(n, inner)

	for _, c := range n.Children {
		d.declare(c, inner, id)
	}
}

// declareAnonymousFunction handles function literals not captured by a
// declaration: the name is a synthesized placeholder.
func (d *derivation) declareAnonymousFunction(n *ast.Node, sc *Scope, container string) {
	name := fmt.Sprintf("<anonymous:%d:%d>", n.Range.StartLine, n.Range.StartCol)
	d.declareCapturedFunction(n, sc, container, name)
}

// declareCapturedFunction emits a Function vertex for a function_definition
// under the given name (either synthesized or taken from the binding that
// captured it).
func (d *derivation) declareCapturedFunction(n *ast.Node, sc *Scope, container, name string) string {
	m := d.b.Engine.Compute(n)
	id := d.addVertex(CategoryFunction, name, n.Range, &m)
	d.addEdge(container, id, RelationContains)
	d.produced[n] = true
	d.vertexOf[n] = id
	d.consumed[n] = true

	inner := d.table.OpenScope(d.scopeID(), sc)
	d.scopeOf[n] = inner
	d.declareParameters(n, inner)

	for _, c := range n.Children {
		d.declare(c, inner, id)
	}
	return id
}

// declareVariables handles local declarations and global assignments:
// Variable/Table/Function vertices with DEFINES from the containing scope.
// Assignments to names that already resolve are writes, not declarations.
func (d *derivation) declareVariables(n *ast.Node, sc *Scope, container string) {
	isLocal := n.Kind == "variable_declaration"

	assign := n
	if isLocal {
		if a := n.ChildOfKind("assignment_statement"); a != nil {
			d.consumed[a] = true
			assign = a
		}
	}

	varList := assign.ChildOfKind("variable_list")
	if varList == nil {
		varList = n.ChildOfKind("variable_list")
	}
	exprList := assign.ChildOfKind("expression_list")

	targets := namedChildren(varList)
	values := namedChildren(exprList)

	matched := false
	for i, target := range targets {
		var value *ast.Node
		if i < len(values) {
			value = values[i]
		}
		if d.declareOneBinding(target, value, sc, container, isLocal) {
			matched = true
		}
	}
	if matched {
		d.produced[n] = true
		if assign != n {
			d.produced[assign] = true
		}
	}

	// Values may hold nested constructs (callbacks, tables, requires).
	for _, value := range values {
		if !d.consumed[value] {
			d.declare(value, sc, container)
		}
	}
}

// declareOneBinding creates the semantic vertex for a single name = value
// pair. Reports whether a declaration (or alias) was recorded.
func (d *derivation) declareOneBinding(target, value *ast.Node, sc *Scope, container string, isLocal bool) bool {
	// Member assignment (m.f = ...): no new vertex, but alias the dotted
	// name so member resolution can find it.
	if target.Kind == "dot_index_expression" || target.Kind == "bracket_index_expression" {
		return d.declareMemberAlias(target, value, sc, container)
	}
	if target.Kind != "identifier" {
		return false
	}
	name := target.Text

	if !isLocal {
		if existing := d.table.Lookup(sc, name); existing != nil {
			return false // write to an existing binding, not a declaration
		}
	}

	switch {
	case value != nil && isRequireCall(value):
		d.declareRequire(value, sc, container)
		if module, ok := requireTarget(value); ok {
			d.table.BindImport(name, module)
		}
		id := d.addVertex(CategoryVariable, name, target.Range, nil)
		d.addEdge(container, id, RelationDefines)
		d.table.Declare(sc, &Symbol{Name: name, Category: CategoryVariable, VertexID: id})

	case value != nil && value.Kind == "function_definition":
		id := d.declareCapturedFunction(value, sc, container, name)
		d.table.Declare(sc, &Symbol{Name: name, Category: CategoryFunction, VertexID: id})

	case value != nil && value.Kind == "table_constructor":
		d.consumed[value] = true
		id := d.addVertex(CategoryTable, name, target.Range, nil)
		d.addEdge(container, id, RelationDefines)
		d.table.Declare(sc, &Symbol{Name: name, Category: CategoryTable, VertexID: id})
		// Table fields may hold function literals.
		for _, c := range value.Children {
			d.declare(c, sc, container)
		}

	default:
		id := d.addVertex(CategoryVariable, name, target.Range, nil)
		d.addEdge(container, id, RelationDefines)
		d.table.Declare(sc, &Symbol{Name: name, Category: CategoryVariable, VertexID: id})
	}
	return true
}

// declareMemberAlias records m.f = value so that later member calls to m.f
// resolve. A function literal value gets a real Function vertex under the
// dotted name.
func (d *derivation) declareMemberAlias(target, value *ast.Node, sc *Scope, container string) bool {
	dotted := nodeText(target)
	if value != nil && value.Kind == "function_definition" {
		id := d.declareCapturedFunction(value, sc, container, dotted)
		d.table.Declare(sc, &Symbol{Name: dotted, Category: CategoryFunction, VertexID: id})
		return true
	}
	if value != nil && value.Kind == "identifier" {
		if sym := d.table.Lookup(sc, value.Text); sym != nil && sym.VertexID != "" {
			d.table.Declare(sc, &Symbol{Name: dotted, Category: sym.Category, VertexID: sym.VertexID})
			return true
		}
	}
	return false
}

// declareRequire emits a Require vertex plus a REQUIRES edge from the
// importing module.
func (d *derivation) declareRequire(n *ast.Node, sc *Scope, container string) {
	d.consumed[n] = true
	module, ok := requireTarget(n)
	if !ok {
		return // dynamic require: leave unproduced
	}
	id := d.addVertex(CategoryRequire, module, n.Range, nil)
	d.addEdge(d.moduleID, id, RelationRequires)
	d.produced[n] = true
}

// declareParameters binds parameter names in the function scope. Parameters
// carry no vertex of their own, so reads of them never emit edges.
func (d *derivation) declareParameters(fn *ast.Node, sc *Scope) {
	params := fn.ChildOfKind("parameters")
	if params == nil {
		return
	}
	for _, p := range params.Children {
		if p.Kind == "identifier" {
			d.table.Declare(sc, &Symbol{Name: p.Text, Category: CategoryVariable})
		}
	}
}

// declareLoopVariables binds numeric/generic for-loop variables in the loop
// scope, again without vertices.
func (d *derivation) declareLoopVariables(forStmt *ast.Node, sc *Scope) {
	for _, clauseKind := range []string{"for_numeric_clause", "for_generic_clause"} {
		clause := forStmt.ChildOfKind(clauseKind)
		if clause == nil {
			continue
		}
		for _, c := range clause.Children {
			if c.Kind == "identifier" {
				d.table.Declare(sc, &Symbol{Name: c.Text, Category: CategoryVariable})
			}
			if c.Kind == "variable_list" {
				for _, v := range c.Children {
					if v.Kind == "identifier" {
						d.table.Declare(sc, &Symbol{Name: v.Text, Category: CategoryVariable})
					}
				}
			}
		}
	}
}

// --- Resolution pass ---

// resolve walks the tree a second time, emitting Call vertices, CALLS
// edges, and REFERENCES edges against the fully populated symbol table.
func (d *derivation) resolve(n *ast.Node, sc *Scope, container string) {
	switch {
	case n.Kind == "function_declaration" || n.Kind == "function_definition":
		inner := sc
		if s := d.scopeOf[n]; s != nil {
			inner = s
		}
		next := container
		if id := d.vertexOf[n]; id != "" {
			next = id
		}
		nameNode := functionNameNode(n)
		for _, c := range n.Children {
			if c == nameNode || c.Kind == "parameters" {
				continue
			}
			d.resolve(c, inner, next)
		}

	case n.Kind == "function_call":
		if d.consumed[n] {
			return // require call, already modeled
		}
		d.resolveCall(n, sc, container)

	case n.Kind == "variable_declaration":
		assign := n.ChildOfKind("assignment_statement")
		if assign == nil {
			return
		}
		if exprs := assign.ChildOfKind("expression_list"); exprs != nil {
			d.resolve(exprs, sc, container)
		}

	case n.Kind == "assignment_statement":
		if exprs := n.ChildOfKind("expression_list"); exprs != nil {
			d.resolve(exprs, sc, container)
		}

	case n.Kind == "dot_index_expression" || n.Kind == "method_index_expression" ||
		n.Kind == "bracket_index_expression":
		// Only the base is a read; the field name is not.
		if len(n.Children) > 0 {
			d.resolve(n.Children[0], sc, container)
		}

	case n.Kind == "identifier":
		sym := d.table.Lookup(sc, n.Text)
		if sym != nil && sym.VertexID != "" &&
			(sym.Category == CategoryVariable || sym.Category == CategoryTable) {
			d.addEdge(container, sym.VertexID, RelationReferences)
		}

	default:
		if s := d.scopeOf[n]; s != nil {
			sc = s
		}
		for _, c := range n.Children {
			d.resolve(c, sc, container)
		}
	}
}

// resolveCall emits a Call vertex for the site (CONTAINS from the enclosing
// scope vertex) and, when the callee resolves, a CALLS edge from the
// enclosing scope vertex to the definition. Unresolved callees keep the
// Call vertex but get no CALLS edge.
func (d *derivation) resolveCall(n *ast.Node, sc *Scope, container string) {
	callee := calleeNode(n)
	name := "<dynamic>"
	if callee != nil {
		name = nodeText(callee)
	}

	callID := d.addVertex(CategoryCall, name, n.Range, nil)
	d.addEdge(container, callID, RelationContains)
	d.produced[n] = true

	if target := d.resolveCallee(callee, sc); target != "" {
		d.addEdge(container, target, RelationCalls)
	}

	if args := n.ChildOfKind("arguments"); args != nil {
		for _, a := range args.Children {
			d.resolve(a, sc, container)
		}
	}
	// Member callees still read their base (m.f() reads m).
	if callee != nil && callee.Kind != "identifier" {
		d.resolve(callee, sc, container)
	}
}

// resolveCallee maps a callee node to the vertex of its definition, or ""
// when unresolved (dynamic dispatch, external library).
func (d *derivation) resolveCallee(callee *ast.Node, sc *Scope) string {
	if callee == nil {
		return ""
	}

	if callee.Kind == "identifier" {
		if sym := d.table.Lookup(sc, callee.Text); sym != nil {
			return sym.VertexID
		}
		return ""
	}

	if d.b.Options.Resolution != ResolveMember {
		return ""
	}

	// Member resolution: try the dotted name first, then the base.
	dotted := nodeText(callee)
	if callee.Kind == "method_index_expression" {
		dotted = strings.Replace(dotted, ":", ".", 1)
	}
	if sym := d.table.Lookup(sc, dotted); sym != nil {
		return sym.VertexID
	}
	if len(callee.Children) > 0 && callee.Children[0].Kind == "identifier" {
		if sym := d.table.Lookup(sc, callee.Children[0].Text); sym != nil {
			return sym.VertexID
		}
	}
	return ""
}

// --- Shared helpers ---

func (d *derivation) addVertex(cat Category, name string, rng ast.Range, m *metrics.Metrics) string {
	id := fmt.Sprintf("%s:k%d:%s", d.fileID, d.vertexCounter, cat)
	d.vertexCounter++
	d.vertices = append(d.vertices, SemanticVertex{
		ID:       id,
		Category: cat,
		Name:     name,
		File:     d.fileID,
		Range:    rng,
		Metrics:  m,
	})
	return id
}

func (d *derivation) addEdge(from, to string, rel Relation) {
	d.edges = append(d.edges, SemanticEdge{
		From:     from,
		To:       to,
		Relation: rel,
		File:     d.fileID,
	})
}

func (d *derivation) scopeID() string {
	id := fmt.Sprintf("%s:scope%d", d.fileID, d.scopeCounter)
	d.scopeCounter++
	return id
}

// moduleName derives the module's display name from the file id.
func moduleName(fileID string) string {
	base := filepath.Base(fileID)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// functionNameNode returns the declared name node of a function, or nil for
// anonymous definitions.
func functionNameNode(fn *ast.Node) *ast.Node {
	for _, c := range fn.Children {
		switch c.Kind {
		case "identifier", "dot_index_expression", "method_index_expression":
			return c
		case "parameters", "block":
			return nil // name would precede these
		}
	}
	return nil
}

// calleeNode returns the called expression of a function_call.
func calleeNode(call *ast.Node) *ast.Node {
	for _, c := range call.Children {
		if c.Kind == "arguments" {
			break
		}
		switch c.Kind {
		case "identifier", "dot_index_expression", "method_index_expression",
			"bracket_index_expression", "parenthesized_expression":
			return c
		}
	}
	return nil
}

// isRequireCall reports whether n is a call to require.
func isRequireCall(n *ast.Node) bool {
	if n.Kind != "function_call" {
		return false
	}
	callee := calleeNode(n)
	return callee != nil && callee.Kind == "identifier" && callee.Text == "require"
}

// requireTarget extracts the literal module name from a require call.
func requireTarget(n *ast.Node) (string, bool) {
	if content := n.FirstOfKind("string_content"); content != nil {
		return content.Text, true
	}
	return "", false
}

// namedChildren returns the non-token children of a list node (skipping
// separators), or nil when the node is nil.
func namedChildren(n *ast.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	var out []*ast.Node
	for _, c := range n.Children {
		if c.IsLeaf() && (c.Kind == "," || c.Kind == "=") {
			continue
		}
		out = append(out, c)
	}
	return out
}

// nodeText reconstructs the source text of a small node (names, callees)
// by concatenating its leaf tokens.
func nodeText(n *ast.Node) string {
	if n == nil {
		return ""
	}
	if n.IsLeaf() {
		return n.Text
	}
	var sb strings.Builder
	n.Walk(func(node *ast.Node) bool {
		if node.IsLeaf() {
			sb.WriteString(node.Text)
		}
		return true
	})
	return sb.String()
}
