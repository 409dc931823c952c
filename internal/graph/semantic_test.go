package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/luagraph/internal/ast"
)

// --- tree-building helpers ---

func localDecl(name string, value *ast.Node) *ast.Node {
	exprs := node("expression_list")
	if value != nil {
		exprs.Children = append(exprs.Children, value)
	}
	return node("variable_declaration",
		leaf("local", "local"),
		node("assignment_statement",
			node("variable_list", leaf("identifier", name)),
			leaf("=", "="),
			exprs,
		),
	)
}

func call(calleeName string, args ...*ast.Node) *ast.Node {
	arguments := node("arguments", leaf("(", "("))
	arguments.Children = append(arguments.Children, args...)
	arguments.Children = append(arguments.Children, leaf(")", ")"))
	return node("function_call", leaf("identifier", calleeName), arguments)
}

func namedFn(name string, body ...*ast.Node) *ast.Node {
	return node("function_declaration",
		leaf("function", "function"),
		leaf("identifier", name),
		node("parameters", leaf("(", "("), leaf("identifier", "a"), leaf(")", ")")),
		node("block", body...),
		leaf("end", "end"),
	)
}

func anonFn(body ...*ast.Node) *ast.Node {
	return node("function_definition",
		leaf("function", "function"),
		node("parameters", leaf("(", "("), leaf(")", ")")),
		node("block", body...),
		leaf("end", "end"),
	)
}

func luaString(content string) *ast.Node {
	return node("string",
		leaf("string_start", `"`),
		leaf("string_content", content),
		leaf("string_end", `"`),
	)
}

// --- assertion helpers ---

func findVertex(t *testing.T, vertices []SemanticVertex, cat Category, name string) SemanticVertex {
	t.Helper()
	for _, v := range vertices {
		if v.Category == cat && v.Name == name {
			return v
		}
	}
	t.Fatalf("no %s vertex named %q", cat, name)
	return SemanticVertex{}
}

func hasEdge(edges []SemanticEdge, from, to string, rel Relation) bool {
	for _, e := range edges {
		if e.From == from && e.To == to && e.Relation == rel {
			return true
		}
	}
	return false
}

func TestDerive_ModuleAndContainment(t *testing.T) {
	b := NewSemanticBuilder()

	root := node("chunk", namedFn("add"))
	vertices, edges, unsupported := b.Derive(root, "lib/math.lua")
	require.Empty(t, unsupported)

	mod := findVertex(t, vertices, CategoryModule, "math")
	addFn := findVertex(t, vertices, CategoryFunction, "add")

	require.NotNil(t, addFn.Metrics, "functions carry metrics")
	assert.Equal(t, 1, addFn.Metrics.Cyclomatic)
	assert.Nil(t, mod.Metrics, "only functions carry metrics")
	assert.True(t, hasEdge(edges, mod.ID, addFn.ID, RelationContains))
}

func TestDerive_CallBeforeDeclarationResolves(t *testing.T) {
	b := NewSemanticBuilder()

	// Call site precedes the declaration in the file.
	root := node("chunk",
		call("add", leaf("number", "1")),
		namedFn("add"),
	)

	vertices, edges, _ := b.Derive(root, "a.lua")
	mod := findVertex(t, vertices, CategoryModule, "a")
	addFn := findVertex(t, vertices, CategoryFunction, "add")
	callSite := findVertex(t, vertices, CategoryCall, "add")

	assert.True(t, hasEdge(edges, mod.ID, addFn.ID, RelationCalls),
		"declarations are collected before any call is resolved")
	assert.True(t, hasEdge(edges, mod.ID, callSite.ID, RelationContains))
}

func TestDerive_UnresolvedCallKeepsVertex(t *testing.T) {
	b := NewSemanticBuilder()

	root := node("chunk", call("print", leaf("number", "1")))
	vertices, edges, _ := b.Derive(root, "a.lua")

	findVertex(t, vertices, CategoryCall, "print")
	for _, e := range edges {
		assert.NotEqual(t, RelationCalls, e.Relation,
			"an unbound callee yields no CALLS edge")
	}
}

func TestDerive_VariablesAndReferences(t *testing.T) {
	b := NewSemanticBuilder()

	root := node("chunk",
		localDecl("x", leaf("number", "1")),
		call("print", leaf("identifier", "x")),
	)

	vertices, edges, _ := b.Derive(root, "a.lua")
	mod := findVertex(t, vertices, CategoryModule, "a")
	x := findVertex(t, vertices, CategoryVariable, "x")

	assert.True(t, hasEdge(edges, mod.ID, x.ID, RelationDefines))
	assert.True(t, hasEdge(edges, mod.ID, x.ID, RelationReferences),
		"reading x in the call arguments references its vertex")
}

func TestDerive_TableConstructor(t *testing.T) {
	b := NewSemanticBuilder()

	root := node("chunk",
		localDecl("M", node("table_constructor", leaf("{", "{"), leaf("}", "}"))),
	)

	vertices, edges, _ := b.Derive(root, "a.lua")
	mod := findVertex(t, vertices, CategoryModule, "a")
	m := findVertex(t, vertices, CategoryTable, "M")
	assert.True(t, hasEdge(edges, mod.ID, m.ID, RelationDefines))
}

func TestDerive_Require(t *testing.T) {
	b := NewSemanticBuilder()

	requireCall := node("function_call",
		leaf("identifier", "require"),
		node("arguments", leaf("(", "("), luaString("lib.util"), leaf(")", ")")),
	)
	root := node("chunk", localDecl("util", requireCall))

	vertices, edges, unsupported := b.Derive(root, "a.lua")
	require.Empty(t, unsupported)

	mod := findVertex(t, vertices, CategoryModule, "a")
	req := findVertex(t, vertices, CategoryRequire, "lib.util")
	alias := findVertex(t, vertices, CategoryVariable, "util")

	assert.True(t, hasEdge(edges, mod.ID, req.ID, RelationRequires))
	assert.True(t, hasEdge(edges, mod.ID, alias.ID, RelationDefines))

	for _, v := range vertices {
		assert.NotEqual(t, CategoryCall, v.Category,
			"a require expression is not modeled as a call site")
	}
}

func TestDerive_AnonymousFunctionCapturedByLocal(t *testing.T) {
	b := NewSemanticBuilder()

	root := node("chunk",
		localDecl("h", anonFn()),
		call("h"),
	)

	vertices, edges, _ := b.Derive(root, "a.lua")
	mod := findVertex(t, vertices, CategoryModule, "a")
	h := findVertex(t, vertices, CategoryFunction, "h")

	require.NotNil(t, h.Metrics)
	assert.True(t, hasEdge(edges, mod.ID, h.ID, RelationCalls))
}

func TestDerive_AnonymousCallbackGetsPlaceholderName(t *testing.T) {
	b := NewSemanticBuilder()

	cb := anonFn()
	cb.Range.StartLine = 7
	cb.Range.StartCol = 12
	root := node("chunk", call("each", cb))

	vertices, _, _ := b.Derive(root, "a.lua")
	findVertex(t, vertices, CategoryFunction, "<anonymous:7:12>")
}

func TestDerive_ParametersHaveNoVertices(t *testing.T) {
	b := NewSemanticBuilder()

	// The parameter a is read inside the body.
	root := node("chunk",
		namedFn("id", node("return_statement", leaf("return", "return"),
			node("expression_list", leaf("identifier", "a")))),
	)

	vertices, edges, _ := b.Derive(root, "a.lua")
	for _, v := range vertices {
		assert.NotEqual(t, CategoryVariable, v.Category, "parameters carry no vertex")
	}
	for _, e := range edges {
		assert.NotEqual(t, RelationReferences, e.Relation,
			"parameter reads emit no edges")
	}
}

func TestDerive_MemberResolution(t *testing.T) {
	memberAssign := node("assignment_statement",
		node("variable_list",
			node("dot_index_expression", leaf("identifier", "M"), leaf(".", "."), leaf("identifier", "f")),
		),
		leaf("=", "="),
		node("expression_list", anonFn()),
	)
	memberCall := node("function_call",
		node("dot_index_expression", leaf("identifier", "M"), leaf(".", "."), leaf("identifier", "f")),
		node("arguments", leaf("(", "("), leaf(")", ")")),
	)
	build := func() *ast.Node {
		return node("chunk",
			localDecl("M", node("table_constructor", leaf("{", "{"), leaf("}", "}"))),
			memberAssign,
			memberCall,
		)
	}

	t.Run("member strategy resolves dotted callees", func(t *testing.T) {
		b := NewSemanticBuilder()
		b.Options.Resolution = ResolveMember

		vertices, edges, _ := b.Derive(build(), "a.lua")
		mod := findVertex(t, vertices, CategoryModule, "a")
		mf := findVertex(t, vertices, CategoryFunction, "M.f")
		assert.True(t, hasEdge(edges, mod.ID, mf.ID, RelationCalls))
	})

	t.Run("lexical strategy leaves them unresolved", func(t *testing.T) {
		b := NewSemanticBuilder()

		vertices, edges, _ := b.Derive(build(), "a.lua")
		mf := findVertex(t, vertices, CategoryFunction, "M.f")
		for _, e := range edges {
			if e.Relation == RelationCalls {
				assert.NotEqual(t, mf.ID, e.To)
			}
		}
	})
}

func TestDerive_UnrecognizedConstructReported(t *testing.T) {
	b := NewSemanticBuilder()

	// A function declaration with no resolvable name matches no rule.
	nameless := node("function_declaration",
		leaf("function", "function"),
		node("parameters", leaf("(", "("), leaf(")", ")")),
		node("block"),
		leaf("end", "end"),
	)
	root := node("chunk", nameless)

	_, _, unsupported := b.Derive(root, "a.lua")
	require.Len(t, unsupported, 1)
	assert.Contains(t, unsupported[0], "function_declaration")
	assert.Contains(t, unsupported[0], "a.lua")
}

func TestDerive_Deterministic(t *testing.T) {
	b := NewSemanticBuilder()

	root := node("chunk",
		localDecl("x", leaf("number", "1")),
		namedFn("f", call("g")),
		namedFn("g"),
		call("f", leaf("identifier", "x")),
	)

	v1, e1, _ := b.Derive(root, "a.lua")
	v2, e2, _ := b.Derive(root, "a.lua")
	assert.Equal(t, v1, v2)
	assert.Equal(t, e1, e2)
}

func TestDerive_NestedCallContainment(t *testing.T) {
	b := NewSemanticBuilder()

	root := node("chunk",
		namedFn("f", call("g")),
		namedFn("g"),
	)

	vertices, edges, _ := b.Derive(root, "a.lua")
	f := findVertex(t, vertices, CategoryFunction, "f")
	g := findVertex(t, vertices, CategoryFunction, "g")
	site := findVertex(t, vertices, CategoryCall, "g")

	assert.True(t, hasEdge(edges, f.ID, g.ID, RelationCalls),
		"the CALLS edge starts at the enclosing function")
	assert.True(t, hasEdge(edges, f.ID, site.ID, RelationContains))
}

func TestDeclarationRuleTable(t *testing.T) {
	require.NotEmpty(t, declarationRules, "recognition table is populated before any Derive call")

	var names []string
	for _, r := range declarationRules {
		names = append(names, r.name)
	}
	assert.Equal(t,
		[]string{"function-declaration", "local-declaration", "require-call", "anonymous-function"},
		names, "rules run most specific first")
}
