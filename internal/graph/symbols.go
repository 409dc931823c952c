package graph

// Symbol records one declaration visible to name resolution, pointing at
// the semantic vertex created for it (empty for parameters, which carry no
// vertex of their own).
type Symbol struct {
	Name     string
	Category Category
	VertexID string
}

// Scope is one lexical scope with a link to its parent. Lookups walk the
// parent chain bottom-up.
type Scope struct {
	ID      string
	Parent  *Scope
	Symbols map[string]*Symbol
}

// SymbolTable holds every scope of one file plus the require-import
// bindings (local alias -> module name). It is filled in the declaration
// pass and read in the resolution pass, so calls to functions declared
// later in the file still resolve.
type SymbolTable struct {
	scopes  map[string]*Scope
	imports map[string]string
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		scopes:  make(map[string]*Scope),
		imports: make(map[string]string),
	}
}

// OpenScope creates a scope under parent (nil for the file scope).
func (t *SymbolTable) OpenScope(id string, parent *Scope) *Scope {
	s := &Scope{
		ID:      id,
		Parent:  parent,
		Symbols: make(map[string]*Symbol),
	}
	t.scopes[id] = s
	return s
}

// Scope returns a previously opened scope by id, or nil.
func (t *SymbolTable) Scope(id string) *Scope {
	return t.scopes[id]
}

// Declare binds a name in the given scope. A redeclaration in the same
// scope shadows the earlier symbol, matching Lua's local semantics.
func (t *SymbolTable) Declare(scope *Scope, sym *Symbol) {
	scope.Symbols[sym.Name] = sym
}

// Lookup resolves a name from scope outward through the parent chain.
// Returns nil when the name is unbound (dynamic or external).
func (t *SymbolTable) Lookup(scope *Scope, name string) *Symbol {
	for s := scope; s != nil; s = s.Parent {
		if sym, ok := s.Symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// BindImport records that a local alias names a required module.
func (t *SymbolTable) BindImport(alias, module string) {
	t.imports[alias] = module
}

// ImportOf returns the module name bound to a local alias, if any.
func (t *SymbolTable) ImportOf(alias string) (string, bool) {
	m, ok := t.imports[alias]
	return m, ok
}
