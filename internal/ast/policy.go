package ast

// KindPolicy decides which node kinds survive into the structural graph.
// Keep wins over Drop when a kind appears in both sets; kinds in neither
// set fall back to DefaultKeep.
type KindPolicy struct {
	Keep        map[string]bool
	Drop        map[string]bool
	DefaultKeep bool
}

// Keeps reports whether nodes of the given kind produce structural vertices.
func (p KindPolicy) Keeps(kind string) bool {
	if p.Keep[kind] {
		return true
	}
	if p.Drop[kind] {
		return false
	}
	return p.DefaultKeep
}

// NewKindPolicy builds a KindPolicy from explicit keep and drop lists.
func NewKindPolicy(keep, drop []string, defaultKeep bool) KindPolicy {
	p := KindPolicy{
		Keep:        make(map[string]bool, len(keep)),
		Drop:        make(map[string]bool, len(drop)),
		DefaultKeep: defaultKeep,
	}
	for _, k := range keep {
		p.Keep[k] = true
	}
	for _, k := range drop {
		p.Drop[k] = true
	}
	return p
}

// DefaultDropKinds lists punctuation token kinds that never carry structural
// information. The chunk root is always kept regardless of policy.
var DefaultDropKinds = []string{
	"(", ")", "{", "}", "[", "]", ",", ";",
}

// DefaultPolicy returns the default structural drop policy: keep everything
// except punctuation tokens.
func DefaultPolicy() KindPolicy {
	return NewKindPolicy(nil, DefaultDropKinds, true)
}
