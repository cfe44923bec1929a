// Package symboltable implements the per-file hierarchical scope tree
// described in spec.md §3 ("Symbol table (per file)") and §4.3. Ordering
// invariants (insertion order within a scope, parents preceding children in
// getAllSymbols) are delegated to github.com/emirpasic/gods'
// linkedhashmap/arraylist rather than hand-rolled bookkeeping, since
// insertion order is itself a tested invariant here, not an incidental
// detail.
package symboltable

import (
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
)

// Scope is one node in a file's lexical scope tree. The file scope is the
// root and has no parent; every other scope has exactly one (invariant I1).
type Scope struct {
	// Owner is the BlockScope symbol that this Scope corresponds to (nil
	// only for... never: even the file scope owns a synthetic BlockScope
	// symbol with ScopeType == core.ScopeFile, so parentId resolution in
	// child scopes always has a concrete target).
	Owner *symbol.Symbol

	Parent *Scope

	// names is an insertion-ordered multimap: name -> *arraylist.List of
	// *symbol.Symbol sharing that name within this scope: overloads, and
	// also duplicates the listener has already reported as errors, which
	// are still added.
	names *linkedhashmap.Map

	// children is the ordered list of nested scopes, in the order they
	// were entered.
	children *arraylist.List
}

func newScope(owner *symbol.Symbol, parent *Scope) *Scope {
	return &Scope{
		Owner:    owner,
		Parent:   parent,
		names:    linkedhashmap.New(),
		children: arraylist.New(),
	}
}

// Children returns the ordered list of child scopes.
func (s *Scope) Children() []*Scope {
	out := make([]*Scope, 0, s.children.Size())
	for _, v := range s.children.Values() {
		out = append(out, v.(*Scope))
	}
	return out
}

// Names returns the scope's declared names in first-declaration order.
func (s *Scope) Names() []string {
	out := make([]string, 0, s.names.Size())
	for _, k := range s.names.Keys() {
		out = append(out, k.(string))
	}
	return out
}

// SymbolsNamed returns every symbol directly declared in this scope under
// the given name (overloads included), in declaration order. The lookup is
// case-insensitive per Apex semantics, even though each returned Symbol's
// Name keeps its original spelling.
func (s *Scope) SymbolsNamed(name string) []*symbol.Symbol {
	key := foldKey(name)
	v, found := s.names.Get(key)
	if !found {
		return nil
	}
	list := v.(*arraylist.List)
	out := make([]*symbol.Symbol, 0, list.Size())
	for _, sv := range list.Values() {
		out = append(out, sv.(*symbol.Symbol))
	}
	return out
}

func (s *Scope) addLocal(sym *symbol.Symbol) {
	key := foldKey(sym.Name)
	v, found := s.names.Get(key)
	var list *arraylist.List
	if found {
		list = v.(*arraylist.List)
	} else {
		list = arraylist.New()
		s.names.Put(key, list)
	}
	list.Add(sym)
}

func foldKey(name string) string {
	// Apex is case-insensitive; fold to a canonical form for map keys
	// while the Symbol itself keeps the original casing.
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

// ScopeTypeFor maps a declaration kind to the ScopeType its body
// introduces, used by the listener when it enters a declaration's body.
func ScopeTypeFor(kind core.SymbolKind) core.ScopeType {
	return scopeTypeFor(kind)
}

func scopeTypeFor(kind core.SymbolKind) core.ScopeType {
	switch kind {
	case core.KindClass, core.KindInterface, core.KindEnum:
		return core.ScopeClass
	case core.KindTrigger:
		return core.ScopeTrigger
	case core.KindMethod, core.KindConstructor:
		return core.ScopeMethod
	default:
		return core.ScopeBlock
	}
}
