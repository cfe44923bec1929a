package symboltable

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/reference"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
)

// IDMode selects how symbol.ID values are minted for a table.
type IDMode int

const (
	// IDModeSequential assigns a monotonically increasing uint64 per file.
	// This is the default, fast path used by a single compile.
	IDModeSequential IDMode = iota

	// IDModeCrossProcess derives each id from a fresh random
	// github.com/google/uuid, so ids do not repeat across files or
	// processes. Ids are not reproducible: compiling the same file again
	// mints new ids for the same symbols. See spec.md §3's open point on
	// ULID-style ids.
	IDModeCrossProcess
)

// SymbolTable is the per-file hierarchical scope tree described in
// spec.md §3 and §4.3. It is built by exactly one listener pass and is
// read-only once handed to a GlobalSymbolRegistry (spec.md §5, "Shared
// resources").
type SymbolTable struct {
	FilePath string
	IDMode   IDMode

	file    *Scope
	current *Scope

	byID   map[symbol.ID]*symbol.Symbol
	byKey  map[keyTuple][]*symbol.Symbol
	nextID uint64

	refs []reference.Entry
}

type keyTuple struct {
	prefix core.SymbolKind
	path   string
	name   string
}

// New creates an empty SymbolTable for filePath, already containing a file
// scope. The file scope's Owner is a synthetic BlockScope symbol with
// ScopeType == core.ScopeFile and the table's first minted id (1 in
// IDModeSequential), so every other scope's Owner.ParentID
// ultimately resolves to a real, addressable symbol (I2).
func New(filePath string, mode IDMode) *SymbolTable {
	t := &SymbolTable{
		FilePath: filePath,
		IDMode:   mode,
		byID:     make(map[symbol.ID]*symbol.Symbol),
		byKey:    make(map[keyTuple][]*symbol.Symbol),
	}

	fileSym := symbol.New(core.KindBlockScope, "", core.Location{})
	fileSym.ScopeType = core.ScopeFile
	fileSym.ID = t.mintID()
	fileSym.HasParent = false
	t.byID[fileSym.ID] = fileSym

	t.file = newScope(fileSym, nil)
	t.current = t.file
	return t
}

func (t *SymbolTable) mintID() symbol.ID {
	if t.IDMode == IDModeCrossProcess {
		u := uuid.New()
		// Pack the low 64 bits of the UUID; collisions within one file's
		// lifetime are astronomically unlikely. A collision is not
		// detected: the later symbol replaces the earlier one in byID.
		hi := uint64(0)
		for _, b := range u[8:] {
			hi = hi<<8 | uint64(b)
		}
		return symbol.ID(hi)
	}
	t.nextID++
	return symbol.ID(t.nextID)
}

// FileScope returns the root scope.
func (t *SymbolTable) FileScope() *Scope { return t.file }

// CurrentScope returns the scope the listener is currently positioned in.
func (t *SymbolTable) CurrentScope() *Scope { return t.current }

// EnterScope pushes a new BlockScope as a child of the current scope and
// makes it current, returning the new scope's own BlockScope symbol so
// callers can set it as ParentID on members.
//
// declSymbolID, when non-zero, is the id of the declaration this scope
// bodies (a class/interface/enum/trigger/method/constructor symbol); the
// new BlockScope's own ParentID is set to declSymbolID rather than to the
// enclosing scope, matching spec.md §4.5's scope discipline ("whose
// parentId is the type symbol's id"). Pass 0 for scopes that don't body a
// declaration (plain nested blocks), in which case ParentID falls back to
// the enclosing scope's owner id.
func (t *SymbolTable) EnterScope(name string, scopeType core.ScopeType, declSymbolID symbol.ID) *symbol.Symbol {
	blockSym := symbol.New(core.KindBlockScope, name, core.Location{})
	blockSym.ScopeType = scopeType
	blockSym.ID = t.mintID()
	blockSym.HasParent = true
	if declSymbolID != 0 {
		blockSym.ParentID = declSymbolID
	} else {
		blockSym.ParentID = t.current.Owner.ID
	}
	t.byID[blockSym.ID] = blockSym

	child := newScope(blockSym, t.current)
	t.current.children.Add(child)
	t.current = child
	return blockSym
}

// ExitScope pops to the parent scope. It panics only when called on the
// file scope, per spec.md §4.3 ("panics only if the file scope is popped");
// any other structural mismatch is the listener's responsibility to detect
// via its own scope-stack bookkeeping (spec.md §4.5 exit handlers).
func (t *SymbolTable) ExitScope() {
	if t.current.Parent == nil {
		panic("symboltable: cannot exit the file scope")
	}
	t.current = t.current.Parent
}

// AddSymbol inserts sym into the current scope's name-multimap, assigns it
// an id if it doesn't have one yet, sets its ParentID to the current
// scope's BlockScope id and its Key to (Kind, enclosing type path, Name),
// and registers it in the id and key indexes.
func (t *SymbolTable) AddSymbol(sym *symbol.Symbol) {
	if sym.ID == 0 {
		sym.ID = t.mintID()
	}
	sym.ParentID = t.current.Owner.ID
	sym.HasParent = true
	sym.Key.Prefix = sym.Kind
	sym.Key.Name = sym.Name
	sym.Key.Path = t.currentPath()
	t.current.addLocal(sym)
	t.byID[sym.ID] = sym

	kt := keyTupleFor(sym.Key)
	t.byKey[kt] = append(t.byKey[kt], sym)
}

// currentPath returns the outer-to-inner list of enclosing *type* names,
// derived by walking up scopes and keeping only class/interface/enum/
// trigger-bearing ones.
func (t *SymbolTable) currentPath() []string {
	var names []string
	for s := t.current; s != nil; s = s.Parent {
		if s.Owner.ScopeType == core.ScopeClass || s.Owner.ScopeType == core.ScopeTrigger {
			if s.Owner.Name != "" {
				names = append([]string{s.Owner.Name}, names...)
			}
		}
	}
	return names
}

func keyTupleFor(k core.Key) keyTuple {
	path := ""
	for _, p := range k.Path {
		path += p + "."
	}
	return keyTuple{prefix: k.Prefix, path: path, name: foldKey(k.Name)}
}

// Lookup walks from the current scope outward and returns the
// first-registered symbol named name in the nearest enclosing scope that
// declares it. Overload-aware callers should use LookupAll instead.
func (t *SymbolTable) Lookup(name string) (*symbol.Symbol, bool) {
	for s := t.current; s != nil; s = s.Parent {
		if syms := s.SymbolsNamed(name); len(syms) > 0 {
			return syms[0], true
		}
	}
	return nil, false
}

// LookupAll returns every same-named symbol declared in the nearest
// enclosing scope that has any, in declaration order (the full overload
// set), or nil if name is not visible from the current scope.
func (t *SymbolTable) LookupAll(name string) []*symbol.Symbol {
	for s := t.current; s != nil; s = s.Parent {
		if syms := s.SymbolsNamed(name); len(syms) > 0 {
			return syms
		}
	}
	return nil
}

// LookupByKey returns every symbol registered under the exact
// (prefix, path, name) tuple, leaving overload disambiguation to the
// caller.
func (t *SymbolTable) LookupByKey(k core.Key) []*symbol.Symbol {
	return t.byKey[keyTupleFor(k)]
}

// LookupByID returns the symbol with the given id, if any exists in this
// table.
func (t *SymbolTable) LookupByID(id symbol.ID) (*symbol.Symbol, bool) {
	s, ok := t.byID[id]
	return s, ok
}

// GetAllSymbols performs a depth-first traversal of the scope tree,
// yielding every symbol in declaration order with parents preceding their
// children, per the ordering guarantee in spec.md §4.3.
func (t *SymbolTable) GetAllSymbols() []*symbol.Symbol {
	var out []*symbol.Symbol
	var walk func(s *Scope)
	walk = func(s *Scope) {
		for _, name := range s.Names() {
			out = append(out, s.SymbolsNamed(name)...)
		}
		for _, c := range s.Children() {
			out = append(out, c.Owner)
			walk(c)
		}
	}
	out = append(out, t.file.Owner)
	walk(t.file)
	return out
}

// GetAllReferences returns the per-file reference list collected by the
// listener's integrated reference collector (spec.md §4.6); references are
// stored on the table, never inline on symbols.
func (t *SymbolTable) GetAllReferences() []reference.Entry {
	return t.refs
}

// AddReference appends a reference in document order.
func (t *SymbolTable) AddReference(r reference.Entry) {
	t.refs = append(t.refs, r)
}

// String renders a brief tree dump, used in tests and CLI debugging output.
func (t *SymbolTable) String() string {
	return dump(t.file, 0)
}

func dump(s *Scope, depth int) string {
	out := ""
	for i := 0; i < depth; i++ {
		out += "  "
	}
	out += fmt.Sprintf("scope(%s:%s)\n", s.Owner.ScopeType, s.Owner.Name)
	for _, c := range s.Children() {
		out += dump(c, depth+1)
	}
	return out
}
