// Package registry implements the Global Symbol Registry described in
// spec.md §4.7: a cross-file FQN index with an ambiguity set and
// bidirectional file↔name maps, federating the per-file SymbolTables the
// listener produces into one process-wide view.
package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
	"github.com/forcedotcom/apex-semantic-core/internal/symboltable"
)

// NamespaceContext classifies where a candidate's declaring file lives,
// feeding both the default base confidence and the scoring formula's
// "isCommonOperation" boost.
type NamespaceContext int

const (
	NamespaceUser NamespaceContext = iota
	NamespaceManaged
	NamespaceBuiltin
)

// defaultBaseConfidence assigns each NamespaceContext its starting score
// before resolveByName's additive terms apply. User-declared symbols are
// trusted most; built-ins carry the lowest base but make it up via the
// isCommonOperation boost spec.md §4.7 calls out explicitly.
func defaultBaseConfidence(ctx NamespaceContext) float64 {
	switch ctx {
	case NamespaceUser:
		return 1.0
	case NamespaceManaged:
		return 0.7
	default:
		return 0.5
	}
}

// Candidate records one symbol known under a possibly-ambiguous simple
// name, plus the usage statistics the scoring formula consumes.
type Candidate struct {
	Symbol    *symbol.Symbol
	FilePath  string
	Namespace NamespaceContext

	BaseConfidence float64
	UsageCount     int
	LastUsed       time.Time
}

// AmbiguousEntry is the simpleName → candidates record from spec.md §3.
type AmbiguousEntry struct {
	Candidates       []*Candidate
	DefaultCandidate *Candidate
}

// UsagePattern is the shape of the expression a name was seen in, one of
// the context fields resolveByName accepts per spec.md §4.7.
type UsagePattern int

const (
	UsageMethodCall UsagePattern = iota
	UsageFieldAccess
	UsageTypeReference
)

// ResolveContext narrows a resolveByName query, per spec.md §4.7.
type ResolveContext struct {
	ExpectedNamespace *core.Namespace
	IsCommonOperation bool
	CurrentFile       string
	UsagePattern      UsagePattern
}

// Registry is the process-wide symbol index, federating per-file
// SymbolTables registered via RegisterFile. It is safe for concurrent
// use; per spec.md §5 ("Registry, Graph, file maps: exclusive mutation;
// shared read"), all mutation goes through a single write lock.
type Registry struct {
	mu sync.RWMutex

	tables map[string]*symboltable.SymbolTable

	byFQN    map[string]*symbol.Symbol
	fqnOwner map[string]string // fqn -> owning file path

	ambiguous map[string]*AmbiguousEntry // foldKey(simpleName) -> entry

	fileNames map[string]map[string]struct{} // filePath -> set of names it contributed
	nameFiles map[string]map[string]struct{} // foldKey(name) -> set of files declaring it

	alwaysAmbiguous map[string]struct{} // pre-populated names (built-ins) that are never unambiguous

	lastTouched map[string]time.Time // filePath -> last registerFile/resolve touch, for LRU eviction
	pinned      map[string]int       // filePath -> live-reference count; never evicted while > 0

	maxFiles      int
	evictionHints []string
}

// New creates an empty Registry. maxFiles <= 0 disables the soft eviction
// cap.
func New(maxFiles int) *Registry {
	return &Registry{
		tables:          make(map[string]*symboltable.SymbolTable),
		byFQN:           make(map[string]*symbol.Symbol),
		fqnOwner:        make(map[string]string),
		ambiguous:       make(map[string]*AmbiguousEntry),
		fileNames:       make(map[string]map[string]struct{}),
		nameFiles:       make(map[string]map[string]struct{}),
		alwaysAmbiguous: make(map[string]struct{}),
		lastTouched:     make(map[string]time.Time),
		pinned:          make(map[string]int),
		maxFiles:        maxFiles,
	}
}

// SetAlwaysAmbiguous marks names (case-insensitive) that must always
// resolve through the ambiguous map even on their first registration —
// used for built-ins like "System" and "String" that are expected to
// collide with user declarations of the same simple name.
func (r *Registry) SetAlwaysAmbiguous(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.alwaysAmbiguous[foldKey(n)] = struct{}{}
	}
}

// Pin prevents path from being evicted by RegisterFile's soft cap while a
// caller holds a live reference to its SymbolTable. Unpin must be called
// exactly once per Pin.
func (r *Registry) Pin(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pinned[path]++
}

// Unpin releases one Pin on path.
func (r *Registry) Unpin(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pinned[path] > 0 {
		r.pinned[path]--
		if r.pinned[path] == 0 {
			delete(r.pinned, path)
		}
	}
}

// DrainEvictionHints returns and clears the paths evicted since the last
// drain, for the resolver to record as reload hints (spec.md §4.7).
func (r *Registry) DrainEvictionHints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	hints := r.evictionHints
	r.evictionHints = nil
	return hints
}

// RegisterFile registers every non-scope symbol in table under path,
// idempotently: if path is already registered, it is unregistered first
// (spec.md §4.7, "Lifecycle").
func (r *Registry) RegisterFile(path string, table *symboltable.SymbolTable) error {
	if table == nil {
		return fmt.Errorf("registry: nil table for %q", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[path]; exists {
		r.unregisterLocked(path)
	}

	r.tables[path] = table
	r.lastTouched[path] = time.Now()

	for _, sym := range table.GetAllSymbols() {
		if sym.Kind == core.KindBlockScope {
			continue
		}
		r.registerSymbolLocked(path, sym)
	}

	r.evictIfNeededLocked()
	return nil
}

func (r *Registry) registerSymbolLocked(path string, sym *symbol.Symbol) {
	fqn := fqnFor(sym)
	key := foldKey(sym.Name)

	r.recordNameLocked(path, key)

	if entry, ok := r.ambiguous[key]; ok {
		r.addCandidateLocked(entry, sym, path)
		return
	}

	if _, alwaysAmb := r.alwaysAmbiguous[key]; alwaysAmb {
		entry := &AmbiguousEntry{}
		r.ambiguous[key] = entry
		r.addCandidateLocked(entry, sym, path)
		return
	}

	if existing, conflict := r.byFQN[fqn]; conflict {
		owner := r.fqnOwner[fqn]
		delete(r.byFQN, fqn)
		delete(r.fqnOwner, fqn)

		entry := &AmbiguousEntry{}
		r.ambiguous[key] = entry
		r.addCandidateLocked(entry, existing, owner)
		r.addCandidateLocked(entry, sym, path)
		return
	}

	r.byFQN[fqn] = sym
	r.fqnOwner[fqn] = path
}

func (r *Registry) addCandidateLocked(entry *AmbiguousEntry, sym *symbol.Symbol, path string) {
	ns := NamespaceUser
	c := &Candidate{
		Symbol:         sym,
		FilePath:       path,
		Namespace:      ns,
		BaseConfidence: defaultBaseConfidence(ns),
		LastUsed:       time.Now(),
	}
	entry.Candidates = append(entry.Candidates, c)
	if entry.DefaultCandidate == nil {
		entry.DefaultCandidate = c
	}
}

func (r *Registry) recordNameLocked(path, key string) {
	if r.fileNames[path] == nil {
		r.fileNames[path] = make(map[string]struct{})
	}
	r.fileNames[path][key] = struct{}{}

	if r.nameFiles[key] == nil {
		r.nameFiles[key] = make(map[string]struct{})
	}
	r.nameFiles[key][path] = struct{}{}
}

// Unregister removes every registration owned by path (I6, I8).
func (r *Registry) Unregister(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(path)
}

func (r *Registry) unregisterLocked(path string) {
	for fqn, owner := range r.fqnOwner {
		if owner == path {
			delete(r.byFQN, fqn)
			delete(r.fqnOwner, fqn)
		}
	}

	for key, entry := range r.ambiguous {
		kept := entry.Candidates[:0]
		for _, c := range entry.Candidates {
			if c.FilePath != path {
				kept = append(kept, c)
			}
		}
		entry.Candidates = kept
		if len(entry.Candidates) == 0 {
			delete(r.ambiguous, key)
			continue
		}
		if entry.DefaultCandidate != nil && entry.DefaultCandidate.FilePath == path {
			entry.DefaultCandidate = entry.Candidates[0]
		}
	}

	for key := range r.fileNames[path] {
		if files := r.nameFiles[key]; files != nil {
			delete(files, path)
			if len(files) == 0 {
				delete(r.nameFiles, key)
			}
		}
	}
	delete(r.fileNames, path)

	delete(r.tables, path)
	delete(r.lastTouched, path)
}

// ResolveByFQN is the O(1) unambiguous lookup.
func (r *Registry) ResolveByFQN(fqn string) (*symbol.Symbol, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sym, ok := r.byFQN[fqn]
	if ok {
		r.touchLocked(r.fqnOwner[fqn])
	}
	return sym, ok
}

// ResolveByName checks the unambiguous map first, then scores every
// ambiguous candidate per spec.md §4.7's formula and returns the winner.
func (r *Registry) ResolveByName(name string, ctx ResolveContext) (*symbol.Symbol, bool) {
	key := foldKey(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	for fqn, sym := range r.byFQN {
		if foldKey(sym.Name) == key && strings.HasSuffix(fqn, sym.Name) {
			r.touchLocked(r.fqnOwner[fqn])
			return sym, true
		}
	}

	entry, ok := r.ambiguous[key]
	if !ok || len(entry.Candidates) == 0 {
		return nil, false
	}

	best := r.scoreAndPickLocked(entry, ctx)
	if best == nil {
		return nil, false
	}
	r.touchLocked(best.FilePath)
	return best.Symbol, true
}

func (r *Registry) scoreAndPickLocked(entry *AmbiguousEntry, ctx ResolveContext) *Candidate {
	now := time.Now()
	var best *Candidate
	var bestScore float64
	var bestHasNamespaceMatch bool
	var bestIndex int

	for i, c := range entry.Candidates {
		score := c.BaseConfidence
		if c.Namespace == NamespaceBuiltin && ctx.IsCommonOperation {
			score += 0.3
		}
		namespaceMatch := candidateNamespaceMatches(c, ctx.ExpectedNamespace)
		if namespaceMatch {
			score += 0.4
		}
		score += minFloat(float64(c.UsageCount)/100.0, 0.2)
		age := now.Sub(c.LastUsed)
		recency := 1.0 - age.Hours()/24.0
		if recency < 0 {
			recency = 0
		}
		score += recency * 0.1

		switch {
		case best == nil || score > bestScore:
			best, bestScore, bestHasNamespaceMatch, bestIndex = c, score, namespaceMatch, i
		case score == bestScore:
			// Tie-break 1: explicit namespace match wins.
			if namespaceMatch && !bestHasNamespaceMatch {
				best, bestHasNamespaceMatch, bestIndex = c, true, i
			} else if namespaceMatch == bestHasNamespaceMatch && i < bestIndex {
				// Tie-break 2: earliest registration (lowest candidate index).
				best, bestIndex = c, i
			}
		}
	}

	if best != nil {
		best.UsageCount++
		best.LastUsed = now
		entry.DefaultCandidate = best
	}
	return best
}

func candidateNamespaceMatches(c *Candidate, expected *core.Namespace) bool {
	if expected == nil {
		return false
	}
	if c.Symbol.Type.Namespace != nil {
		return strings.EqualFold(c.Symbol.Type.Namespace.Name, expected.Name)
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Candidates lists all known candidates for name, for disambiguation UI.
func (r *Registry) Candidates(name string) []*Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.ambiguous[foldKey(name)]
	if !ok {
		return nil
	}
	out := make([]*Candidate, len(entry.Candidates))
	copy(out, entry.Candidates)
	return out
}

// Table returns the SymbolTable registered for path, if any.
func (r *Registry) Table(path string) (*symboltable.SymbolTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[path]
	return t, ok
}

// NamesForFile returns the set of simple names (fold-cased) contributed
// by path (I6).
func (r *Registry) NamesForFile(path string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for name := range r.fileNames[path] {
		out = append(out, name)
	}
	return out
}

// FilesForName returns every file that contributed a symbol named name.
func (r *Registry) FilesForName(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for path := range r.nameFiles[foldKey(name)] {
		out = append(out, path)
	}
	return out
}

func (r *Registry) touchLocked(path string) {
	if path == "" {
		return
	}
	r.lastTouched[path] = time.Now()
}

// evictIfNeededLocked evicts the least-recently-touched unpinned file
// until the registry is back at or under maxFiles (spec.md §4.7, "Memory
// policy"). Called with r.mu already held for writing.
func (r *Registry) evictIfNeededLocked() {
	if r.maxFiles <= 0 {
		return
	}
	for len(r.tables) > r.maxFiles {
		victim := ""
		var oldest time.Time
		for path := range r.tables {
			if r.pinned[path] > 0 {
				continue
			}
			t := r.lastTouched[path]
			if victim == "" || t.Before(oldest) {
				victim, oldest = path, t
			}
		}
		if victim == "" {
			return // every remaining file is pinned; cannot evict further
		}
		r.unregisterLocked(victim)
		r.evictionHints = append(r.evictionHints, victim)
	}
}

// fqnFor computes the dotted FQN from a symbol's key path and name, per
// spec.md §3 ("FQN = dotted path from file scope").
func fqnFor(sym *symbol.Symbol) string {
	if len(sym.Key.Path) == 0 {
		return sym.Name
	}
	return strings.Join(sym.Key.Path, ".") + "." + sym.Name
}

func foldKey(s string) string { return strings.ToLower(s) }
