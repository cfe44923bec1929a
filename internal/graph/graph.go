// Package graph implements the Cross-Reference Graph described in
// spec.md §4.8: a multigraph over symbol ids, with deferred edges that
// resolve once their target symbol is registered, inheritance-chain
// walking, and DFS-based cycle detection.
package graph

import (
	"strings"
	"sync"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
)

// EdgeKind classifies the relationship an Edge records, per spec.md §4.8.
type EdgeKind int

const (
	MethodCall EdgeKind = iota
	FieldAccess
	TypeReference
	Inheritance
	InterfaceImplementation
	VariableDeclaration
	ParameterType
	ReturnType
	Override
	ChainedType
)

// Edge is one directed relationship between two symbol ids.
type Edge struct {
	Source   symbol.ID
	Target   symbol.ID
	Kind     EdgeKind
	Location core.Location
}

// PendingEdge is a deferred edge whose target hasn't been registered
// yet; it resolves to a concrete Edge once a symbol with TargetFQN is
// added (I7).
type PendingEdge struct {
	Source    symbol.ID
	TargetFQN string
	Kind      EdgeKind
	Location  core.Location
}

type vertex struct {
	sym      *symbol.Symbol
	filePath string
	outgoing []*Edge
	incoming []*Edge
}

// Graph is the process-wide cross-reference multigraph, federated from
// every registered file's symbols. It is safe for
// concurrent use; per spec.md §5, all mutation goes through a single
// write lock.
type Graph struct {
	mu sync.RWMutex

	vertices map[symbol.ID]*vertex
	fqnOf    map[symbol.ID]string

	// deferredByFqn holds edges whose target symbol hasn't been added
	// yet, keyed by the target's fqn (spec.md §4.8).
	deferredByFqn map[string][]PendingEdge

	// fileSymbols tracks which symbol ids were contributed by which
	// file, so Unregister can remove incident edges and re-activate
	// deferred edges targeting that file's symbols.
	fileSymbols map[string][]symbol.ID
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		vertices:      make(map[symbol.ID]*vertex),
		fqnOf:         make(map[symbol.ID]string),
		deferredByFqn: make(map[string][]PendingEdge),
		fileSymbols:   make(map[string][]symbol.ID),
	}
}

// AddSymbol creates a vertex for sym if absent and, atomically with its
// creation, drains any deferred edges targeting its fqn into concrete
// edges (I7: "no caller sees the registry in a state where the symbol
// is registered but incident deferred edges have not been converted").
func (g *Graph) AddSymbol(filePath string, sym *symbol.Symbol) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addSymbolLocked(filePath, sym)
}

func (g *Graph) addSymbolLocked(filePath string, sym *symbol.Symbol) {
	if _, exists := g.vertices[sym.ID]; exists {
		return
	}

	fqn := fqnFor(sym)
	g.vertices[sym.ID] = &vertex{sym: sym, filePath: filePath}
	g.fqnOf[sym.ID] = fqn
	g.fileSymbols[filePath] = append(g.fileSymbols[filePath], sym.ID)

	pending := g.deferredByFqn[fqn]
	delete(g.deferredByFqn, fqn)
	for _, p := range pending {
		g.addEdgeLocked(p.Source, sym.ID, p.Kind, p.Location)
	}
}

// AddEdge creates a directed edge from src to target. Both vertices
// must already exist.
func (g *Graph) AddEdge(src, target symbol.ID, kind EdgeKind, loc core.Location) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addEdgeLocked(src, target, kind, loc)
}

func (g *Graph) addEdgeLocked(src, target symbol.ID, kind EdgeKind, loc core.Location) {
	srcV, ok := g.vertices[src]
	if !ok {
		return
	}
	tgtV, ok := g.vertices[target]
	if !ok {
		return
	}
	e := &Edge{Source: src, Target: target, Kind: kind, Location: loc}
	srcV.outgoing = append(srcV.outgoing, e)
	tgtV.incoming = append(tgtV.incoming, e)
}

// AddDeferredEdge records an edge whose target symbol, identified by
// targetFQN, is not yet registered. It converts to a concrete edge the
// moment a symbol with that fqn is added via AddSymbol.
func (g *Graph) AddDeferredEdge(src symbol.ID, targetFQN string, kind EdgeKind, loc core.Location) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deferredByFqn[targetFQN] = append(g.deferredByFqn[targetFQN], PendingEdge{
		Source:    src,
		TargetFQN: targetFQN,
		Kind:      kind,
		Location:  loc,
	})
}

// Incoming returns the edges where id is the target.
func (g *Graph) Incoming(id symbol.ID) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[id]
	if !ok {
		return nil
	}
	out := make([]*Edge, len(v.incoming))
	copy(out, v.incoming)
	return out
}

// Outgoing returns the edges where id is the source.
func (g *Graph) Outgoing(id symbol.ID) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[id]
	if !ok {
		return nil
	}
	out := make([]*Edge, len(v.outgoing))
	copy(out, v.outgoing)
	return out
}

// InheritanceChain walks outgoing Inheritance edges from typeSym,
// terminating at the first vertex whose parent is unresolved or null
// (spec.md §4.8: "at most one Inheritance edge per vertex"). It does
// not follow InterfaceImplementation edges.
func (g *Graph) InheritanceChain(typeSym symbol.ID) []symbol.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var chain []symbol.ID
	seen := make(map[symbol.ID]bool)
	current := typeSym
	for {
		v, ok := g.vertices[current]
		if !ok || seen[current] {
			break
		}
		seen[current] = true
		chain = append(chain, current)

		var parent symbol.ID
		found := false
		for _, e := range v.outgoing {
			if e.Kind == Inheritance {
				parent = e.Target
				found = true
				break
			}
		}
		if !found {
			break
		}
		current = parent
	}
	return chain
}

// DetectCycles runs a DFS with a recursion stack over every outgoing
// edge and returns each cycle found as an ordered list of symbol ids
// (spec.md §4.8).
func (g *Graph) DetectCycles() [][]symbol.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[symbol.ID]bool)
	onStack := make(map[symbol.ID]bool)
	var stack []symbol.ID
	var cycles [][]symbol.ID

	var visit func(id symbol.ID)
	visit = func(id symbol.ID) {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)

		for _, e := range g.vertices[id].outgoing {
			if onStack[e.Target] {
				cycles = append(cycles, extractCycle(stack, e.Target))
				continue
			}
			if !visited[e.Target] {
				visit(e.Target)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
	}

	for id := range g.vertices {
		if !visited[id] {
			visit(id)
		}
	}
	return cycles
}

func extractCycle(stack []symbol.ID, start symbol.ID) []symbol.ID {
	for i, id := range stack {
		if id == start {
			cycle := make([]symbol.ID, len(stack)-i)
			copy(cycle, stack[i:])
			return cycle
		}
	}
	return []symbol.ID{start}
}

// Unregister removes every vertex contributed by filePath, every edge
// incident to one of those vertices, and re-activates (moves back to
// deferred) any edge that targeted one of those vertices from a
// surviving source (spec.md §4.8, closing paragraph).
func (g *Graph) Unregister(filePath string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := g.fileSymbols[filePath]
	if len(ids) == 0 {
		return
	}
	removed := make(map[symbol.ID]bool, len(ids))
	for _, id := range ids {
		removed[id] = true
	}

	for _, id := range ids {
		v := g.vertices[id]
		if v == nil {
			continue
		}
		for _, e := range v.incoming {
			if !removed[e.Source] {
				g.deferredByFqn[g.fqnOf[id]] = append(g.deferredByFqn[g.fqnOf[id]], PendingEdge{
					Source:    e.Source,
					TargetFQN: g.fqnOf[id],
					Kind:      e.Kind,
					Location:  e.Location,
				})
			}
		}
		delete(g.vertices, id)
		delete(g.fqnOf, id)
	}

	for _, v := range g.vertices {
		v.outgoing = filterEdges(v.outgoing, removed)
		v.incoming = filterEdges(v.incoming, removed)
	}

	delete(g.fileSymbols, filePath)
}

func filterEdges(edges []*Edge, removed map[symbol.ID]bool) []*Edge {
	kept := edges[:0]
	for _, e := range edges {
		if !removed[e.Source] && !removed[e.Target] {
			kept = append(kept, e)
		}
	}
	return kept
}

// fqnFor computes the dotted FQN from a symbol's key path and name,
// matching the registry package's fqn convention (spec.md §3).
func fqnFor(sym *symbol.Symbol) string {
	if len(sym.Key.Path) == 0 {
		return sym.Name
	}
	return strings.Join(sym.Key.Path, ".") + "." + sym.Name
}
