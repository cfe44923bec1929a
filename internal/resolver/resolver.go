// Package resolver implements the Lazy Resolver described in spec.md
// §4.9: the public resolve(name, context) entry point language-server
// features call, which falls back from the in-memory registry to
// loading and compiling a file on demand.
package resolver

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/forcedotcom/apex-semantic-core/internal/graph"
	"github.com/forcedotcom/apex-semantic-core/internal/registry"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
	"github.com/forcedotcom/apex-semantic-core/internal/symboltable"
)

// FileLocator maps a simple or qualified name to candidate file paths
// that might declare it (spec.md §4.9 step 3).
type FileLocator interface {
	Locate(name string) []string
}

// DocumentStore is the abstract document source (spec.md §6): Read
// returns the file's current bytes, or false if the host has none.
type DocumentStore interface {
	Read(path string) ([]byte, bool)
}

// CompilerService is the seam the resolver calls to turn file bytes
// into a SymbolTable (spec.md §4.9 step 4), implemented by
// compiler.Service.
type CompilerService interface {
	Compile(content []byte, filePath string) (*symboltable.SymbolTable, error)
}

// ClientRequest is the optional event emitted when resolve cannot find
// name anywhere and a host may want to fetch it asynchronously (spec.md
// §4.9 step 5).
type ClientRequest struct {
	Name string
}

// Resolver orchestrates the Registry, a FileLocator, a DocumentStore,
// and a CompilerService into the single resolve(name, context) entry
// point. It is safe for concurrent use: concurrent resolves for the
// same name are deduplicated via a singleflight group so only one
// CompilerService.Compile runs per missing symbol (SPEC_FULL.md §5).
type Resolver struct {
	Registry *registry.Registry
	Graph    *graph.Graph
	Locator  FileLocator
	Docs     DocumentStore
	Compiler CompilerService
	IDMode   symboltable.IDMode

	// OnMissing, if set, is called when resolve exhausts every
	// candidate file without finding name (step 5's "optionally emit a
	// client-request event").
	OnMissing func(ClientRequest)

	group singleflight.Group
}

// Resolve implements spec.md §4.9's five-step order. It returns (nil,
// nil) when name genuinely cannot be found anywhere, matching the
// "Lookup" error tier of spec.md §7 ("null return ... never thrown").
func (r *Resolver) Resolve(ctx context.Context, name string, rc registry.ResolveContext) (*symbol.Symbol, error) {
	if sym, ok := r.queryRegistry(name, rc); ok {
		return sym, nil
	}

	sym, err, _ := r.group.Do(name, func() (any, error) {
		return r.loadAndCompile(ctx, name, rc)
	})
	if err != nil {
		return nil, err
	}
	if sym == nil {
		return nil, nil
	}
	return sym.(*symbol.Symbol), nil
}

func (r *Resolver) queryRegistry(name string, rc registry.ResolveContext) (*symbol.Symbol, bool) {
	if sym, ok := r.Registry.ResolveByFQN(name); ok {
		return sym, true
	}
	return r.Registry.ResolveByName(name, rc)
}

// loadAndCompile runs steps 3-5 of spec.md §4.9. It is only ever
// in-flight once per name at a time, via the enclosing singleflight
// group.
func (r *Resolver) loadAndCompile(ctx context.Context, name string, rc registry.ResolveContext) (*symbol.Symbol, error) {
	// Another caller may have finished loading this name while we
	// waited to enter the singleflight section.
	if sym, ok := r.queryRegistry(name, rc); ok {
		return sym, nil
	}

	if r.Locator == nil || r.Docs == nil || r.Compiler == nil {
		r.emitMissing(name)
		return nil, nil
	}

	for _, path := range r.Locator.Locate(name) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		content, ok := r.Docs.Read(path)
		if !ok {
			continue
		}

		table, err := r.Compiler.Compile(content, path)
		if err != nil {
			continue // a malformed candidate file is not fatal to resolution (spec.md §7, Lookup tier)
		}

		if err := r.Registry.RegisterFile(path, table); err != nil {
			return nil, fmt.Errorf("resolver: registering %q: %w", path, err)
		}
		if r.Graph != nil {
			for _, sym := range table.GetAllSymbols() {
				r.Graph.AddSymbol(path, sym)
			}
		}

		if sym, ok := r.queryRegistry(name, rc); ok {
			return sym, nil
		}
	}

	r.emitMissing(name)
	return nil, nil
}

func (r *Resolver) emitMissing(name string) {
	if r.OnMissing != nil {
		r.OnMissing(ClientRequest{Name: name})
	}
}
