// Package compiler exposes the engine's single public entry point,
// compile(content, filePath, listener, options), per spec.md §6
// "Exposed": the function that wires a ParseTree, a Listener, and the
// Global Symbol Registry/Cross-Reference Graph together for one file.
package compiler

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/forcedotcom/apex-semantic-core/internal/diagnostics"
	"github.com/forcedotcom/apex-semantic-core/internal/graph"
	"github.com/forcedotcom/apex-semantic-core/internal/listener"
	"github.com/forcedotcom/apex-semantic-core/internal/parsetree"
	"github.com/forcedotcom/apex-semantic-core/internal/registry"
	"github.com/forcedotcom/apex-semantic-core/internal/symboltable"
)

// ErrInvalidTree is the spec.md §7 "Input" error tier: the parse tree
// or its root is null, fatal to this compilation only.
var ErrInvalidTree = errors.New("compiler: parse tree has no root")

// Parser turns raw file content into the abstract parsetree.Tree the
// Listener walks. The concrete Apex grammar is an external collaborator
// (spec.md §1: "the engine never imports a concrete parser"); Parser is
// the seam a host plugs its own grammar/tree-sitter binding into.
type Parser interface {
	Parse(content []byte, filePath string) (parsetree.Tree, error)
}

// Options mirrors spec.md §6's compile options. IncludeComments and
// EnableReferenceCorrection are carried here but Compile does not read
// them; only IDMode affects a compilation.
type Options struct {
	IncludeComments           bool
	EnableReferenceCorrection bool
	// IDMode selects the SymbolTable's id-minting strategy; see
	// SPEC_FULL.md §3 on IDModeCrossProcess.
	IDMode symboltable.IDMode
}

// Result is one file's compilation outcome.
type Result struct {
	FilePath string
	Table    *symboltable.SymbolTable
	Errors   []diagnostics.Diagnostic
	Warnings []diagnostics.Diagnostic
}

// Config pairs one file's content with its path and options, the unit
// compileMultipleWithConfigs iterates over.
type Config struct {
	Content  []byte
	FilePath string
	Options  Options
}

// Compile parses content with p, walks the resulting tree with a fresh
// Listener, and returns the built SymbolTable plus its diagnostics. It
// does not register the table into any Registry/Graph — registration is
// the caller's decision, per spec.md §9 ("no implicit global").
func Compile(p Parser, content []byte, filePath string, opts Options) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("compiler: no Parser configured for %q", filePath)
	}

	tree, err := p.Parse(content, filePath)
	if err != nil {
		return nil, fmt.Errorf("compiler: parsing %q: %w", filePath, err)
	}
	if tree == nil || tree.Root() == nil {
		return nil, ErrInvalidTree
	}

	l := listener.New(filePath, opts.IDMode)
	parsetree.Walk(tree, l)

	return &Result{
		FilePath: filePath,
		Table:    l.Table(),
		Errors:   l.Reporter().Errors(),
		Warnings: l.Reporter().Warnings(),
	}, nil
}

// CompileAndRegister compiles content and, on success, registers the
// resulting table into reg and adds its symbols to g, draining any
// deferred edges targeting them (I7). A compilation that fails at the
// Input tier (ErrInvalidTree or a Parser error) registers nothing.
func CompileAndRegister(p Parser, content []byte, filePath string, opts Options, reg *registry.Registry, g *graph.Graph) (*Result, error) {
	res, err := Compile(p, content, filePath, opts)
	if err != nil {
		return nil, err
	}
	if err := reg.RegisterFile(filePath, res.Table); err != nil {
		return res, fmt.Errorf("compiler: registering %q: %w", filePath, err)
	}
	for _, sym := range res.Table.GetAllSymbols() {
		g.AddSymbol(filePath, sym)
	}
	return res, nil
}

// Service adapts Compile into the narrow CompilerService shape
// internal/resolver depends on, so the resolver package never needs to
// import compiler.Parser/compiler.Options directly.
type Service struct {
	Parser  Parser
	Options Options
}

// Compile implements resolver.CompilerService.
func (s Service) Compile(content []byte, filePath string) (*symboltable.SymbolTable, error) {
	res, err := Compile(s.Parser, content, filePath, s.Options)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// CompileMultipleWithConfigs compiles every config, bounding concurrent
// in-flight compilations with a semaphore.Weighted sized maxParallel
// (spec.md §6, SPEC_FULL.md §5). Each individual compilation remains
// single-threaded and non-suspending; only the orchestration across
// files runs in parallel. maxParallel <= 0 defaults to 1.
func CompileMultipleWithConfigs(ctx context.Context, p Parser, configs []Config, maxParallel int, reg *registry.Registry, g *graph.Graph) ([]*Result, error) {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	sem := semaphore.NewWeighted(int64(maxParallel))

	results := make([]*Result, len(configs))
	errs := make([]error, len(configs))

	done := make(chan int, len(configs))
	for i, cfg := range configs {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs[i] = err
			done <- i
			continue
		}
		go func(i int, cfg Config) {
			defer sem.Release(1)
			res, err := CompileAndRegister(p, cfg.Content, cfg.FilePath, cfg.Options, reg, g)
			results[i], errs[i] = res, err
			done <- i
		}(i, cfg)
	}
	for range configs {
		<-done
	}

	var firstErr error
	for _, err := range errs {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return results, firstErr
}
