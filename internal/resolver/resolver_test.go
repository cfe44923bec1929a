package resolver

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/registry"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
	"github.com/forcedotcom/apex-semantic-core/internal/symboltable"
)

type staticLocator map[string][]string

func (l staticLocator) Locate(name string) []string { return l[name] }

type memDocs map[string][]byte

func (d memDocs) Read(path string) ([]byte, bool) {
	b, ok := d[path]
	return b, ok
}

// countingCompiler builds a one-symbol SymbolTable named after the
// file's base name (stripped of extension) and counts how many times
// Compile actually ran, so tests can assert singleflight dedup.
type countingCompiler struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCompiler) Compile(content []byte, filePath string) (*symboltable.SymbolTable, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	name := string(content)
	table := symboltable.New(filePath, symboltable.IDModeSequential)
	table.AddSymbol(symbol.New(core.KindClass, name, core.Location{}))
	return table, nil
}

func TestResolve_FindsSymbolAlreadyInRegistry(t *testing.T) {
	reg := registry.New(0)
	table := symboltable.New("Foo.cls", symboltable.IDModeSequential)
	table.AddSymbol(symbol.New(core.KindClass, "Foo", core.Location{}))
	require.NoError(t, reg.RegisterFile("Foo.cls", table))

	r := &Resolver{Registry: reg}
	sym, err := r.Resolve(context.Background(), "Foo", registry.ResolveContext{})
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "Foo", sym.Name)
}

func TestResolve_LoadsAndCompilesOnMiss(t *testing.T) {
	reg := registry.New(0)
	compiler := &countingCompiler{}
	r := &Resolver{
		Registry: reg,
		Locator:  staticLocator{"Bar": {"Bar.cls"}},
		Docs:     memDocs{"Bar.cls": []byte("Bar")},
		Compiler: compiler,
	}

	sym, err := r.Resolve(context.Background(), "Bar", registry.ResolveContext{})
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "Bar", sym.Name)
	assert.Equal(t, 1, compiler.calls)
}

func TestResolve_MissingFileReturnsNilSymbolNilError(t *testing.T) {
	reg := registry.New(0)
	var missed []ClientRequest
	r := &Resolver{
		Registry:  reg,
		Locator:   staticLocator{},
		Docs:      memDocs{},
		Compiler:  &countingCompiler{},
		OnMissing: func(cr ClientRequest) { missed = append(missed, cr) },
	}

	sym, err := r.Resolve(context.Background(), "Ghost", registry.ResolveContext{})
	require.NoError(t, err)
	assert.Nil(t, sym)
	require.Len(t, missed, 1)
	assert.Equal(t, "Ghost", missed[0].Name)
}

func TestResolve_SkipsCandidateFilesThatFailToRead(t *testing.T) {
	reg := registry.New(0)
	compiler := &countingCompiler{}
	r := &Resolver{
		Registry: reg,
		Locator:  staticLocator{"Baz": {"missing.cls", "Baz.cls"}},
		Docs:     memDocs{"Baz.cls": []byte("Baz")},
		Compiler: compiler,
	}

	sym, err := r.Resolve(context.Background(), "Baz", registry.ResolveContext{})
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "Baz", sym.Name)
}

func TestResolve_ConcurrentSameNameDedupedBySingleflight(t *testing.T) {
	reg := registry.New(0)
	compiler := &countingCompiler{}
	r := &Resolver{
		Registry: reg,
		Locator:  staticLocator{"Qux": {"Qux.cls"}},
		Docs:     memDocs{"Qux.cls": []byte("Qux")},
		Compiler: compiler,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "Qux", registry.ResolveContext{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, compiler.calls, "concurrent resolves for the same name should compile only once")
}
