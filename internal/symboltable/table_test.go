package symboltable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
)

// buildClassWithConstructor mimics the listener's enter sequence for
// "public class C { public C() {} }" (spec.md §8 scenario 1).
func buildClassWithConstructor(t *testing.T) (*SymbolTable, *symbol.Symbol, *symbol.Symbol, *symbol.Symbol) {
	t.Helper()
	tbl := New("C.cls", IDModeSequential)

	classSym := symbol.New(core.KindClass, "C", core.Location{})
	tbl.AddSymbol(classSym)

	blockSym := tbl.EnterScope("C", core.ScopeClass, classSym.ID)

	ctorSym := symbol.New(core.KindConstructor, "C", core.Location{})
	ctorSym.IsConstructor = true
	ctorSym.ReturnType = core.TypeDescriptor{Name: "void", OriginalTypeString: "void", IsPrimitive: true}
	tbl.AddSymbol(ctorSym)

	tbl.ExitScope()

	return tbl, classSym, blockSym, ctorSym
}

func TestConstructorParentLinkage(t *testing.T) {
	_, classSym, blockSym, ctorSym := buildClassWithConstructor(t)

	assert.Equal(t, blockSym.ParentID, classSym.ID, "the class's own block scope parents to the type symbol's id, not the enclosing scope")
	assert.Equal(t, ctorSym.ParentID, blockSym.ID, "members parent to the block scope's id, never the type symbol's id directly")
	assert.True(t, ctorSym.IsConstructor)
	assert.Equal(t, "void", ctorSym.ReturnType.Name)
}

func TestAddSymbol_AssignsSequentialIDs(t *testing.T) {
	tbl := New("C.cls", IDModeSequential)
	a := symbol.New(core.KindClass, "A", core.Location{})
	b := symbol.New(core.KindClass, "B", core.Location{})
	tbl.AddSymbol(a)
	tbl.AddSymbol(b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Greater(t, uint64(b.ID), uint64(a.ID))
}

func TestLookup_WalksOutward(t *testing.T) {
	tbl := New("C.cls", IDModeSequential)
	classSym := symbol.New(core.KindClass, "C", core.Location{})
	tbl.AddSymbol(classSym)
	tbl.EnterScope("C", core.ScopeClass, classSym.ID)

	field := symbol.New(core.KindField, "counter", core.Location{})
	tbl.AddSymbol(field)

	found, ok := tbl.Lookup("counter")
	require.True(t, ok)
	assert.Equal(t, field.ID, found.ID)

	_, ok = tbl.Lookup("doesNotExist")
	assert.False(t, ok)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	tbl := New("C.cls", IDModeSequential)
	field := symbol.New(core.KindField, "MyField", core.Location{})
	tbl.AddSymbol(field)

	found, ok := tbl.Lookup("myfield")
	require.True(t, ok)
	assert.Equal(t, "MyField", found.Name, "stored Name keeps original casing even though lookup folded it")
}

func TestLookupAll_ReturnsFullOverloadSet(t *testing.T) {
	tbl := New("C.cls", IDModeSequential)
	m1 := symbol.New(core.KindMethod, "m", core.Location{})
	m2 := symbol.New(core.KindMethod, "m", core.Location{})
	tbl.AddSymbol(m1)
	tbl.AddSymbol(m2)

	all := tbl.LookupAll("m")
	require.Len(t, all, 2)
	assert.Equal(t, m1.ID, all[0].ID)
	assert.Equal(t, m2.ID, all[1].ID)
}

func TestExitScope_PanicsOnFileScope(t *testing.T) {
	tbl := New("C.cls", IDModeSequential)
	assert.Panics(t, func() { tbl.ExitScope() })
}

func TestGetAllSymbols_ParentsPrecedeChildren(t *testing.T) {
	tbl, classSym, blockSym, ctorSym := buildClassWithConstructor(t)

	all := tbl.GetAllSymbols()
	indexOf := func(id symbol.ID) int {
		for i, s := range all {
			if s.ID == id {
				return i
			}
		}
		return -1
	}

	classIdx := indexOf(classSym.ID)
	blockIdx := indexOf(blockSym.ID)
	ctorIdx := indexOf(ctorSym.ID)

	require.GreaterOrEqual(t, classIdx, 0)
	require.GreaterOrEqual(t, blockIdx, 0)
	require.GreaterOrEqual(t, ctorIdx, 0)
	assert.Less(t, classIdx, blockIdx)
	assert.Less(t, blockIdx, ctorIdx)
}

func TestKeyPath_ReflectsEnclosingTypeNames(t *testing.T) {
	tbl := New("C.cls", IDModeSequential)
	outer := symbol.New(core.KindClass, "Outer", core.Location{})
	tbl.AddSymbol(outer)
	tbl.EnterScope("Outer", core.ScopeClass, outer.ID)

	inner := symbol.New(core.KindClass, "Inner", core.Location{})
	tbl.AddSymbol(inner)
	tbl.EnterScope("Inner", core.ScopeClass, inner.ID)

	member := symbol.New(core.KindField, "x", core.Location{})
	tbl.AddSymbol(member)

	assert.Equal(t, []string{"Outer", "Inner"}, member.Key.Path)
}

func TestCrossProcessIDMode_ProducesNonZeroIDs(t *testing.T) {
	tbl := New("C.cls", IDModeCrossProcess)
	a := symbol.New(core.KindClass, "A", core.Location{})
	tbl.AddSymbol(a)
	assert.NotZero(t, a.ID)
}
