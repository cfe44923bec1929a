package typedesc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
)

func TestParse_Primitive(t *testing.T) {
	td := Parse("Integer")
	assert.Equal(t, "Integer", td.Name)
	assert.True(t, td.IsPrimitive)
	assert.False(t, td.IsArray)
	assert.False(t, td.IsCollection)
	assert.Nil(t, td.Namespace)
}

func TestParse_Array(t *testing.T) {
	td := Parse("Integer[]")
	assert.Equal(t, "Integer", td.Name)
	assert.True(t, td.IsArray)
	assert.True(t, td.IsPrimitive, "element type Integer is primitive regardless of array-ness")
}

func TestParse_Collection(t *testing.T) {
	td := Parse("List<String>")
	assert.Equal(t, "List", td.Name)
	assert.True(t, td.IsCollection)
	assert.Equal(t, "List<String>", td.OriginalTypeString)

	td = Parse("Map<Id, Account>")
	assert.Equal(t, "Map", td.Name)
	assert.True(t, td.IsCollection)
}

func TestParse_QualifiedName(t *testing.T) {
	td := Parse("fflib_Application.SelectorFactory")
	assert.Equal(t, "SelectorFactory", td.Name)
	assert.NotNil(t, td.Namespace)
	assert.Equal(t, "fflib_Application", td.Namespace.Name)
	assert.False(t, td.IsPrimitive)
}

func TestParse_BuiltInNamespaceIsShared(t *testing.T) {
	td := Parse("System.PageReference")
	assert.Equal(t, "PageReference", td.Name)
	assert.Same(t, core.BuiltInNamespace, td.Namespace)
}

func TestParse_NestedNamespace(t *testing.T) {
	td := Parse("MyNamespace.Outer.Inner")
	assert.Equal(t, "Inner", td.Name)
	assert.Equal(t, "MyNamespace.Outer", td.Namespace.Name)
}

func TestParse_NeverFails(t *testing.T) {
	for _, raw := range []string{"", "   ", "<<>>", "...", "[]"} {
		assert.NotPanics(t, func() { Parse(raw) })
	}
}

func TestParse_Void(t *testing.T) {
	td := Parse("void")
	assert.True(t, td.IsPrimitive)
	assert.Equal(t, "void", td.Name)
}
