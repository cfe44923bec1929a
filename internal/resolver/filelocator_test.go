package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobFileLocator_FindsFileBySimpleName(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "classes")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "Foo.cls"), []byte("class Foo {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "Bar.trigger"), []byte("trigger Bar on Account {}"), 0o644))

	l := &GlobFileLocator{Roots: []string{root}}

	found := l.Locate("Foo")
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(sub, "Foo.cls"), found[0])

	found = l.Locate("Bar")
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(sub, "Bar.trigger"), found[0])
}

func TestGlobFileLocator_QualifiedNameUsesLeadingSegment(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Outer.cls"), []byte("class Outer {}"), 0o644))

	l := &GlobFileLocator{Roots: []string{root}}

	found := l.Locate("Outer.Inner")
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(root, "Outer.cls"), found[0])
}

func TestGlobFileLocator_NoMatchReturnsEmpty(t *testing.T) {
	root := t.TempDir()
	l := &GlobFileLocator{Roots: []string{root}}
	assert.Empty(t, l.Locate("Nonexistent"))
}
