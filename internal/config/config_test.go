package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_PassValidation(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ContextAware, cfg.ResolverNamespaceStrategy)
	assert.True(t, cfg.ParserEnableReferenceCorrection)
	assert.False(t, cfg.ParserIncludeComments)
}

func TestValidate_RejectsUnknownNamespaceStrategy(t *testing.T) {
	cfg := Defaults()
	cfg.ResolverNamespaceStrategy = "Bogus"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsZeroMaxParallelCompiles(t *testing.T) {
	cfg := Defaults()
	cfg.MaxParallelCompiles = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	cfg, err := Load([]string{
		"--include-comments",
		"--namespace-strategy=ExplicitOnly",
		"--max-parallel-compiles=8",
		"--source-root=classes",
		"--source-root=triggers",
	})
	require.NoError(t, err)

	assert.True(t, cfg.ParserIncludeComments)
	assert.Equal(t, ExplicitOnly, cfg.ResolverNamespaceStrategy)
	assert.Equal(t, 8, cfg.MaxParallelCompiles)
	assert.Equal(t, []string{"classes", "triggers"}, cfg.SourceRoots)
}

func TestLoad_DefaultsSourceRootToCurrentDirectory(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, cfg.SourceRoots)
}

func TestLoad_RejectsInvalidNamespaceStrategy(t *testing.T) {
	_, err := Load([]string{"--namespace-strategy=NotReal"})
	assert.Error(t, err)
}
