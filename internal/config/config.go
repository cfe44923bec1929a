// Package config builds the typed Config spec.md §6 describes, loaded
// from flags over defaults (after loading a .env file into the
// environment), then validated with
// go-playground/validator/v10 struct tags.
package config

import (
	"flag"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/forcedotcom/apex-semantic-core/internal/registry"
)

// NamespaceStrategy names a resolver.namespaceStrategy setting (spec.md
// §4.7). Config validates and stores it; neither the resolver nor the
// registry reads it, and ambiguous names are always ranked by the
// registry's candidate scoring.
type NamespaceStrategy string

const (
	ExplicitOnly       NamespaceStrategy = "ExplicitOnly"
	BuiltInPreferred   NamespaceStrategy = "BuiltInPreferred"
	ContextAware       NamespaceStrategy = "ContextAware"
	UserDisambiguation NamespaceStrategy = "UserDisambiguation"
)

var validNamespaceStrategies = map[NamespaceStrategy]bool{
	ExplicitOnly:       true,
	BuiltInPreferred:   true,
	ContextAware:       true,
	UserDisambiguation: true,
}

// Config is the engine's full runtime configuration (spec.md §6).
type Config struct {
	ParserIncludeComments           bool `validate:"-"`
	ParserEnableReferenceCorrection bool `validate:"-"`

	RegistryMaxFiles int `validate:"gte=0"`

	ResolverNamespaceStrategy NamespaceStrategy `validate:"oneof=ExplicitOnly BuiltInPreferred ContextAware UserDisambiguation"`
	SourceRoots               []string          `validate:"-"`

	MaxParallelCompiles int    `validate:"gte=1"`
	CacheDSN            string `validate:"-"`
	CacheDebug          bool   `validate:"-"`
}

var validate = validator.New()

// Defaults returns a Config carrying spec.md §6's stated defaults.
func Defaults() *Config {
	return &Config{
		ParserIncludeComments:           false,
		ParserEnableReferenceCorrection: true,
		RegistryMaxFiles:                0, // 0 == unbounded
		ResolverNamespaceStrategy:       ContextAware,
		MaxParallelCompiles:             4,
		CacheDSN:                        "apexsem-cache.db",
	}
}

// Validate checks the Config's struct tags, and the NamespaceStrategy
// enum's exact membership (the oneof tag above only checks the
// underlying string, which Go's type system doesn't narrow further).
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if !validNamespaceStrategies[c.ResolverNamespaceStrategy] {
		return fmt.Errorf("config: unknown resolver.namespaceStrategy %q", c.ResolverNamespaceStrategy)
	}
	return nil
}

// AsResolveContext returns an empty registry.ResolveContext: no Config
// field is copied into it, and CurrentFile/UsagePattern are set per call
// site.
func (c *Config) AsResolveContext() registry.ResolveContext {
	return registry.ResolveContext{}
}

// Load loads a .env file into the process environment if present
// (ignoring a missing file, as godotenv.Load() callers commonly do), then
// parses args with pflag over Defaults() and validates the result. No
// Config field is read from the environment; the .env file only supplies
// variables other packages read, such as the cache's libsql auth token.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load() // a missing .env file is not an error

	cfg := Defaults()

	fs := pflag.NewFlagSet("apexsem", pflag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	includeComments := fs.Bool("include-comments", cfg.ParserIncludeComments, "Sets parser.includeComments (carried in compile options; the compiler does not read it).")
	refCorrection := fs.Bool("reference-correction", cfg.ParserEnableReferenceCorrection, "Sets parser.enableReferenceCorrection (carried in compile options; the compiler does not read it).")
	maxFiles := fs.Int("registry-max-files", cfg.RegistryMaxFiles, "Soft cap on files kept in the registry, 0 for unbounded.")
	namespaceStrategy := fs.String("namespace-strategy", string(cfg.ResolverNamespaceStrategy), "Sets resolver.namespaceStrategy (validated; the resolver does not read it): ExplicitOnly, BuiltInPreferred, ContextAware, UserDisambiguation.")
	sourceRoots := fs.StringSlice("source-root", nil, "Directory to search for candidate files (repeatable).")
	maxParallel := fs.Int("max-parallel-compiles", cfg.MaxParallelCompiles, "Sets MaxParallelCompiles (validated as >= 1; the CLI does not read it).")
	cacheDSN := fs.String("cache-dsn", cfg.CacheDSN, "Compile-result cache DSN: a sqlite file path or a libsql:// URL.")
	cacheDebug := fs.Bool("cache-debug", cfg.CacheDebug, "Log cache SQL statements.")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil, flag.ErrHelp
		}
		return nil, err
	}

	cfg.ParserIncludeComments = *includeComments
	cfg.ParserEnableReferenceCorrection = *refCorrection
	cfg.RegistryMaxFiles = *maxFiles
	cfg.ResolverNamespaceStrategy = NamespaceStrategy(*namespaceStrategy)
	cfg.SourceRoots = *sourceRoots
	cfg.MaxParallelCompiles = *maxParallel
	cfg.CacheDSN = *cacheDSN
	cfg.CacheDebug = *cacheDebug

	if len(cfg.SourceRoots) == 0 {
		cfg.SourceRoots = []string{"."}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printUsage(fs *pflag.FlagSet) {
	fmt.Println("apexsem: semantic analysis core for Apex")
	fmt.Println()
	fmt.Println(fs.FlagUsages())
}
