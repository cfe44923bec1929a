// Command apexsem is the CLI driver wiring Config, Registry, Resolver,
// and Cache against real .cls/.trigger files, in the same
// root-command-plus-subcommands shape as the teacher's demo/cmd
// (rootCmd with AddCommand'd children, each a thin Run closure over a
// runner type).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forcedotcom/apex-semantic-core/internal/apexscan"
	"github.com/forcedotcom/apex-semantic-core/internal/cache"
	"github.com/forcedotcom/apex-semantic-core/internal/compiler"
	"github.com/forcedotcom/apex-semantic-core/internal/config"
	"github.com/forcedotcom/apex-semantic-core/internal/graph"
	"github.com/forcedotcom/apex-semantic-core/internal/registry"
	"github.com/forcedotcom/apex-semantic-core/internal/resolver"
)

// engine bundles the long-lived components one CLI invocation shares
// across its files, the same grouping demo/cmd's DemoRunner holds for
// its scenario state.
type engine struct {
	cfg      *config.Config
	registry *registry.Registry
	graph    *graph.Graph
	resolver *resolver.Resolver
	cache    *cache.Cache
}

func newEngine(cfg *config.Config) (*engine, error) {
	reg := registry.New(cfg.RegistryMaxFiles)
	g := graph.New()

	svc := compiler.Service{
		Parser: apexscan.Parser{},
		Options: compiler.Options{
			IncludeComments:           cfg.ParserIncludeComments,
			EnableReferenceCorrection: cfg.ParserEnableReferenceCorrection,
		},
	}

	c, err := cache.Open(cfg.CacheDSN, cfg.CacheDebug)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	return &engine{
		cfg:      cfg,
		registry: reg,
		graph:    g,
		resolver: &resolver.Resolver{
			Registry: reg,
			Graph:    g,
			Locator:  &resolver.GlobFileLocator{Roots: cfg.SourceRoots},
			Docs:     osDocumentStore{},
			Compiler: svc,
		},
		cache: c,
	}, nil
}

func (e *engine) close() { _ = e.cache.Close() }

// osDocumentStore reads documents straight off disk, the simplest
// DocumentStore a host that isn't tracking unsaved editor buffers needs.
type osDocumentStore struct{}

func (osDocumentStore) Read(path string) ([]byte, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return b, true
}

func (e *engine) compileFile(path string) (*compiler.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	res, err := compiler.CompileAndRegister(apexscan.Parser{}, content, path, compiler.Options{
		IncludeComments:           e.cfg.ParserIncludeComments,
		EnableReferenceCorrection: e.cfg.ParserEnableReferenceCorrection,
	}, e.registry, e.graph)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Record(path, content, len(res.Table.GetAllSymbols()), len(res.Errors)+len(res.Warnings)); err != nil {
		return nil, fmt.Errorf("recording cache entry for %q: %w", path, err)
	}
	return res, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "apexsem",
		Short: "Apex semantic analysis core",
		Long:  "Compile, resolve, and inspect the cross-reference graph for Apex classes and triggers.",
	}

	var sourceRoots []string
	var cacheDSN string

	loadConfig := func() (*config.Config, error) {
		cfg := config.Defaults()
		if len(sourceRoots) > 0 {
			cfg.SourceRoots = sourceRoots
		} else {
			cfg.SourceRoots = []string{"."}
		}
		if cacheDSN != "" {
			cfg.CacheDSN = cacheDSN
		}
		return cfg, cfg.Validate()
	}

	compileCmd := &cobra.Command{
		Use:   "compile <file> [file...]",
		Short: "Compile one or more Apex files and print their symbols.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			e, err := newEngine(cfg)
			if err != nil {
				return err
			}
			defer e.close()

			for _, path := range args {
				res, err := e.compileFile(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				printResult(path, res)
			}
			return nil
		},
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolve a symbol by simple or qualified name, loading files on demand.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			e, err := newEngine(cfg)
			if err != nil {
				return err
			}
			defer e.close()

			sym, err := e.resolver.Resolve(context.Background(), args[0], registry.ResolveContext{})
			if err != nil {
				return err
			}
			if sym == nil {
				fmt.Printf("%s: not found\n", args[0])
				return nil
			}
			fmt.Printf("%s -> %s (id %d)\n", args[0], sym.Kind, sym.ID)
			return nil
		},
	}

	var showCycles bool
	graphCmd := &cobra.Command{
		Use:   "graph <file> [file...]",
		Short: "Compile files into the cross-reference graph; with --cycles, print its cycles.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			e, err := newEngine(cfg)
			if err != nil {
				return err
			}
			defer e.close()

			for _, path := range args {
				if _, err := e.compileFile(path); err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
			}

			if showCycles {
				for _, cycle := range e.graph.DetectCycles() {
					fmt.Printf("cycle: %v\n", cycle)
				}
			}
			return nil
		},
	}
	graphCmd.Flags().BoolVar(&showCycles, "cycles", false, "Print detected inheritance/reference cycles.")

	rootCmd.PersistentFlags().StringSliceVar(&sourceRoots, "source-root", nil, "Directory to search for candidate files (repeatable).")
	rootCmd.PersistentFlags().StringVar(&cacheDSN, "cache-dsn", "", "Compile-result cache DSN (sqlite file path or libsql:// URL).")

	rootCmd.AddCommand(compileCmd, resolveCmd, graphCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printResult(path string, res *compiler.Result) {
	fmt.Printf("%s:\n", path)
	for _, sym := range res.Table.GetAllSymbols() {
		fmt.Printf("  %s %s (id %d)\n", sym.Kind, sym.Name, sym.ID)
	}
	for _, d := range res.Errors {
		fmt.Printf("  %s\n", d.String())
	}
	for _, d := range res.Warnings {
		fmt.Printf("  %s\n", d.String())
	}
}
