package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// apexExtensions are the file suffixes a candidate declaration can live
// in, per spec.md §1 ("Apex classes and triggers").
var apexExtensions = []string{".cls", ".trigger"}

// GlobFileLocator implements FileLocator by recursively scanning a set
// of source roots and doublestar-matching candidate file names, the
// same matchPattern/os.ReadDir approach the teacher's FileWalker uses
// for include/exclude glob matching.
type GlobFileLocator struct {
	Roots []string
}

// Locate returns every file under l.Roots whose base name (without
// extension) matches name's leading simple segment. A qualified name
// like "Outer.Inner" is located by its leading segment ("Outer"); the
// member lookup for "Inner" happens against that file's SymbolTable
// after it is compiled (spec.md §4.9 step 4).
func (l *GlobFileLocator) Locate(name string) []string {
	leading := name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		leading = name[:i]
	}

	patterns := make([]string, 0, len(apexExtensions))
	for _, ext := range apexExtensions {
		patterns = append(patterns, leading+ext)
	}

	var matches []string
	for _, root := range l.Roots {
		l.walk(root, patterns, &matches)
	}
	return matches
}

func (l *GlobFileLocator) walk(root string, patterns []string, matches *[]string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		full := filepath.Join(root, entry.Name())
		if entry.IsDir() {
			l.walk(full, patterns, matches)
			continue
		}
		for _, pattern := range patterns {
			if matched, err := doublestar.PathMatch(pattern, entry.Name()); err == nil && matched {
				*matches = append(*matches, full)
				break
			}
		}
	}
}
