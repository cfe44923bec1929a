// Package diagnostics implements the ErrorReporter sink consumed by the
// modifier/annotation validators and the parse-tree listener, plus the
// leveled Logger contract consumed elsewhere in the core.
package diagnostics

import (
	"fmt"
	"log"
	"os"
)

// Severity is the closed set of diagnostic severities.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind distinguishes the error taxonomy tiers described in spec.md §7.
type Kind string

const (
	KindSemantic   Kind = "semantic"
	KindStructural Kind = "structural"
	KindLookup     Kind = "lookup"
	KindInput      Kind = "input"
)

// Diagnostic is one reported finding: a rule violation or an internal
// fault, always anchored to a source location.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Rule     string // e.g. "R1".."R16"; empty for structural/input diagnostics
	Line     int
	Column   int
	FilePath string
}

func (d Diagnostic) String() string {
	if d.Rule != "" {
		return fmt.Sprintf("%s:%d:%d: %s [%s] %s", d.FilePath, d.Line, d.Column, d.Severity, d.Rule, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s %s", d.FilePath, d.Line, d.Column, d.Severity, d.Message)
}

// ErrorReporter is the sink validators and the listener write findings to.
// It is implemented here by Collector; callers needing a no-op or a
// test double can implement the same two methods directly.
type ErrorReporter interface {
	AddError(message, rule string, line, column int, filePath string)
	AddWarning(message, rule string, line, column int, filePath string)
}

// Collector accumulates diagnostics for one compilation. It is not
// safe for concurrent use; one Collector belongs to exactly one
// single-threaded compile, per spec.md §5.
type Collector struct {
	filePath string
	findings []Diagnostic
}

// NewCollector returns a Collector scoped to filePath.
func NewCollector(filePath string) *Collector {
	return &Collector{filePath: filePath}
}

// AddError appends a KindSemantic error. rule may be empty for
// non-rule-driven faults (callers that need KindStructural/KindInput
// should use AddStructural/AddInput instead).
func (c *Collector) AddError(message, rule string, line, column int, filePath string) {
	c.add(KindSemantic, SeverityError, message, rule, line, column, filePath)
}

// AddWarning appends a KindSemantic warning.
func (c *Collector) AddWarning(message, rule string, line, column int, filePath string) {
	c.add(KindSemantic, SeverityWarning, message, rule, line, column, filePath)
}

// AddStructural records an internal scope-stack inconsistency (spec.md §7,
// "Structural" row): recorded as a KindStructural error, and the table is
// still returned; nothing else marks the file.
func (c *Collector) AddStructural(message string, line, column int) {
	c.add(KindStructural, SeverityError, message, "", line, column, c.filePath)
}

// AddInput records a fatal-to-this-compilation-only input fault (a null or
// invalid parse tree root).
func (c *Collector) AddInput(message string) {
	c.add(KindInput, SeverityError, message, "", 0, 0, c.filePath)
}

func (c *Collector) add(kind Kind, sev Severity, message, rule string, line, column int, filePath string) {
	if filePath == "" {
		filePath = c.filePath
	}
	c.findings = append(c.findings, Diagnostic{
		Kind: kind, Severity: sev, Message: message, Rule: rule,
		Line: line, Column: column, FilePath: filePath,
	})
}

// All returns every diagnostic recorded so far, in recording order.
func (c *Collector) All() []Diagnostic { return c.findings }

// Errors returns only SeverityError diagnostics.
func (c *Collector) Errors() []Diagnostic {
	return c.filter(SeverityError)
}

// Warnings returns only SeverityWarning diagnostics.
func (c *Collector) Warnings() []Diagnostic {
	return c.filter(SeverityWarning)
}

func (c *Collector) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.findings {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any SeverityError diagnostic was recorded.
func (c *Collector) HasErrors() bool {
	for _, d := range c.findings {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Logger is a minimal leveled-logging contract with lazy message
// construction, per spec.md §6 ("Logger: leveled logging with lazy
// message construction"). StdLogger implements it over the standard
// library's log.Logger, matching the plain stderr-printf style the
// teacher codebase uses for its own diagnostics (see mcp/logging.go)
// rather than pulling in a structured-logging dependency the corpus
// itself never depends on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Level gates which Logger calls are actually written.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// StdLogger is a Logger backed by a standard library *log.Logger, writing
// to stderr by default.
type StdLogger struct {
	level Level
	out   *log.Logger
}

// NewStdLogger returns a StdLogger at the given minimum level, writing to
// os.Stderr with a timestamp-free prefix so output stays diffable in
// tests.
func NewStdLogger(level Level) *StdLogger {
	return &StdLogger{level: level, out: log.New(os.Stderr, "", 0)}
}

func (l *StdLogger) Debugf(format string, args ...any) { l.logAt(LevelDebug, "DEBUG", format, args) }
func (l *StdLogger) Infof(format string, args ...any)  { l.logAt(LevelInfo, "INFO", format, args) }
func (l *StdLogger) Warnf(format string, args ...any)  { l.logAt(LevelWarn, "WARN", format, args) }
func (l *StdLogger) Errorf(format string, args ...any) { l.logAt(LevelError, "ERROR", format, args) }

func (l *StdLogger) logAt(min Level, tag, format string, args []any) {
	if l.level > min {
		return
	}
	l.out.Printf("[%s] %s", tag, fmt.Sprintf(format, args...))
}
