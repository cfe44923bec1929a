// Package listener implements the Parse-Tree Listener described in
// spec.md §4.5: enter/exit callbacks that build a SymbolTable while
// driving the modifier/annotation validators, plus the integrated
// Reference Collector from §4.6 in the same pass.
package listener

import (
	"fmt"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/diagnostics"
	"github.com/forcedotcom/apex-semantic-core/internal/parsetree"
	"github.com/forcedotcom/apex-semantic-core/internal/reference"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
	"github.com/forcedotcom/apex-semantic-core/internal/symboltable"
	"github.com/forcedotcom/apex-semantic-core/internal/typedesc"
	"github.com/forcedotcom/apex-semantic-core/internal/validators"
)

// Listener drives one SymbolTable build from one ParseTree walk. It
// satisfies parsetree.Listener. One Listener belongs to exactly one
// single-threaded compile (spec.md §5); it carries no state that could
// be safely reused across files.
type Listener struct {
	table    *symboltable.SymbolTable
	reporter *diagnostics.Collector
	filePath string

	pendingMods           core.Modifiers
	pendingAnns           []core.Annotation
	pendingModifierCount  int

	classNameStack  []string
	interfaceDepth  int
	blockDepth      int
	methodStack     []*symbol.Symbol
	enumStack       []*symbol.Symbol

	argStack        [][]reference.Entry
	methodCallStack []methodCallFrame
}

type methodCallFrame struct {
	name string
	loc  core.Location
}

// New creates a Listener that will build a SymbolTable for filePath
// using the given id-minting mode.
func New(filePath string, mode symboltable.IDMode) *Listener {
	return &Listener{
		table:    symboltable.New(filePath, mode),
		reporter: diagnostics.NewCollector(filePath),
		filePath: filePath,
	}
}

// Table returns the SymbolTable built so far (or, after a Walk,
// the completed table).
func (l *Listener) Table() *symboltable.SymbolTable { return l.table }

// Reporter returns the diagnostics collected so far.
func (l *Listener) Reporter() *diagnostics.Collector { return l.reporter }

// EnterNode dispatches to the enter handler for n's kind, if any. Every
// handler runs behind a fault barrier: a panic is converted to a
// structural diagnostic at n's token location rather than aborting the
// walk (spec.md §4.5, §7).
func (l *Listener) EnterNode(n parsetree.Node) {
	defer l.recoverFault("enter", n)
	switch n.Kind() {
	case KindAnnotation:
		l.enterAnnotation(n)
	case KindModifier:
		l.enterModifier(n)
	case KindClassDeclaration:
		l.enterClass(n)
	case KindInterfaceDeclaration:
		l.enterInterface(n)
	case KindEnumDeclaration:
		l.enterEnum(n)
	case KindEnumConstants:
		l.enterEnumConstants(n)
	case KindTriggerUnit:
		l.enterTrigger(n)
	case KindMethodDeclaration:
		l.enterMethod(n)
	case KindConstructorDeclaration:
		l.enterConstructor(n)
	case KindInterfaceMethodDeclaration:
		l.enterInterfaceMethod(n)
	case KindFormalParameter:
		l.enterFormalParameter(n)
	case KindFieldDeclaration:
		l.enterField(n)
	case KindLocalVariableDeclaration:
		l.enterLocalVar(n)
	case KindBlock:
		l.enterBlock(n)
	case KindVariableUsage:
		l.enterSimpleRef(n, reference.ContextVariableUsage)
	case KindFieldAccess:
		l.enterSimpleRef(n, reference.ContextFieldAccess)
	case KindTypeReference:
		l.enterSimpleRef(n, reference.ContextTypeReference)
	case KindConstructorCall:
		l.enterSimpleRef(n, reference.ContextConstructorCall)
	case KindStaticMemberAccess:
		l.enterSimpleRef(n, reference.ContextStaticMemberAccess)
	case KindChainedExpression:
		l.enterChainedExpression(n)
	case KindMethodCall:
		l.enterMethodCall(n)
	}
}

// ExitNode dispatches to the exit handler for n's kind, if any, under the
// same fault barrier as EnterNode.
func (l *Listener) ExitNode(n parsetree.Node) {
	defer l.recoverFault("exit", n)
	switch n.Kind() {
	case KindClassDeclaration:
		l.exitClass()
	case KindInterfaceDeclaration:
		l.exitInterface()
	case KindEnumDeclaration:
		l.exitEnum()
	case KindTriggerUnit:
		l.exitTrigger()
	case KindMethodDeclaration:
		l.exitMethod()
	case KindConstructorDeclaration:
		l.exitConstructor()
	case KindInterfaceMethodDeclaration:
		l.exitInterfaceMethod()
	case KindBlock:
		l.exitBlock()
	case KindMethodCall:
		l.exitMethodCall(n)
	}
}

func (l *Listener) recoverFault(phase string, n parsetree.Node) {
	if r := recover(); r != nil {
		tok := n.Token()
		l.reporter.AddStructural(fmt.Sprintf("internal error during %s(%s): %v", phase, n.Kind(), r), tok.Line, tok.Column)
	}
}

// consumePending returns the accumulated pending modifier/annotation
// state, lifts @IsTest per I5, and resets all pending state to its
// default so nested declarations never observe a parent's leftovers
// (spec.md §4.5, "modifier and annotation isolation").
func (l *Listener) consumePending() (core.Modifiers, []core.Annotation) {
	mods, anns := l.pendingMods, l.pendingAnns
	mods = validators.LiftIsTestAnnotation(mods, anns)
	l.pendingMods = core.Modifiers{}
	l.pendingAnns = nil
	l.pendingModifierCount = 0
	return mods, anns
}

func (l *Listener) enclosingID() symbol.ID {
	return l.table.CurrentScope().Owner.ID
}

func (l *Listener) currentMethod() *symbol.Symbol {
	if n := len(l.methodStack); n > 0 {
		return l.methodStack[n-1]
	}
	return nil
}

func (l *Listener) pushMethod(s *symbol.Symbol) { l.methodStack = append(l.methodStack, s) }
func (l *Listener) popMethod() {
	if n := len(l.methodStack); n > 0 {
		l.methodStack = l.methodStack[:n-1]
	}
}

func (l *Listener) currentEnum() *symbol.Symbol {
	if n := len(l.enumStack); n > 0 {
		return l.enumStack[n-1]
	}
	return nil
}

func (l *Listener) enclosingClassName() string {
	if n := len(l.classNameStack); n > 0 {
		return l.classNameStack[n-1]
	}
	return ""
}

func findChild(n parsetree.Node, kind string) parsetree.Node {
	for _, c := range n.Children() {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

func locFromToken(t parsetree.Token) core.Location {
	end := t.Column
	if n := len(t.Text); n > 0 {
		end += n - 1
	}
	return core.Location{StartLine: t.Line, StartCol: t.Column, EndLine: t.Line, EndCol: end}
}

// paramSignature resolves a parameter id list to its originalTypeString
// vector, for tier-1 duplicate comparison (spec.md §4.4).
func (l *Listener) paramSignature(ids []symbol.ID) validators.ParamSignature {
	out := make(validators.ParamSignature, len(ids))
	for i, id := range ids {
		if s, ok := l.table.LookupByID(id); ok {
			out[i] = s.Type.OriginalTypeString
		}
	}
	return out
}

// peekParamTypes reads the raw parameter type spellings from a
// "parameters" marker child, without waiting for the walker to reach the
// formalParameter children themselves.
func peekParamTypes(n parsetree.Node) []string {
	params := findChild(n, "parameters")
	if params == nil {
		return nil
	}
	var out []string
	for _, p := range params.Children() {
		if pt := findChild(p, KindParamType); pt != nil {
			out = append(out, pt.Token().Text)
		} else {
			out = append(out, "")
		}
	}
	return out
}

func existingSignaturesFor(l *Listener, name string, kind core.SymbolKind) []validators.ParamSignature {
	var out []validators.ParamSignature
	for _, s := range l.table.CurrentScope().SymbolsNamed(name) {
		if s.Kind == kind {
			out = append(out, l.paramSignature(s.Parameters))
		}
	}
	return out
}
