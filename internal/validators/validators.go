// Package validators implements the stateless modifier/annotation rule
// sets described in spec.md §4.4 (R1-R16). Each function takes exactly
// the inputs it needs to decide, plus an ErrorReporter sink, and never
// mutates the symbol it is validating — the listener applies a rule's
// consequences (if any) itself.
package validators

import (
	"strings"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/diagnostics"
)

// EnclosingKind narrows the enclosing-context values the rules below care
// about; a broader core.SymbolKind is passed in by the listener, but only
// these matter to duplicate-body/interface-body checks.
type EnclosingKind int

const (
	EnclosingNone EnclosingKind = iota
	EnclosingInterface
	EnclosingClass
)

// MethodModifiers checks R1/R2 against a method's modifiers.
func MethodModifiers(mods core.Modifiers, loc core.Location, filePath string, r diagnostics.ErrorReporter) {
	if mods.IsAbstract && mods.IsFinal {
		r.AddError("method cannot be both abstract and final", "R1", loc.StartLine, loc.StartCol, filePath)
	}
	if mods.IsAbstract && mods.IsStatic {
		r.AddError("method cannot be both abstract and static", "R2", loc.StartLine, loc.StartCol, filePath)
	}
}

// InterfaceMemberModifiers checks R3: an interface member must carry no
// explicit modifier at all (the listener assigns the implicit
// {public, abstract} pair itself).
func InterfaceMemberModifiers(explicitModifierCount int, loc core.Location, filePath string, r diagnostics.ErrorReporter) {
	if explicitModifierCount > 0 {
		r.AddError("interface member may not declare explicit modifiers", "R3", loc.StartLine, loc.StartCol, filePath)
	}
}

// InterfaceBodyMember checks R4-R8: the closed set of declaration kinds
// forbidden directly inside an interface body.
func InterfaceBodyMember(kind core.SymbolKind, loc core.Location, filePath string, r diagnostics.ErrorReporter) {
	switch kind {
	case core.KindClass:
		r.AddError("class declared inside an interface body", "R4", loc.StartLine, loc.StartCol, filePath)
	case core.KindInterface:
		r.AddError("interface declared inside an interface body", "R5", loc.StartLine, loc.StartCol, filePath)
	case core.KindField, core.KindProperty:
		r.AddError("field declared inside an interface body", "R6", loc.StartLine, loc.StartCol, filePath)
	case core.KindEnum:
		r.AddError("enum declared inside an interface body", "R7", loc.StartLine, loc.StartCol, filePath)
	case core.KindConstructor:
		r.AddError("constructor declared inside an interface body", "R8", loc.StartLine, loc.StartCol, filePath)
	}
}

// NestedClass checks R9/R10: a class body may contain at most one level
// of inner class, and an inner class may not reuse its outer class's
// name. enclosingClassDepth counts type-declaration ancestors that are
// classes (0 for a top-level class).
func NestedClass(name string, enclosingClassDepth int, outerName string, loc core.Location, filePath string, r diagnostics.ErrorReporter) {
	if enclosingClassDepth >= 2 {
		r.AddError("class nested more than one level deep inside another class", "R9", loc.StartLine, loc.StartCol, filePath)
	}
	if enclosingClassDepth >= 1 && strings.EqualFold(name, outerName) {
		r.AddError("inner class has the same name as its outer class", "R10", loc.StartLine, loc.StartCol, filePath)
	}
}

// ConstructorName checks R11/R12: the constructor's declared name must be
// a single identifier (never dotted) equal to the enclosing class's name.
func ConstructorName(declaredName, enclosingClassName string, loc core.Location, filePath string, r diagnostics.ErrorReporter) {
	if strings.Contains(declaredName, ".") {
		r.AddError("constructor name must not be dotted", "R11", loc.StartLine, loc.StartCol, filePath)
		return
	}
	if !strings.EqualFold(declaredName, enclosingClassName) {
		r.AddError("constructor name must equal the enclosing class name", "R12", loc.StartLine, loc.StartCol, filePath)
	}
}

// ParamSignature is the tier-1, conservative per-position comparison key
// for duplicate detection: case-insensitive originalTypeString vectors,
// per spec.md §4.4 ("differing spellings of the same semantic type...are
// not flagged at this tier").
type ParamSignature []string

// Equal reports whether two signatures match under tier-1 comparison:
// same arity, same originalTypeString per position, case-insensitive.
func (p ParamSignature) Equal(other ParamSignature) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !strings.EqualFold(p[i], other[i]) {
			return false
		}
	}
	return true
}

// DuplicateMethod checks R13 against the parameter signatures of every
// existing same-named method/constructor already in scope.
func DuplicateMethod(candidate ParamSignature, existing []ParamSignature, loc core.Location, filePath string, r diagnostics.ErrorReporter) {
	for _, sig := range existing {
		if candidate.Equal(sig) {
			r.AddError("duplicate method: same name and parameter types already declared in this scope", "R13", loc.StartLine, loc.StartCol, filePath)
			return
		}
	}
}

// DuplicateConstructor checks R14, the constructor analogue of R13.
func DuplicateConstructor(candidate ParamSignature, existing []ParamSignature, loc core.Location, filePath string, r diagnostics.ErrorReporter) {
	for _, sig := range existing {
		if candidate.Equal(sig) {
			r.AddError("duplicate constructor: identical parameter types already declared for this class", "R14", loc.StartLine, loc.StartCol, filePath)
			return
		}
	}
}

// DuplicateVariable checks R15: a variable name already declared in the
// same scope.
func DuplicateVariable(name string, existingNames []string, loc core.Location, filePath string, r diagnostics.ErrorReporter) {
	for _, n := range existingNames {
		if strings.EqualFold(n, name) {
			r.AddError("duplicate variable declaration in this scope", "R15", loc.StartLine, loc.StartCol, filePath)
			return
		}
	}
}

// OverrideResolution checks R16: an isOverride method whose parent type
// has no resolvable method of a compatible signature is a warning, not an
// error, since it may resolve once cross-file resolution runs.
func OverrideResolution(isOverride, parentResolvable, compatibleSignatureFound bool, loc core.Location, filePath string, r diagnostics.ErrorReporter) {
	if isOverride && (!parentResolvable || !compatibleSignatureFound) {
		r.AddWarning("override method has no resolvable parent method with a compatible signature", "R16", loc.StartLine, loc.StartCol, filePath)
	}
}

// LiftIsTestAnnotation implements I5: an @IsTest annotation (case-
// insensitive) on a class or method implies modifiers.isTestMethod = true.
// Returns the possibly-updated Modifiers; callers assign the result back
// onto the symbol.
func LiftIsTestAnnotation(mods core.Modifiers, annotations []core.Annotation) core.Modifiers {
	for _, ann := range annotations {
		if strings.EqualFold(ann.Name, "istest") {
			mods.IsTestMethod = true
			break
		}
	}
	return mods
}

// ImplicitInterfaceMethodModifiers returns the fixed modifier set every
// interface method carries regardless of source text, per spec.md §4.4
// ("Interface methods: implicitly {visibility: public, isAbstract: true},
// all other flags false").
func ImplicitInterfaceMethodModifiers() core.Modifiers {
	return core.Modifiers{Visibility: core.VisibilityPublic, IsAbstract: true}
}
