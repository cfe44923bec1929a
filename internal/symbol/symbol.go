// Package symbol defines the Symbol representation: a single flat struct
// discriminated by Kind, rather than a hierarchy of kind-specific types.
// Capabilities that spec.md describes as cutting across kinds ("has
// modifiers", "has annotations", "has location", "has parent id") are
// exposed as accessor functions over the common fields, per the design
// note in spec.md §9 ("a common prefix record or an accessor function, not
// inheritance").
package symbol

import (
	"strings"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
)

// ID uniquely identifies a symbol within one file (or, when the owning
// SymbolTable was built in cross-process mode, across files/processes
// via a random UUID-derived value packed into the low bits). Callers should treat
// it as opaque.
type ID uint64

// Symbol is one entry in a SymbolTable: a class, interface, enum, enum
// value, trigger, method, constructor, field, property, parameter,
// variable, or block scope.
//
// Every field below is either common to all kinds or is documented as
// meaningful only for specific kinds; reading a field outside its kind's
// applicability yields its Go zero value, never a panic.
type Symbol struct {
	ID       ID
	ParentID ID // see symboltable invariant I2: the enclosing BlockScope's id; a BlockScope that bodies a declaration instead has that declaration's id
	HasParent bool

	Name     string
	Kind     core.SymbolKind
	Location core.Location
	Key      core.Key

	Modifiers   core.Modifiers
	Annotations []core.Annotation

	// Type-like (Class/Interface/Enum/Trigger) fields.
	SuperClass *string
	Interfaces []string
	EnumValues []ID // ordered EnumValue ids, populated for Kind == KindEnum

	// Method/Constructor fields.
	ReturnType   core.TypeDescriptor
	Parameters   []ID // ordered Parameter ids, declaration order
	IsConstructor bool

	// Field/Property/Parameter/Variable/EnumValue fields.
	Type core.TypeDescriptor

	// BlockScope fields.
	ScopeType core.ScopeType
}

// NameEqualFold reports whether two symbol names are equal under Apex's
// case-insensitive comparison rule, while Name itself is stored
// case-sensitively (spec.md §3: "case-sensitive stored, case-insensitive
// compared").
func NameEqualFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Modifiable is the "has modifiers" capability: every declaration-owning
// symbol satisfies it trivially because Modifiers is a common field, not an
// interface method — this accessor exists so callers that only care about
// the capability don't need to know about Kind at all.
func Modifiable(s *Symbol) *core.Modifiers {
	return &s.Modifiers
}

// Annotated is the "has annotations" capability accessor.
func Annotated(s *Symbol) []core.Annotation {
	return s.Annotations
}

// Located is the "has location" capability accessor.
func Located(s *Symbol) core.Location {
	return s.Location
}

// IsTest reports whether a class or method carries an @IsTest annotation
// (case-insensitive), independent of the derived Modifiers.IsTestMethod
// flag — useful when validating I5 itself.
func IsTest(s *Symbol) bool {
	for _, ann := range s.Annotations {
		if strings.EqualFold(ann.Name, "istest") {
			return true
		}
	}
	return false
}

// New constructs a Symbol with the given kind, name, and location; callers
// fill in kind-specific fields afterward. ID/ParentID/Key are set by
// symboltable.SymbolTable.AddSymbol once the enclosing scope is known.
func New(kind core.SymbolKind, name string, loc core.Location) *Symbol {
	return &Symbol{
		Kind:     kind,
		Name:     name,
		Location: loc,
	}
}
