// Package reference implements the per-file reference model described in
// spec.md §4.6: one record per expression context the listener walks
// through, plus a chained-expression variant that folds a dotted access
// path into a single entry.
package reference

import (
	"strings"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
)

// Context is the closed set of expression shapes a reference can arise
// from.
type Context string

const (
	ContextVariableUsage      Context = "variable_usage"
	ContextMethodCall         Context = "method_call"
	ContextFieldAccess        Context = "field_access"
	ContextTypeReference      Context = "type_reference"
	ContextConstructorCall    Context = "constructor_call"
	ContextStaticMemberAccess Context = "static_member_access"
	ContextChainedType        Context = "chained_type"
)

// Reference is one resolved-or-not usage site: a name the listener saw in
// an expression position, where it was seen, and which symbol lexically
// encloses it.
type Reference struct {
	Name             string
	Context          Context
	Location         core.Location
	EnclosingSymbolID symbol.ID
}

// Entry is anything a SymbolTable can store in its per-file reference
// list: a plain Reference, a ChainedSymbolReference, or a
// MethodCallReference. Base returns the common Reference fields so
// callers that don't care about the variant can still read name/context/
// location/enclosing id uniformly.
type Entry interface {
	Base() *Reference
}

// ChainedSymbolReference collects a dotted-access chain (e.g.
// "acct.Owner.Profile.Name") as the nodes the listener visited, in source
// order, plus the synthesized Reference whose Context is always
// ContextChainedType and whose Name is the nodes joined by ".".
type ChainedSymbolReference struct {
	Reference
	ChainNodes []string
}

// Base implements Entry.
func (c *ChainedSymbolReference) Base() *Reference { return &c.Reference }

// MethodCallReference is a ContextMethodCall reference that also carries
// the call's argument references in declaration order, so that a chained
// expression passed as an argument (spec.md §4.6, scenario 6) is both a
// standalone ChainedSymbolReference in the file's reference list *and*
// reachable from the call it was passed to.
type MethodCallReference struct {
	Reference
	Arguments []Entry
}

// Base implements Entry.
func (m *MethodCallReference) Base() *Reference { return &m.Reference }

// NewMethodCall builds a MethodCallReference with the given argument
// references attached in order.
func NewMethodCall(name string, loc core.Location, enclosing symbol.ID, args ...Entry) *MethodCallReference {
	return &MethodCallReference{
		Reference: Reference{
			Name:             name,
			Context:          ContextMethodCall,
			Location:         loc,
			EnclosingSymbolID: enclosing,
		},
		Arguments: args,
	}
}

// NewChained builds a ChainedSymbolReference from the ordered identifiers
// in a chained expression. loc should span the whole chain, not just its
// last segment.
func NewChained(nodes []string, loc core.Location, enclosing symbol.ID) *ChainedSymbolReference {
	return &ChainedSymbolReference{
		Reference: Reference{
			Name:             strings.Join(nodes, "."),
			Context:          ContextChainedType,
			Location:         loc,
			EnclosingSymbolID: enclosing,
		},
		ChainNodes: append([]string(nil), nodes...),
	}
}

// New builds a plain, single-node Reference.
func New(name string, ctx Context, loc core.Location, enclosing symbol.ID) *Reference {
	return &Reference{
		Name:             name,
		Context:          ctx,
		Location:         loc,
		EnclosingSymbolID: enclosing,
	}
}

// Base implements Entry.
func (r *Reference) Base() *Reference { return r }
