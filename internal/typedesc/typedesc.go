// Package typedesc parses Apex type spellings ("Map<Id, Account>",
// "fflib_Application.SelectorFactory", "Integer[]") into the pure
// core.TypeDescriptor data structure. Parsing never fails: unrecognized
// shapes degrade gracefully to a descriptor carrying just the name and the
// original spelling.
package typedesc

import (
	"strings"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
)

var primitiveNames = map[string]struct{}{
	"string": {}, "integer": {}, "long": {}, "double": {}, "decimal": {},
	"boolean": {}, "date": {}, "datetime": {}, "time": {}, "id": {},
	"blob": {}, "object": {}, "void": {},
}

var collectionHeads = map[string]struct{}{
	"list": {}, "set": {}, "map": {},
}

// Parse converts a raw type spelling from the parse tree into a
// core.TypeDescriptor, per spec.md §4.1.
func Parse(raw string) core.TypeDescriptor {
	original := raw
	trimmed := strings.TrimSpace(raw)

	td := core.TypeDescriptor{OriginalTypeString: original}
	if trimmed == "" {
		return td
	}

	body, isArray := stripArraySuffix(trimmed)
	td.IsArray = isArray

	head := genericHead(body)
	td.IsCollection = isKnownHead(head, collectionHeads)

	name, ns := splitNamespace(body)
	td.Name = name
	td.Namespace = ns

	td.IsPrimitive = isKnownHead(head, primitiveNames)

	return td
}

// stripArraySuffix reports whether body ends in "[]" and returns the body
// with the suffix removed.
func stripArraySuffix(body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	if strings.HasSuffix(trimmed, "[]") {
		return strings.TrimSpace(strings.TrimSuffix(trimmed, "[]")), true
	}
	return trimmed, false
}

// genericHead returns the identifier preceding any "<...>" generic
// argument list, lowercased for case-insensitive comparison.
func genericHead(body string) string {
	if idx := strings.IndexByte(body, '<'); idx >= 0 {
		return strings.ToLower(strings.TrimSpace(body[:idx]))
	}
	return strings.ToLower(body)
}

func isKnownHead(head string, set map[string]struct{}) bool {
	_, ok := set[head]
	return ok
}

// splitNamespace extracts the rightmost identifier as the type's simple
// name, and — when the (non-generic) head contains a ".", the leftmost
// segment as its namespace. Generic arguments are never treated as
// namespace-qualified at the top level; "Map<Id, Account>" has no
// namespace even though its argument "Account" might.
func splitNamespace(body string) (string, *core.Namespace) {
	head := body
	rest := ""
	if idx := strings.IndexByte(body, '<'); idx >= 0 {
		head = body[:idx]
		rest = body[idx:]
	}
	head = strings.TrimSpace(head)

	_ = rest // generic arguments never contribute to the namespace/name split

	dot := strings.LastIndexByte(head, '.')
	if dot < 0 {
		return head, nil
	}

	nsName := head[:dot]
	simple := head[dot+1:]
	if simple == "" {
		return head, nil
	}

	var ns *core.Namespace
	if strings.EqualFold(nsName, core.BuiltInNamespace.Name) {
		ns = core.BuiltInNamespace
	} else {
		ns = &core.Namespace{Name: nsName}
	}
	return simple, ns
}
