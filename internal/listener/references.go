package listener

import (
	"github.com/forcedotcom/apex-semantic-core/internal/parsetree"
	"github.com/forcedotcom/apex-semantic-core/internal/reference"
)

// emitReference records e in document order on the table and, if this
// reference was produced while inside a method call's argument list,
// also attaches it to that call's Arguments (spec.md §4.6, "when a
// chained expression appears as a method-call argument, it must also be
// attached to the call's parameter list").
func (l *Listener) emitReference(e reference.Entry) {
	l.table.AddReference(e)
	if n := len(l.argStack); n > 0 {
		l.argStack[n-1] = append(l.argStack[n-1], e)
	}
}

func (l *Listener) enterSimpleRef(n parsetree.Node, ctx reference.Context) {
	loc := locFromToken(n.Token())
	l.emitReference(reference.New(n.Token().Text, ctx, loc, l.enclosingID()))
}

func (l *Listener) enterChainedExpression(n parsetree.Node) {
	loc := locFromToken(n.Token())
	var nodes []string
	for _, c := range n.Children() {
		nodes = append(nodes, c.Token().Text)
	}
	l.emitReference(reference.NewChained(nodes, loc, l.enclosingID()))
}

func (l *Listener) enterMethodCall(n parsetree.Node) {
	l.argStack = append(l.argStack, nil)
	l.methodCallStack = append(l.methodCallStack, methodCallFrame{
		name: n.Token().Text,
		loc:  locFromToken(n.Token()),
	})
}

func (l *Listener) exitMethodCall(n parsetree.Node) {
	if len(l.methodCallStack) == 0 {
		return
	}
	frame := l.methodCallStack[len(l.methodCallStack)-1]
	l.methodCallStack = l.methodCallStack[:len(l.methodCallStack)-1]

	args := l.argStack[len(l.argStack)-1]
	l.argStack = l.argStack[:len(l.argStack)-1]

	ref := reference.NewMethodCall(frame.name, frame.loc, l.enclosingID(), args...)
	l.emitReference(ref)
}
