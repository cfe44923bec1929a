package listener

// Node kind strings the Listener understands. A concrete Apex grammar
// binding (out of scope here; see spec.md §1) translates its own node
// types to these before handing a parsetree.Tree to Walk, or implements
// parsetree.Node directly with these as Kind() values.
//
// Declaration nodes carry their own name/type spellings as Token().Text
// and expose structured children under fixed marker kinds the listener
// peeks at directly (KindSuperClass, KindInterfaces, KindDeclarators, and
// the "parameters" node kind, ...); the listener does not wait for the walker to
// reach those children before reading them, since a declaration's shape
// must be known as soon as it is entered (spec.md §4.5).
const (
	KindCompilationUnit = "compilationUnit"

	KindAnnotation      = "annotation"
	KindAnnotationParam = "annotationParam"
	KindModifier        = "modifier"

	KindClassDeclaration           = "classDeclaration"
	KindInterfaceDeclaration       = "interfaceDeclaration"
	KindEnumDeclaration            = "enumDeclaration"
	KindEnumConstants              = "enumConstants"
	KindTriggerUnit                = "triggerUnit"
	KindMethodDeclaration          = "methodDeclaration"
	KindConstructorDeclaration     = "constructorDeclaration"
	KindInterfaceMethodDeclaration = "interfaceMethodDeclaration"
	KindFormalParameter            = "formalParameter"
	KindFieldDeclaration           = "fieldDeclaration"
	KindLocalVariableDeclaration   = "localVariableDeclaration"
	KindBlock                      = "block"

	// Structural marker kinds: never dispatched to a handler of their
	// own, only peeked at via findChild from an owning declaration.
	KindSuperClass  = "superClass"
	KindInterfaces  = "interfaces"
	KindInterfaceRef = "interfaceRef"
	KindReturnType  = "returnType"
	KindParamType   = "paramType"
	KindFieldType   = "fieldType"
	KindVarType     = "varType"
	KindDeclarators = "declarators"
	KindIdentifier  = "identifier"

	// Expression/reference-producing kinds (spec.md §4.6).
	KindVariableUsage      = "variableUsage"
	KindMethodCall         = "methodCall"
	KindFieldAccess        = "fieldAccess"
	KindTypeReference      = "typeReference"
	KindConstructorCall    = "constructorCall"
	KindStaticMemberAccess = "staticMemberAccess"
	KindChainedExpression  = "chainedExpression"
	KindChainSegment       = "chainSegment"
)
