package listener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/parsetree"
	"github.com/forcedotcom/apex-semantic-core/internal/reference"
	"github.com/forcedotcom/apex-semantic-core/internal/symboltable"
)

func tok(text string) parsetree.Token { return parsetree.Token{Line: 1, Column: 0, Text: text} }

func tokAt(text string, line int) parsetree.Token { return parsetree.Token{Line: line, Column: 0, Text: text} }

func runWalk(t *testing.T, root parsetree.Node) *Listener {
	t.Helper()
	l := New("Test.cls", symboltable.IDModeSequential)
	parsetree.Walk(&parsetree.FixtureTree{RootNode: root}, l)
	return l
}

// Scenario 1 (spec.md §8): constructor parent linkage.
// public class C { public C() {} }
func TestScenario_ConstructorParentLinkage(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindModifier, tok("public")),
		parsetree.N(KindClassDeclaration, tok("C"),
			parsetree.N("classBody", tok(""),
				parsetree.N(KindModifier, tok("public")),
				parsetree.N(KindConstructorDeclaration, tok("C"),
					parsetree.N("parameters", tok("")),
					parsetree.N("methodBody", tok("")),
				),
			),
		),
	)
	l := runWalk(t, root)
	require.Empty(t, l.Reporter().Errors())

	all := l.Table().GetAllSymbols()

	var classID, blockID, ctorID = -1, -1, -1
	for _, s := range all {
		switch {
		case s.Kind == core.KindClass && s.Name == "C":
			classID = int(s.ID)
		case s.Kind == core.KindBlockScope && s.ScopeType == core.ScopeClass:
			blockID = int(s.ID)
		case s.Kind == core.KindConstructor:
			ctorID = int(s.ID)
		}
	}
	require.NotEqual(t, -1, classID)
	require.NotEqual(t, -1, blockID)
	require.NotEqual(t, -1, ctorID)

	for _, s := range all {
		if int(s.ID) == blockID {
			assert.Equal(t, classID, int(s.ParentID), "class's own block scope parents to the type symbol's id")
		}
		if int(s.ID) == ctorID {
			assert.Equal(t, blockID, int(s.ParentID), "constructor parents to the block scope's id")
			assert.True(t, s.IsConstructor)
			assert.Equal(t, "void", s.ReturnType.Name)
		}
	}
}

// Scenario 2: qualified field type.
// public class A { public fflib_Application.SelectorFactory Selector; }
func TestScenario_QualifiedFieldType(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindClassDeclaration, tok("A"),
			parsetree.N("classBody", tok(""),
				parsetree.N(KindModifier, tok("public")),
				parsetree.N(KindFieldDeclaration, tok(""),
					parsetree.N(KindFieldType, tok("fflib_Application.SelectorFactory")),
					parsetree.N(KindDeclarators, tok(""),
						parsetree.N(KindIdentifier, tok("Selector")),
					),
				),
			),
		),
	)
	l := runWalk(t, root)
	require.Empty(t, l.Reporter().Errors())

	var found bool
	for _, s := range l.Table().GetAllSymbols() {
		if s.Kind == core.KindProperty && s.Name == "Selector" {
			found = true
			assert.Equal(t, "SelectorFactory", s.Type.Name)
			assert.Equal(t, "fflib_Application.SelectorFactory", s.Type.OriginalTypeString)
		}
	}
	assert.True(t, found)
}

// Scenario 3: method overload tolerated, exact duplicate rejected.
func TestScenario_OverloadToleratedDuplicateRejected(t *testing.T) {
	method := func(paramType string) parsetree.Node {
		return parsetree.N(KindMethodDeclaration, tok("m"),
			parsetree.N(KindReturnType, tok("void")),
			parsetree.N("parameters", tok(""),
				parsetree.N(KindFormalParameter, tok("p"),
					parsetree.N(KindParamType, tok(paramType)),
				),
			),
			parsetree.N("methodBody", tok("")),
		)
	}
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindClassDeclaration, tok("C"),
			parsetree.N("classBody", tok(""),
				method("Integer"),
				method("String"),
				method("Integer"),
			),
		),
	)
	l := runWalk(t, root)

	methodCount := 0
	for _, s := range l.Table().GetAllSymbols() {
		if s.Kind == core.KindMethod {
			methodCount++
		}
	}
	assert.Equal(t, 3, methodCount, "all three overload attempts are registered")

	errs := l.Reporter().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "R13", errs[0].Rule)
}

// Scenario 4: dotted constructor.
// public class O { public class I { public I.I2() {} } }
func TestScenario_DottedConstructor(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindClassDeclaration, tok("O"),
			parsetree.N("classBody", tok(""),
				parsetree.N(KindClassDeclaration, tok("I"),
					parsetree.N("classBody", tok(""),
						parsetree.N(KindConstructorDeclaration, tok("I.I2"),
							parsetree.N("parameters", tok("")),
							parsetree.N("methodBody", tok("")),
						),
					),
				),
			),
		),
	)
	l := runWalk(t, root)
	errs := l.Reporter().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "R11", errs[0].Rule)

	for _, s := range l.Table().GetAllSymbols() {
		if s.Kind == core.KindConstructor {
			assert.Equal(t, "I", s.Name, "I4: constructor name is always the enclosing class name regardless of the declared spelling")
		}
	}
}

// Scenario 5: @isTest lifts to modifier.
// @IsTest public class T { @ISTEST static void m() {} }
func TestScenario_IsTestLiftsToModifier(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindAnnotation, tok("IsTest")),
		parsetree.N(KindModifier, tok("public")),
		parsetree.N(KindClassDeclaration, tok("T"),
			parsetree.N("classBody", tok(""),
				parsetree.N(KindAnnotation, tok("ISTEST")),
				parsetree.N(KindModifier, tok("static")),
				parsetree.N(KindMethodDeclaration, tok("m"),
					parsetree.N(KindReturnType, tok("void")),
					parsetree.N("parameters", tok("")),
					parsetree.N("methodBody", tok("")),
				),
			),
		),
	)
	l := runWalk(t, root)
	require.Empty(t, l.Reporter().Errors())

	var classChecked, methodChecked bool
	for _, s := range l.Table().GetAllSymbols() {
		if s.Kind == core.KindClass && s.Name == "T" {
			classChecked = true
			assert.True(t, s.Modifiers.IsTestMethod)
			require.Len(t, s.Annotations, 1)
			assert.Equal(t, "IsTest", s.Annotations[0].Name)
		}
		if s.Kind == core.KindMethod && s.Name == "m" {
			methodChecked = true
			assert.True(t, s.Modifiers.IsTestMethod)
			assert.True(t, s.Modifiers.IsStatic)
			require.Len(t, s.Annotations, 1)
			assert.Equal(t, "ISTEST", s.Annotations[0].Name)
		}
	}
	assert.True(t, classChecked)
	assert.True(t, methodChecked)
}

// Scenario 6: chained-expression reference as argument.
// request.setHeader('k', URL.getOrgDomainUrl().toExternalForm());
func TestScenario_ChainedExpressionAsArgument(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindClassDeclaration, tok("C"),
			parsetree.N("classBody", tok(""),
				parsetree.N(KindMethodDeclaration, tok("run"),
					parsetree.N(KindReturnType, tok("void")),
					parsetree.N("parameters", tok("")),
					parsetree.N("methodBody", tok(""),
						parsetree.N(KindMethodCall, tok("setHeader"),
							parsetree.N("literal", tok("'k'")),
							parsetree.N(KindChainedExpression, tok(""),
								parsetree.N(KindChainSegment, tok("URL")),
								parsetree.N(KindChainSegment, tok("getOrgDomainUrl")),
								parsetree.N(KindChainSegment, tok("toExternalForm")),
							),
						),
					),
				),
			),
		),
	)
	l := runWalk(t, root)

	refs := l.Table().GetAllReferences()
	var call *reference.MethodCallReference
	var chained *reference.ChainedSymbolReference
	for _, e := range refs {
		switch v := e.(type) {
		case *reference.MethodCallReference:
			call = v
		case *reference.ChainedSymbolReference:
			chained = v
		}
	}
	require.NotNil(t, call)
	require.NotNil(t, chained)

	assert.Equal(t, "setHeader", call.Name)
	assert.Equal(t, reference.ContextMethodCall, call.Context)

	assert.Equal(t, []string{"URL", "getOrgDomainUrl", "toExternalForm"}, chained.ChainNodes)
	assert.Equal(t, "URL.getOrgDomainUrl.toExternalForm", chained.Name)
	assert.Equal(t, reference.ContextChainedType, chained.Context)

	require.Len(t, call.Arguments, 1, "the literal argument isn't reference-worthy; only the chain is tracked")
	assert.Same(t, chained, call.Arguments[0])
}

func TestInterfaceMemberModifiersRejected(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindInterfaceDeclaration, tok("Greeter"),
			parsetree.N("interfaceBody", tok(""),
				parsetree.N(KindModifier, tok("public")),
				parsetree.N(KindInterfaceMethodDeclaration, tok("greet"),
					parsetree.N(KindReturnType, tok("void")),
					parsetree.N("parameters", tok("")),
				),
			),
		),
	)
	l := runWalk(t, root)
	errs := l.Reporter().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "R3", errs[0].Rule)

	for _, s := range l.Table().GetAllSymbols() {
		if s.Kind == core.KindMethod {
			assert.Equal(t, core.VisibilityPublic, s.Modifiers.Visibility)
			assert.True(t, s.Modifiers.IsAbstract)
		}
	}
}

func TestNestedClassThreeLevelsDeep(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindClassDeclaration, tok("A"),
			parsetree.N("classBody", tok(""),
				parsetree.N(KindClassDeclaration, tok("B"),
					parsetree.N("classBody", tok(""),
						parsetree.N(KindClassDeclaration, tok("C"),
							parsetree.N("classBody", tok("")),
						),
					),
				),
			),
		),
	)
	l := runWalk(t, root)
	errs := l.Reporter().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "R9", errs[0].Rule)
}

func TestLocalVariableDuplicateInSameScope(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindClassDeclaration, tok("C"),
			parsetree.N("classBody", tok(""),
				parsetree.N(KindMethodDeclaration, tok("run"),
					parsetree.N(KindReturnType, tok("void")),
					parsetree.N("parameters", tok("")),
					parsetree.N("methodBody", tok(""),
						parsetree.N(KindLocalVariableDeclaration, tok(""),
							parsetree.N(KindVarType, tok("Integer")),
							parsetree.N(KindDeclarators, tok(""),
								parsetree.N(KindIdentifier, tokAt("x", 2)),
							),
						),
						parsetree.N(KindLocalVariableDeclaration, tok(""),
							parsetree.N(KindVarType, tok("String")),
							parsetree.N(KindDeclarators, tok(""),
								parsetree.N(KindIdentifier, tokAt("x", 3)),
							),
						),
					),
				),
			),
		),
	)
	l := runWalk(t, root)
	errs := l.Reporter().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "R15", errs[0].Rule)
}

func TestZeroDeclarations_NoErrors(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""))
	l := runWalk(t, root)
	assert.Empty(t, l.Reporter().Errors())
	all := l.Table().GetAllSymbols()
	require.Len(t, all, 1, "only the synthetic file scope symbol")
}

func TestFieldDeclarationWithThreeVariables_SharedModifiers(t *testing.T) {
	root := parsetree.N(KindCompilationUnit, tok(""),
		parsetree.N(KindClassDeclaration, tok("C"),
			parsetree.N("classBody", tok(""),
				parsetree.N(KindModifier, tok("public")),
				parsetree.N(KindFieldDeclaration, tok(""),
					parsetree.N(KindFieldType, tok("Integer")),
					parsetree.N(KindDeclarators, tok(""),
						parsetree.N(KindIdentifier, tok("a")),
						parsetree.N(KindIdentifier, tok("b")),
						parsetree.N(KindIdentifier, tok("c")),
					),
				),
			),
		),
	)
	l := runWalk(t, root)
	var props []string
	for _, s := range l.Table().GetAllSymbols() {
		if s.Kind == core.KindProperty {
			props = append(props, s.Name)
			assert.Equal(t, core.VisibilityPublic, s.Modifiers.Visibility)
		}
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, props)
}
