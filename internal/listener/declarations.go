package listener

import (
	"strconv"

	"github.com/forcedotcom/apex-semantic-core/internal/core"
	"github.com/forcedotcom/apex-semantic-core/internal/parsetree"
	"github.com/forcedotcom/apex-semantic-core/internal/symbol"
	"github.com/forcedotcom/apex-semantic-core/internal/symboltable"
	"github.com/forcedotcom/apex-semantic-core/internal/typedesc"
	"github.com/forcedotcom/apex-semantic-core/internal/validators"
)

func (l *Listener) enterAnnotation(n parsetree.Node) {
	loc := locFromToken(n.Token())
	ann := core.Annotation{Name: n.Token().Text, Location: loc}
	for _, c := range n.Children() {
		if c.Kind() != KindAnnotationParam {
			continue
		}
		ann.Parameters = append(ann.Parameters, parseAnnotationParam(c.Token().Text))
	}
	l.pendingAnns = append(l.pendingAnns, ann)
}

func parseAnnotationParam(raw string) core.AnnotationParam {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '=' {
			return core.AnnotationParam{Name: raw[:i], Value: raw[i+1:]}
		}
	}
	return core.AnnotationParam{Name: raw}
}

func (l *Listener) enterModifier(n parsetree.Node) {
	l.pendingModifierCount++
	switch n.Token().Text {
	case "public":
		l.pendingMods.Visibility = core.VisibilityPublic
	case "private":
		l.pendingMods.Visibility = core.VisibilityPrivate
	case "protected":
		l.pendingMods.Visibility = core.VisibilityProtected
	case "global":
		l.pendingMods.Visibility = core.VisibilityGlobal
	case "static":
		l.pendingMods.IsStatic = true
	case "final":
		l.pendingMods.IsFinal = true
	case "abstract":
		l.pendingMods.IsAbstract = true
	case "virtual":
		l.pendingMods.IsVirtual = true
	case "override":
		l.pendingMods.IsOverride = true
	case "transient":
		l.pendingMods.IsTransient = true
	case "testmethod":
		l.pendingMods.IsTestMethod = true
	case "webservice":
		l.pendingMods.IsWebService = true
	}
}

func (l *Listener) enterClass(n parsetree.Node) {
	loc := locFromToken(n.Token())
	name := n.Token().Text

	if l.interfaceDepth > 0 {
		validators.InterfaceBodyMember(core.KindClass, loc, l.filePath, l.reporter) // R4
	}
	validators.NestedClass(name, len(l.classNameStack), l.enclosingClassName(), loc, l.filePath, l.reporter) // R9/R10

	mods, anns := l.consumePending()
	sym := symbol.New(core.KindClass, name, loc)
	sym.Modifiers = mods
	sym.Annotations = anns
	if sc := findChild(n, KindSuperClass); sc != nil {
		s := sc.Token().Text
		sym.SuperClass = &s
	}
	if ifaces := findChild(n, KindInterfaces); ifaces != nil {
		for _, c := range ifaces.Children() {
			sym.Interfaces = append(sym.Interfaces, c.Token().Text)
		}
	}
	l.table.AddSymbol(sym)
	l.table.EnterScope(name, symboltable.ScopeTypeFor(core.KindClass), sym.ID)
	l.classNameStack = append(l.classNameStack, name)
}

func (l *Listener) exitClass() {
	l.table.ExitScope()
	l.classNameStack = l.classNameStack[:len(l.classNameStack)-1]
}

func (l *Listener) enterInterface(n parsetree.Node) {
	loc := locFromToken(n.Token())
	name := n.Token().Text

	if l.interfaceDepth > 0 {
		validators.InterfaceBodyMember(core.KindInterface, loc, l.filePath, l.reporter) // R5
	}

	mods, anns := l.consumePending()
	sym := symbol.New(core.KindInterface, name, loc)
	sym.Modifiers = mods
	sym.Annotations = anns
	if ifaces := findChild(n, KindInterfaces); ifaces != nil {
		for _, c := range ifaces.Children() {
			sym.Interfaces = append(sym.Interfaces, c.Token().Text)
		}
	}
	l.table.AddSymbol(sym)
	l.table.EnterScope(name, symboltable.ScopeTypeFor(core.KindInterface), sym.ID)
	l.interfaceDepth++
}

func (l *Listener) exitInterface() {
	l.table.ExitScope()
	l.interfaceDepth--
}

func (l *Listener) enterEnum(n parsetree.Node) {
	loc := locFromToken(n.Token())
	name := n.Token().Text

	if l.interfaceDepth > 0 {
		validators.InterfaceBodyMember(core.KindEnum, loc, l.filePath, l.reporter) // R7
	}

	mods, anns := l.consumePending()
	sym := symbol.New(core.KindEnum, name, loc)
	sym.Modifiers = mods
	sym.Annotations = anns
	l.table.AddSymbol(sym)
	l.table.EnterScope(name, symboltable.ScopeTypeFor(core.KindEnum), sym.ID)
	l.enumStack = append(l.enumStack, sym)
}

func (l *Listener) exitEnum() {
	l.table.ExitScope()
	l.enumStack = l.enumStack[:len(l.enumStack)-1]
}

func (l *Listener) enterEnumConstants(n parsetree.Node) {
	en := l.currentEnum()
	if en == nil {
		return
	}
	for _, c := range n.Children() {
		if c.Kind() != KindIdentifier {
			continue
		}
		loc := locFromToken(c.Token())
		val := symbol.New(core.KindEnumValue, c.Token().Text, loc)
		val.Type = core.TypeDescriptor{Name: en.Name, OriginalTypeString: en.Name}
		l.table.AddSymbol(val)
		en.EnumValues = append(en.EnumValues, val.ID)
	}
}

func (l *Listener) enterTrigger(n parsetree.Node) {
	loc := locFromToken(n.Token())
	name := n.Token().Text
	mods, anns := l.consumePending()
	sym := symbol.New(core.KindTrigger, name, loc)
	sym.Modifiers = mods
	sym.Annotations = anns
	l.table.AddSymbol(sym)
	l.table.EnterScope(name, symboltable.ScopeTypeFor(core.KindTrigger), sym.ID)
}

func (l *Listener) exitTrigger() {
	l.table.ExitScope()
}

func (l *Listener) enterMethod(n parsetree.Node) {
	loc := locFromToken(n.Token())
	name := n.Token().Text

	mods, anns := l.consumePending()
	validators.MethodModifiers(mods, loc, l.filePath, l.reporter) // R1/R2

	paramTypes := peekParamTypes(n)
	existing := existingSignaturesFor(l, name, core.KindMethod)
	validators.DuplicateMethod(paramTypes, existing, loc, l.filePath, l.reporter) // R13

	returnType := ""
	if rt := findChild(n, KindReturnType); rt != nil {
		returnType = rt.Token().Text
	}

	sym := symbol.New(core.KindMethod, name, loc)
	sym.Modifiers = mods
	sym.Annotations = anns
	sym.ReturnType = typedesc.Parse(returnType)
	l.table.AddSymbol(sym)
	l.table.EnterScope(name, symboltable.ScopeTypeFor(core.KindMethod), sym.ID)
	l.pushMethod(sym)
}

func (l *Listener) exitMethod() {
	l.table.ExitScope()
	l.popMethod()
}

func (l *Listener) enterConstructor(n parsetree.Node) {
	loc := locFromToken(n.Token())
	declaredName := n.Token().Text
	enclosingClass := l.enclosingClassName()

	if l.interfaceDepth > 0 {
		validators.InterfaceBodyMember(core.KindConstructor, loc, l.filePath, l.reporter) // R8
	}
	validators.ConstructorName(declaredName, enclosingClass, loc, l.filePath, l.reporter) // R11/R12

	mods, anns := l.consumePending()
	paramTypes := peekParamTypes(n)
	existing := existingSignaturesFor(l, enclosingClass, core.KindConstructor)
	validators.DuplicateConstructor(paramTypes, existing, loc, l.filePath, l.reporter) // R14

	sym := symbol.New(core.KindConstructor, enclosingClass, loc) // I4: name is always the enclosing class's name
	sym.IsConstructor = true
	sym.Modifiers = mods
	sym.Annotations = anns
	sym.ReturnType = core.TypeDescriptor{Name: "void", OriginalTypeString: "void", IsPrimitive: true}
	l.table.AddSymbol(sym)
	l.table.EnterScope(sym.Name, symboltable.ScopeTypeFor(core.KindConstructor), sym.ID)
	l.pushMethod(sym)
}

func (l *Listener) exitConstructor() {
	l.table.ExitScope()
	l.popMethod()
}

func (l *Listener) enterInterfaceMethod(n parsetree.Node) {
	loc := locFromToken(n.Token())
	name := n.Token().Text

	validators.InterfaceMemberModifiers(l.pendingModifierCount, loc, l.filePath, l.reporter) // R3
	l.consumePending()                                                                       // discard: interface methods never keep explicit modifiers

	paramTypes := peekParamTypes(n)
	existing := existingSignaturesFor(l, name, core.KindMethod)
	validators.DuplicateMethod(paramTypes, existing, loc, l.filePath, l.reporter)

	returnType := ""
	if rt := findChild(n, KindReturnType); rt != nil {
		returnType = rt.Token().Text
	}

	sym := symbol.New(core.KindMethod, name, loc)
	sym.Modifiers = validators.ImplicitInterfaceMethodModifiers()
	sym.ReturnType = typedesc.Parse(returnType)
	l.table.AddSymbol(sym)
	l.table.EnterScope(name, symboltable.ScopeTypeFor(core.KindMethod), sym.ID)
	l.pushMethod(sym)
}

func (l *Listener) exitInterfaceMethod() {
	l.table.ExitScope()
	l.popMethod()
}

func (l *Listener) enterFormalParameter(n parsetree.Node) {
	loc := locFromToken(n.Token())
	name := n.Token().Text
	typeStr := ""
	if pt := findChild(n, KindParamType); pt != nil {
		typeStr = pt.Token().Text
	}
	sym := symbol.New(core.KindParameter, name, loc)
	sym.Type = typedesc.Parse(typeStr)
	l.table.AddSymbol(sym)
	if m := l.currentMethod(); m != nil {
		m.Parameters = append(m.Parameters, sym.ID)
	}
}

func (l *Listener) enterField(n parsetree.Node) {
	loc := locFromToken(n.Token())
	if l.interfaceDepth > 0 {
		validators.InterfaceBodyMember(core.KindField, loc, l.filePath, l.reporter) // R6
	}

	mods, anns := l.consumePending()
	typeStr := ""
	if ft := findChild(n, KindFieldType); ft != nil {
		typeStr = ft.Token().Text
	}
	td := typedesc.Parse(typeStr)

	decls := findChild(n, KindDeclarators)
	if decls == nil {
		return
	}
	for _, d := range decls.Children() {
		dloc := locFromToken(d.Token())
		sym := symbol.New(core.KindProperty, d.Token().Text, dloc)
		sym.Type = td
		sym.Modifiers = mods
		sym.Annotations = anns
		l.table.AddSymbol(sym)
	}
}

func (l *Listener) enterLocalVar(n parsetree.Node) {
	mods, anns := l.consumePending()
	typeStr := ""
	if vt := findChild(n, KindVarType); vt != nil {
		typeStr = vt.Token().Text
	}
	td := typedesc.Parse(typeStr)

	decls := findChild(n, KindDeclarators)
	if decls == nil {
		return
	}
	existingNames := l.table.CurrentScope().Names()
	for _, d := range decls.Children() {
		dloc := locFromToken(d.Token())
		name := d.Token().Text
		validators.DuplicateVariable(name, existingNames, dloc, l.filePath, l.reporter) // R15
		sym := symbol.New(core.KindVariable, name, dloc)
		sym.Type = td
		sym.Modifiers = mods
		sym.Annotations = anns
		l.table.AddSymbol(sym)
		existingNames = append(existingNames, name)
	}
}

func (l *Listener) enterBlock(n parsetree.Node) {
	name := blockName(l.blockDepth)
	l.blockDepth++
	l.table.EnterScope(name, core.ScopeBlock, 0)
}

func (l *Listener) exitBlock() {
	l.table.ExitScope()
	l.blockDepth--
}

func blockName(depth int) string {
	return "block" + strconv.Itoa(depth)
}
