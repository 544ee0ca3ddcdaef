package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/codegraph/core"
)

// swiftHooks replace generic dispatch for the node types Swift overloads.
// The grammar reuses class_declaration for class / struct / actor /
// extension / enum, hangs async outside the modifier bag, and spells
// statics as either `static` or `class`, so the policy table alone cannot
// route these.
var swiftHooks = map[string]dialectHook{
	"class_declaration":             swiftClassDeclaration,
	"protocol_declaration":          swiftProtocolDeclaration,
	"function_declaration":          swiftFunctionDeclaration,
	"protocol_function_declaration": swiftFunctionDeclaration,
	"property_declaration":          swiftPropertyDeclaration,
	"protocol_property_declaration": swiftPropertyDeclaration,
	"subscript_declaration":         swiftSubscriptDeclaration,
	"typealias_declaration":         swiftTypeAlias,
	"associatedtype_declaration":    swiftTypeAlias,
	"init_declaration":              swiftInitDeclaration,
	"deinit_declaration":            swiftDeinitDeclaration,
	"enum_entry":                    swiftEnumEntry,
}

// swiftClassDeclaration routes the overloaded declaration node by its
// keyword token. Extensions take the extended type's name, with the
// where-clause appended when present.
func swiftClassDeclaration(w *walker, n *sitter.Node) {
	keyword := ""
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "class", "struct", "actor", "extension", "enum":
			keyword = n.Child(i).Type()
		}
		if keyword != "" {
			break
		}
	}

	kind := core.KindClass
	switch keyword {
	case "struct":
		kind = core.KindStruct
	case "enum":
		kind = core.KindEnum
	}

	name := nodeText(n.ChildByFieldName("name"), w.source)
	if keyword == "extension" {
		if ut := firstNamedOfType(n, typeSet{"user_type": true, "type_identifier": true}); ut != nil {
			name = nodeText(ut, w.source)
		}
		if tc := firstNamedOfType(n, typeSet{"type_constraints": true}); tc != nil {
			name += " " + nodeText(tc, w.source)
		}
	}
	if name == "" {
		if id := firstNamedOfType(n, typeSet{"type_identifier": true, "simple_identifier": true, "user_type": true}); id != nil {
			name = nodeText(id, w.source)
		}
	}
	if name == "" {
		w.walkChildren(n)
		return
	}

	id := w.emit(n, kind, name, w.swiftOpts(n))
	w.swiftInheritance(n, id, keyword == "class")
	defer w.pushScope(id, name)()
	w.walkChildren(n)
}

func swiftProtocolDeclaration(w *walker, n *sitter.Node) {
	name := nodeText(n.ChildByFieldName("name"), w.source)
	if name == "" {
		if id := firstNamedOfType(n, typeSet{"type_identifier": true, "simple_identifier": true}); id != nil {
			name = nodeText(id, w.source)
		}
	}
	if name == "" {
		w.walkChildren(n)
		return
	}
	id := w.emit(n, core.KindInterface, name, w.swiftOpts(n))
	w.swiftInheritance(n, id, false)
	defer w.pushScope(id, name)()
	w.walkChildren(n)
}

func swiftFunctionDeclaration(w *walker, n *sitter.Node) {
	kind := core.KindFunction
	if len(w.scopes) > 0 {
		kind = core.KindMethod
	}
	name := nodeText(n.ChildByFieldName("name"), w.source)
	if name == "" {
		if id := firstNamedOfType(n, typeSet{"simple_identifier": true}); id != nil {
			name = nodeText(id, w.source)
		}
	}
	if name == "" {
		w.walkChildren(n)
		return
	}
	o := w.swiftOpts(n)
	o.signature = swiftSignature(n, w.source)
	id := w.emit(n, kind, name, o)
	defer w.pushScope(id, name)()
	w.walkChildren(n)
}

// swiftPropertyDeclaration names the symbol from the binding pattern.
// Top-level `let` bindings are constants; everything else is a property.
// Attribute children (property wrappers such as @State) become decorators.
func swiftPropertyDeclaration(w *walker, n *sitter.Node) {
	var nameNode *sitter.Node
	if pat := findDescendant(n, "pattern", 3); pat != nil {
		nameNode = findDescendant(pat, "simple_identifier", 2)
	}
	if nameNode == nil {
		nameNode = findDescendant(n, "simple_identifier", 3)
	}
	if nameNode == nil {
		return
	}

	kind := core.KindProperty
	if len(w.scopes) == 0 && swiftBoundWithLet(n) {
		kind = core.KindConstant
	}
	o := w.swiftOpts(n)
	o.decorators = swiftAttributes(n, w.source)
	w.emit(n, kind, nodeText(nameNode, w.source), o)
}

func swiftSubscriptDeclaration(w *walker, n *sitter.Node) {
	o := w.swiftOpts(n)
	o.signature = swiftSubscriptSignature(n, w.source)
	id := w.emit(n, core.KindMethod, "subscript", o)
	defer w.pushScope(id, "subscript")()
	w.walkChildren(n)
}

func swiftTypeAlias(w *walker, n *sitter.Node) {
	id := firstNamedOfType(n, typeSet{"type_identifier": true})
	if id == nil {
		return
	}
	w.emit(n, core.KindTypeAlias, nodeText(id, w.source), w.swiftOpts(n))
}

func swiftInitDeclaration(w *walker, n *sitter.Node) {
	id := w.emit(n, core.KindMethod, "init", w.swiftOpts(n))
	defer w.pushScope(id, "init")()
	w.walkChildren(n)
}

func swiftDeinitDeclaration(w *walker, n *sitter.Node) {
	id := w.emit(n, core.KindMethod, "deinit", w.swiftOpts(n))
	defer w.pushScope(id, "deinit")()
	w.walkChildren(n)
}

func swiftEnumEntry(w *walker, n *sitter.Node) {
	id := firstNamedOfType(n, typeSet{"simple_identifier": true})
	if id == nil {
		return
	}
	w.emit(n, core.KindEnumMember, nodeText(id, w.source), symbolOpts{docstring: docstring(n, w.source)})
}

// swiftOpts derives the modifier flags Swift spells its own way: async as a
// direct child, static as `static` or `class`, fileprivate folded into
// private, internal when nothing is said.
func (w *walker) swiftOpts(n *sitter.Node) symbolOpts {
	o := symbolOpts{docstring: docstring(n, w.source)}

	o.visibility = visibilityFromModifiers(n, w.source)
	if o.visibility == "" {
		o.visibility = core.VisibilityInternal
	}
	o.exported = o.visibility == core.VisibilityPublic

	o.async = hasChildToken(n, "async") || containsWord(modifierText(n, w.source), "async")
	mods := modifierText(n, w.source)
	o.static = hasChildToken(n, "static") || containsWord(mods, "static") || containsWord(mods, "class")
	return o
}

// swiftInheritance emits the inheritance_specifier references: the first is
// extends for classes, implements otherwise; the rest always implements.
func (w *walker) swiftInheritance(n *sitter.Node, fromID string, classLike bool) {
	first := true
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "inheritance_specifier" {
			continue
		}
		name := nodeText(c, w.source)
		if ut := firstNamedOfType(c, typeSet{"user_type": true, "type_identifier": true}); ut != nil {
			name = nodeText(ut, w.source)
		}
		kind := core.EdgeImplements
		if first && classLike {
			kind = core.EdgeExtends
		}
		first = false
		w.addTypeRef(fromID, name, kind, c)
	}
}

// swiftSignature joins the parameter children with the return type written
// after the arrow.
func swiftSignature(n *sitter.Node, source []byte) string {
	params := swiftParameterList(n, source)
	ret := swiftReturnType(n, source)
	switch {
	case params == "" && ret == "":
		return ""
	case ret == "":
		return params
	case params == "":
		return "() -> " + ret
	}
	return params + " -> " + ret
}

func swiftSubscriptSignature(n *sitter.Node, source []byte) string {
	params := swiftParameterList(n, source)
	var ret string
	if ut := firstNamedOfType(n, typeSet{"user_type": true, "opaque_type": true, "optional_type": true}); ut != nil {
		ret = nodeText(ut, source)
	}
	switch {
	case params == "" && ret == "":
		return ""
	case ret == "":
		return params
	}
	return params + " -> " + ret
}

func swiftParameterList(n *sitter.Node, source []byte) string {
	var parts []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "parameter" {
			parts = append(parts, nodeText(c, source))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// swiftReturnType reads the type token following the arrow.
func swiftReturnType(n *sitter.Node, source []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() != "->" {
			continue
		}
		for j := i + 1; j < int(n.ChildCount()); j++ {
			c := n.Child(j)
			if c.IsNamed() && c.Type() != "function_body" {
				return nodeText(c, source)
			}
		}
		return ""
	}
	return ""
}

// swiftBoundWithLet reports whether the binding uses `let`, looking both at
// direct tokens and inside a value_binding_pattern.
func swiftBoundWithLet(n *sitter.Node) bool {
	if hasChildToken(n, "let") {
		return true
	}
	if vb := findDescendant(n, "value_binding_pattern", 2); vb != nil {
		return hasChildToken(vb, "let")
	}
	return false
}

// swiftAttributes collects attribute children, both direct and inside the
// modifier bag.
func swiftAttributes(n *sitter.Node, source []byte) []string {
	var out []string
	collect := func(parent *sitter.Node) {
		for i := 0; i < int(parent.NamedChildCount()); i++ {
			if c := parent.NamedChild(i); c.Type() == "attribute" {
				out = append(out, nodeText(c, source))
			}
		}
	}
	collect(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "modifiers" {
			collect(c)
		}
	}
	return out
}

// findDescendant does a bounded depth-first search for a node type.
func findDescendant(n *sitter.Node, nodeType string, depth int) *sitter.Node {
	if n == nil || depth < 0 {
		return nil
	}
	if n.Type() == nodeType {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if found := findDescendant(n.NamedChild(i), nodeType, depth-1); found != nil {
			return found
		}
	}
	return nil
}
