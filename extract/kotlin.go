package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/codegraph/core"
)

// kotlinHooks replace generic dispatch for the node types Kotlin overloads.
// class_declaration covers classes, interfaces and enums, told apart by the
// keyword tokens outside the modifier bag; objects and companions are their
// own declarations.
var kotlinHooks = map[string]dialectHook{
	"class_declaration":    kotlinClassDeclaration,
	"object_declaration":   kotlinObjectDeclaration,
	"companion_object":     kotlinCompanionObject,
	"function_declaration": kotlinFunctionDeclaration,
	"property_declaration": kotlinPropertyDeclaration,
	"type_alias":           kotlinTypeAlias,
	"enum_entry":           kotlinEnumEntry,
}

func kotlinClassDeclaration(w *walker, n *sitter.Node) {
	kind := core.KindClass
	switch {
	case hasChildToken(n, "interface"):
		kind = core.KindInterface
	case hasChildToken(n, "enum"):
		kind = core.KindEnum
	}

	name := kotlinTypeName(n, w.source)
	if name == "" {
		w.walkChildren(n)
		return
	}

	id := w.emit(n, kind, name, w.kotlinOpts(n))
	w.kotlinDelegation(n, id)
	defer w.pushScope(id, name)()
	w.walkChildren(n)
}

// kotlinObjectDeclaration emits the singleton as a class; its delegation
// specifiers behave like a subclass declaration's.
func kotlinObjectDeclaration(w *walker, n *sitter.Node) {
	name := kotlinTypeName(n, w.source)
	if name == "" {
		w.walkChildren(n)
		return
	}
	id := w.emit(n, core.KindClass, name, w.kotlinOpts(n))
	w.kotlinDelegation(n, id)
	defer w.pushScope(id, name)()
	w.walkChildren(n)
}

func kotlinCompanionObject(w *walker, n *sitter.Node) {
	name := kotlinTypeName(n, w.source)
	if name == "" {
		name = "Companion"
	}
	o := w.kotlinOpts(n)
	o.static = true
	id := w.emit(n, core.KindClass, name, o)
	defer w.pushScope(id, name)()
	w.walkChildren(n)
}

func kotlinFunctionDeclaration(w *walker, n *sitter.Node) {
	kind := core.KindFunction
	if len(w.scopes) > 0 {
		kind = core.KindMethod
	}
	name := ""
	if id := firstNamedOfType(n, typeSet{"simple_identifier": true}); id != nil {
		name = nodeText(id, w.source)
	}
	if name == "" {
		w.walkChildren(n)
		return
	}
	o := w.kotlinOpts(n)
	o.signature = kotlinSignature(n, w.source)
	id := w.emit(n, kind, name, o)
	defer w.pushScope(id, name)()
	w.walkChildren(n)
}

// kotlinPropertyDeclaration reads the name off the inner variable
// declaration. A `const` modifier turns the property into a constant.
func kotlinPropertyDeclaration(w *walker, n *sitter.Node) {
	vd := findDescendant(n, "variable_declaration", 2)
	if vd == nil {
		return
	}
	id := firstNamedOfType(vd, typeSet{"simple_identifier": true})
	if id == nil {
		return
	}
	kind := core.KindProperty
	if hasModifier(n, w.source, "const") {
		kind = core.KindConstant
	}
	w.emit(n, kind, nodeText(id, w.source), w.kotlinOpts(n))
}

func kotlinTypeAlias(w *walker, n *sitter.Node) {
	id := firstNamedOfType(n, typeSet{"type_identifier": true})
	if id == nil {
		return
	}
	w.emit(n, core.KindTypeAlias, nodeText(id, w.source), w.kotlinOpts(n))
}

func kotlinEnumEntry(w *walker, n *sitter.Node) {
	id := firstNamedOfType(n, typeSet{"simple_identifier": true})
	if id == nil {
		return
	}
	w.emit(n, core.KindEnumMember, nodeText(id, w.source), symbolOpts{docstring: docstring(n, w.source)})
}

// kotlinOpts reads the modifier bag: suspend marks async, abstract carries
// through, and visibility defaults to public.
func (w *walker) kotlinOpts(n *sitter.Node) symbolOpts {
	o := symbolOpts{docstring: docstring(n, w.source)}
	mods := modifierText(n, w.source)

	o.visibility = visibilityFromModifiers(n, w.source)
	if o.visibility == "" {
		o.visibility = core.VisibilityPublic
	}
	o.exported = o.visibility == core.VisibilityPublic
	o.async = containsWord(mods, "suspend")
	o.abstract = containsWord(mods, "abstract")
	return o
}

// kotlinDelegation emits inheritance references from delegation specifiers:
// the first specifier with a constructor invocation is the superclass, any
// further ones implement; a bare user type always implements.
func (w *walker) kotlinDelegation(n *sitter.Node, fromID string) {
	sawConstructor := false
	var visit func(parent *sitter.Node)
	visit = func(parent *sitter.Node) {
		for i := 0; i < int(parent.NamedChildCount()); i++ {
			c := parent.NamedChild(i)
			switch c.Type() {
			case "delegation_specifier", "delegation_specifiers":
				if c.Type() == "delegation_specifiers" {
					visit(c)
					continue
				}
				w.kotlinSpecifier(c, fromID, &sawConstructor)
			}
		}
	}
	visit(n)
}

func (w *walker) kotlinSpecifier(spec *sitter.Node, fromID string, sawConstructor *bool) {
	if ci := findDescendant(spec, "constructor_invocation", 2); ci != nil {
		name := nodeText(ci, w.source)
		if ut := firstNamedOfType(ci, typeSet{"user_type": true}); ut != nil {
			name = nodeText(ut, w.source)
		}
		kind := core.EdgeImplements
		if !*sawConstructor {
			kind = core.EdgeExtends
			*sawConstructor = true
		}
		w.addTypeRef(fromID, name, kind, spec)
		return
	}
	if ut := findDescendant(spec, "user_type", 2); ut != nil {
		w.addTypeRef(fromID, nodeText(ut, w.source), core.EdgeImplements, spec)
	}
}

// kotlinTypeName is the declaration's type_identifier, or for companion
// objects an optional plain identifier.
func kotlinTypeName(n *sitter.Node, source []byte) string {
	if id := firstNamedOfType(n, typeSet{"type_identifier": true, "simple_identifier": true}); id != nil {
		return nodeText(id, source)
	}
	return ""
}

// kotlinSignature joins the value parameter list with the declared return
// type when one follows the parameter list.
func kotlinSignature(n *sitter.Node, source []byte) string {
	var params string
	pl := firstNamedOfType(n, typeSet{"function_value_parameters": true})
	if pl != nil {
		params = nodeText(pl, source)
	}

	var ret string
	if pl != nil {
		for sib := pl.NextNamedSibling(); sib != nil; sib = sib.NextNamedSibling() {
			t := sib.Type()
			if t == "user_type" || t == "nullable_type" || strings.HasSuffix(t, "_type") {
				ret = nodeText(sib, source)
				break
			}
			if t == "function_body" {
				break
			}
		}
	}

	switch {
	case params == "" && ret == "":
		return ""
	case ret == "":
		return params
	case params == "":
		return "(): " + ret
	}
	return params + ": " + ret
}
