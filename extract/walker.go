package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/codegraph/core"
	"github.com/oxhq/codegraph/lang"
)

// dialectHook replaces generic dispatch for one CST node type. Hooks own
// their node completely: emission, scope handling, and recursion.
type dialectHook func(w *walker, n *sitter.Node)

// scopeEntry is one enclosing symbol on the walker's scope stack.
type scopeEntry struct {
	id   string
	name string
}

// walker performs the depth-first pass over one file's CST. It owns private
// state only; nothing is shared across files.
type walker struct {
	filePath string
	language lang.Language
	source   []byte
	policy   *Policy
	hooks    map[string]dialectHook
	now      int64

	scopes []scopeEntry
	nodes  []core.Node
	edges  []core.Edge
	refs   []core.UnresolvedReference
}

// symbolOpts carries the optional attributes of a node being emitted.
type symbolOpts struct {
	visibility core.Visibility
	exported   bool
	async      bool
	static     bool
	abstract   bool
	signature  string
	docstring  string
	decorators []string
}

func newWalker(filePath string, language lang.Language, source []byte, p *Policy, now int64) *walker {
	w := &walker{
		filePath: filePath,
		language: language,
		source:   source,
		policy:   p,
		now:      now,
	}
	switch language {
	case lang.Swift:
		w.hooks = swiftHooks
	case lang.Kotlin:
		w.hooks = kotlinHooks
	}
	return w
}

// walk dispatches one CST node. Declaration types emit a symbol and recurse
// under its scope; import and call types emit unresolved references;
// anything else recurses into named children.
func (w *walker) walk(n *sitter.Node) {
	t := n.Type()
	if w.hooks != nil {
		if h, ok := w.hooks[t]; ok {
			h(w, n)
			return
		}
	}

	p := w.policy
	switch {
	case p.FunctionTypes[t]:
		kind := core.KindFunction
		if len(w.scopes) > 0 && p.MethodTypes[t] {
			kind = core.KindMethod
		}
		w.emitCallable(n, kind)
	case p.ClassTypes[t]:
		w.emitContainer(n, core.KindClass, true)
	case p.MethodTypes[t]:
		// Reached for method-only types, and for Go where method
		// declarations are top-level with a receiver.
		w.emitCallable(n, core.KindMethod)
	case p.InterfaceTypes[t]:
		kind := p.InterfaceKind
		if kind == "" {
			kind = core.KindInterface
		}
		w.emitContainer(n, kind, false)
	case p.StructTypes[t]:
		w.emitContainer(n, core.KindStruct, false)
	case p.EnumTypes[t]:
		w.emitContainer(n, core.KindEnum, false)
	case p.ImportTypes[t]:
		w.emitImport(n)
	case p.CallTypes[t]:
		w.emitCall(n)
		w.walkChildren(n)
	default:
		w.walkChildren(n)
	}
}

func (w *walker) walkChildren(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i))
	}
}

// emitCallable handles function and method declarations: emit, then walk the
// declaration under its scope so nested declarations and call sites attach
// to it. Anonymous declarations are skipped but still walked so their call
// sites attribute to the enclosing scope.
func (w *walker) emitCallable(n *sitter.Node, kind core.NodeKind) {
	name := declarationName(n, w.source, w.policy.NameField)
	if name == "" {
		w.walkChildren(n)
		return
	}
	id := w.emit(n, kind, name, w.policyOpts(n))
	defer w.pushScope(id, name)()
	w.walkChildren(n)
}

// emitContainer handles class-like declarations: emit, extract inheritance
// when the kind carries it, then walk the body under the new scope.
func (w *walker) emitContainer(n *sitter.Node, kind core.NodeKind, inherits bool) {
	name := declarationName(n, w.source, w.policy.NameField)
	if name == "" {
		w.walkChildren(n)
		return
	}
	id := w.emit(n, kind, name, w.policyOpts(n))
	if inherits {
		w.extractInheritance(n, id)
	}
	defer w.pushScope(id, name)()
	w.walkChildren(n)
}

// emit appends the node and its containment edge, returning the node id.
func (w *walker) emit(n *sitter.Node, kind core.NodeKind, name string, o symbolOpts) string {
	startLine := int(n.StartPoint().Row) + 1
	id := core.NodeID(w.filePath, kind, name, startLine)

	node := core.Node{
		ID:            id,
		Kind:          kind,
		Name:          name,
		QualifiedName: core.QualifiedName(w.filePath, w.scopeNames(), name),
		FilePath:      w.filePath,
		Language:      string(w.language),
		StartLine:     startLine,
		EndLine:       int(n.EndPoint().Row) + 1,
		StartColumn:   int(n.StartPoint().Column),
		EndColumn:     int(n.EndPoint().Column),
		UpdatedAt:     w.now,
		Visibility:    o.visibility,
		IsExported:    o.exported,
		IsAsync:       o.async,
		IsStatic:      o.static,
		IsAbstract:    o.abstract,
		Signature:     o.signature,
		Docstring:     o.docstring,
		Decorators:    o.decorators,
	}
	if w.policy.ExportedByCase {
		r, _ := utf8.DecodeRuneInString(name)
		node.IsExported = unicode.IsUpper(r)
	}

	w.nodes = append(w.nodes, node)
	if len(w.scopes) > 0 {
		w.edges = append(w.edges, core.Edge{
			SourceID: w.scopes[len(w.scopes)-1].id,
			TargetID: id,
			Kind:     core.EdgeContains,
		})
	}
	return id
}

// policyOpts evaluates the policy's optional extractors for a declaration.
func (w *walker) policyOpts(n *sitter.Node) symbolOpts {
	p := w.policy
	o := symbolOpts{
		signature: w.signatureOf(n),
		docstring: docstring(n, w.source),
	}
	if p.Visibility != nil {
		o.visibility = p.Visibility(n, w.source)
	}
	if o.visibility == "" {
		o.visibility = p.DefaultVisibility
	}
	if p.Exported != nil {
		o.exported = p.Exported(n, w.source)
	}
	if p.Async != nil {
		o.async = p.Async(n, w.source)
	}
	if p.Static != nil {
		o.static = p.Static(n, w.source)
	}
	return o
}

// signatureOf builds the declaration signature from the params and return
// fields, unless the policy brings its own extractor.
func (w *walker) signatureOf(n *sitter.Node) string {
	p := w.policy
	if p.Signature != nil {
		return p.Signature(n, w.source)
	}
	if p.ParamsField == "" && p.ReturnField == "" {
		return ""
	}

	var params, ret string
	if p.ParamsField != "" {
		params = nodeText(n.ChildByFieldName(p.ParamsField), w.source)
	}
	if p.ReturnField != "" {
		ret = nodeText(n.ChildByFieldName(p.ReturnField), w.source)
		ret = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ret), ":"))
	}

	switch {
	case params == "" && ret == "":
		return ""
	case ret == "":
		return params
	case params == "":
		return ret
	case p.LeadingReturn:
		return ret + " " + params
	}
	sep := p.SignatureSep
	if sep == "" {
		sep = " "
	}
	return params + sep + ret
}

func (w *walker) emitImport(n *sitter.Node) {
	name := importName(n, w.source)
	if name == "" {
		return
	}
	w.addRef(n, name, name, core.EdgeImports)
}

func (w *walker) emitCall(n *sitter.Node) {
	name, raw := calleeName(n, w.source)
	if name == "" {
		return
	}
	w.addRef(n, name, raw, core.EdgeCalls)
}

// addRef records an unresolved reference from the current scope.
func (w *walker) addRef(n *sitter.Node, name, raw string, kind core.EdgeKind) {
	w.refs = append(w.refs, core.UnresolvedReference{
		FromNodeID: w.scopeID(),
		Name:       name,
		RawText:    raw,
		Kind:       kind,
		Line:       int(n.StartPoint().Row) + 1,
		Column:     int(n.StartPoint().Column),
	})
}

// addTypeRef records an inheritance reference from an emitted node.
func (w *walker) addTypeRef(fromID, name string, kind core.EdgeKind, at *sitter.Node) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	w.refs = append(w.refs, core.UnresolvedReference{
		FromNodeID: fromID,
		Name:       name,
		RawText:    name,
		Kind:       kind,
		Line:       int(at.StartPoint().Row) + 1,
		Column:     int(at.StartPoint().Column),
	})
}

// extractInheritance scans a class-like declaration's children for extends
// and implements clauses.
func (w *walker) extractInheritance(n *sitter.Node, fromID string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "extends_clause", "superclass":
			if t := c.NamedChild(0); t != nil {
				w.addTypeRef(fromID, nodeText(t, w.source), core.EdgeExtends, c)
			}
		case "class_heritage":
			// TypeScript nests extends/implements clauses inside the
			// heritage node; JavaScript holds the expression directly.
			if firstNamedOfType(c, typeSet{"extends_clause": true, "implements_clause": true}) != nil {
				w.extractInheritance(c, fromID)
			} else if t := c.NamedChild(0); t != nil {
				w.addTypeRef(fromID, nodeText(t, w.source), core.EdgeExtends, c)
			}
		case "implements_clause", "class_interface_clause":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				w.addTypeRef(fromID, nodeText(c.NamedChild(j), w.source), core.EdgeImplements, c)
			}
		}
	}
}

// pushScope enters a symbol's scope and returns the matching pop.
func (w *walker) pushScope(id, name string) func() {
	w.scopes = append(w.scopes, scopeEntry{id: id, name: name})
	return func() {
		w.scopes = w.scopes[:len(w.scopes)-1]
	}
}

// scopeID is the current enclosing node id, or the file-scope sentinel.
func (w *walker) scopeID() string {
	if len(w.scopes) > 0 {
		return w.scopes[len(w.scopes)-1].id
	}
	return core.FileScopeID(w.filePath)
}

func (w *walker) scopeNames() []string {
	names := make([]string, len(w.scopes))
	for i, s := range w.scopes {
		names[i] = s.name
	}
	return names
}
