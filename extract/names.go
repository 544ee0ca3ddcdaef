package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// identifierTypes are the node types accepted as a name when no name field
// resolves.
var identifierTypes = typeSet{
	"identifier":        true,
	"type_identifier":   true,
	"simple_identifier": true,
	"constant":          true,
}

// commentTypes are the node types scanned for docstrings.
var commentTypes = typeSet{
	"comment":               true,
	"line_comment":          true,
	"block_comment":         true,
	"documentation_comment": true,
}

// memberAccessTypes are callee expression types where the bare method name
// is the segment after the final dot.
var memberAccessTypes = typeSet{
	"member_expression":        true,
	"attribute":                true,
	"selector_expression":      true,
	"field_expression":         true,
	"navigation_expression":    true,
	"member_access_expression": true,
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

// firstNamedOfType returns the first named child whose type is in the set.
func firstNamedOfType(n *sitter.Node, types typeSet) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); types[c.Type()] {
			return c
		}
	}
	return nil
}

// hasChildToken reports whether any direct child (named or not, but not
// inside a modifiers child) has the given type.
func hasChildToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == token {
			return true
		}
	}
	return false
}

// modifierBagTypes are the child node types that hold a declaration's
// modifier tokens across the grammars.
var modifierBagTypes = typeSet{
	"modifiers":              true,
	"modifier":               true,
	"function_modifiers":     true,
	"visibility_modifier":    true,
	"accessibility_modifier": true,
	"static_modifier":        true,
	"abstract_modifier":      true,
	"final_modifier":         true,
}

// modifierText concatenates the text of every modifier bag on a declaration.
func modifierText(n *sitter.Node, source []byte) string {
	var b strings.Builder
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if modifierBagTypes[c.Type()] {
			b.WriteString(nodeText(c, source))
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// hasModifier reports whether the declaration carries the modifier token,
// either as a direct child or inside a modifier bag.
func hasModifier(n *sitter.Node, source []byte, token string) bool {
	if hasChildToken(n, token) {
		return true
	}
	return containsWord(modifierText(n, source), token)
}

// containsWord matches token as a whole word inside text.
func containsWord(text, token string) bool {
	for rest := text; ; {
		idx := strings.Index(rest, token)
		if idx < 0 {
			return false
		}
		beforeOK := idx == 0 || !isWordByte(rest[idx-1])
		after := idx + len(token)
		afterOK := after == len(rest) || !isWordByte(rest[after])
		if beforeOK && afterOK {
			return true
		}
		rest = rest[after:]
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// declarationName resolves a declaration's name per the policy's name field,
// unwrapping C/C++ compound declarators one level, falling back to the first
// identifier-typed child, and finally climbing to an enclosing type_spec for
// Go struct_type / interface_type, which carry no name of their own. A Rust
// impl block takes the implemented type from its own type field.
func declarationName(n *sitter.Node, source []byte, nameField string) string {
	if n.Type() == "impl_item" {
		if t := n.ChildByFieldName("type"); t != nil {
			return nodeText(t, source)
		}
	}

	if nameField != "" {
		if f := n.ChildByFieldName(nameField); f != nil {
			if strings.HasSuffix(f.Type(), "declarator") {
				if inner := f.ChildByFieldName("declarator"); inner != nil {
					return nodeText(inner, source)
				}
				if id := firstNamedOfType(f, identifierTypes); id != nil {
					return nodeText(id, source)
				}
			}
			return nodeText(f, source)
		}
	}

	if id := firstNamedOfType(n, identifierTypes); id != nil {
		return nodeText(id, source)
	}

	if par := n.Parent(); par != nil && (par.Type() == "type_spec" || par.Type() == "type_declaration") {
		if f := par.ChildByFieldName("name"); f != nil {
			return nodeText(f, source)
		}
	}
	return ""
}

// calleeName locates the callee of a call node and returns the bare name a
// later resolution pass will look up, plus the full callee expression text.
// Member accesses yield the property name only; scoped identifiers keep the
// full path.
func calleeName(n *sitter.Node, source []byte) (name, raw string) {
	callee := n.ChildByFieldName("function")
	if callee == nil {
		// Java method_invocation, PHP member/scoped calls and Ruby calls
		// name the method in a field instead of a callee expression.
		for _, field := range []string{"name", "method"} {
			if f := n.ChildByFieldName(field); f != nil {
				return nodeText(f, source), callReceiverText(n, source)
			}
		}
		callee = n.NamedChild(0)
	}
	if callee == nil {
		return "", ""
	}

	raw = nodeText(callee, source)
	switch {
	case memberAccessTypes[callee.Type()]:
		if idx := strings.LastIndexByte(raw, '.'); idx >= 0 && idx < len(raw)-1 {
			return raw[idx+1:], raw
		}
		return raw, raw
	case strings.HasPrefix(callee.Type(), "scoped_"):
		return raw, raw
	default:
		return raw, raw
	}
}

// callReceiverText slices the call expression up to its argument list.
func callReceiverText(n *sitter.Node, source []byte) string {
	if args := n.ChildByFieldName("arguments"); args != nil && args.StartByte() > n.StartByte() {
		return strings.TrimSpace(string(source[n.StartByte():args.StartByte()]))
	}
	return nodeText(n, source)
}

// importName extracts the imported module name from an import node, trying
// the field names the grammars use before falling back to the first named
// child.
func importName(n *sitter.Node, source []byte) string {
	for _, field := range []string{"source", "path", "module_name", "argument", "name"} {
		if f := n.ChildByFieldName(field); f != nil {
			return trimImportQuotes(nodeText(f, source))
		}
	}
	if c := n.NamedChild(0); c != nil {
		return trimImportQuotes(nodeText(c, source))
	}
	return ""
}

func trimImportQuotes(s string) string {
	return strings.Trim(s, "\"'`<>")
}

// docstring collects the comment block immediately preceding a declaration:
// walk preceding named siblings while they are comments, reverse to source
// order, strip comment markers, join with newlines. A declaration wrapped in
// an export statement reads the comments preceding the export statement.
func docstring(n *sitter.Node, source []byte) string {
	if par := n.Parent(); par != nil && par.Type() == "export_statement" && n.PrevNamedSibling() == nil {
		n = par
	}
	var comments []string
	for sib := n.PrevNamedSibling(); sib != nil && commentTypes[sib.Type()]; sib = sib.PrevNamedSibling() {
		comments = append(comments, nodeText(sib, source))
	}
	if len(comments) == 0 {
		return ""
	}
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}

	var lines []string
	for _, c := range comments {
		for _, line := range strings.Split(c, "\n") {
			lines = append(lines, cleanCommentLine(line))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func cleanCommentLine(line string) string {
	s := strings.TrimSpace(line)
	for _, prefix := range []string{"/**", "/*", "///", "//", "*/", "#"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimSuffix(s, "*/")
	s = strings.TrimPrefix(strings.TrimSpace(s), "* ")
	if s == "*" {
		s = ""
	}
	return strings.TrimSpace(s)
}
