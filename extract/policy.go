package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/codegraph/core"
	"github.com/oxhq/codegraph/lang"
)

// typeSet is a membership set of CST node type strings.
type typeSet map[string]bool

// Policy drives the generic walker for one language: which CST node types
// represent which symbol kinds, which fields carry names and parameters,
// and optional attribute extractors for what the type sets cannot express.
type Policy struct {
	Language lang.Language

	FunctionTypes  typeSet
	ClassTypes     typeSet
	MethodTypes    typeSet
	InterfaceTypes typeSet
	StructTypes    typeSet
	EnumTypes      typeSet
	ImportTypes    typeSet
	CallTypes      typeSet

	// InterfaceKind is the node kind emitted for interface types; Rust
	// overrides it to `trait`.
	InterfaceKind core.NodeKind

	NameField   string
	ParamsField string
	ReturnField string

	// SignatureSep joins parameter and return-type text. LeadingReturn puts
	// the return type first (Java).
	SignatureSep  string
	LeadingReturn bool

	// Optional extractors. A nil extractor means the attribute is absent
	// unless DefaultVisibility or ExportedByCase applies.
	Signature  func(n *sitter.Node, source []byte) string
	Visibility func(n *sitter.Node, source []byte) core.Visibility
	Exported   func(n *sitter.Node, source []byte) bool
	Async      func(n *sitter.Node, source []byte) bool
	Static     func(n *sitter.Node, source []byte) bool

	// ExportedByCase marks languages where export is spelled by
	// capitalization of the name (Go).
	ExportedByCase bool

	// DefaultVisibility applies when no modifier is present.
	DefaultVisibility core.Visibility
}

// policyFor returns the policy for a language, nil when the language has no
// generic policy (liquid, unknown).
func policyFor(l lang.Language) *Policy {
	return policies[l]
}
