package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/codegraph/core"
	"github.com/oxhq/codegraph/lang"
)

// policies is the static extraction table. TSX and JSX alias the TS/JS
// policies; Swift and Kotlin keep minimal entries here because their
// dialect walkers own the declaration node types.
var policies = map[lang.Language]*Policy{}

func init() {
	ts := &Policy{
		Language:       lang.TypeScript,
		FunctionTypes:  typeSet{"function_declaration": true, "generator_function_declaration": true},
		ClassTypes:     typeSet{"class_declaration": true},
		MethodTypes:    typeSet{"method_definition": true, "public_field_definition": true},
		InterfaceTypes: typeSet{"interface_declaration": true},
		EnumTypes:      typeSet{"enum_declaration": true},
		ImportTypes:    typeSet{"import_statement": true},
		CallTypes:      typeSet{"call_expression": true},
		NameField:      "name",
		ParamsField:    "parameters",
		ReturnField:    "return_type",
		SignatureSep:   ": ",
		Exported:       exportStatementParent,
		Async:          modifierExtractor("async"),
		Static:         modifierExtractor("static"),
		Visibility:     visibilityFromModifiers,
	}

	js := &Policy{
		Language:      lang.JavaScript,
		FunctionTypes: typeSet{"function_declaration": true, "generator_function_declaration": true},
		ClassTypes:    typeSet{"class_declaration": true},
		MethodTypes:   typeSet{"method_definition": true, "field_definition": true},
		ImportTypes:   typeSet{"import_statement": true},
		CallTypes:     typeSet{"call_expression": true},
		NameField:     "name",
		ParamsField:   "parameters",
		SignatureSep:  ": ",
		Exported:      exportStatementParent,
		Async:         modifierExtractor("async"),
		Static:        modifierExtractor("static"),
	}

	python := &Policy{
		Language:      lang.Python,
		FunctionTypes: typeSet{"function_definition": true},
		ClassTypes:    typeSet{"class_definition": true},
		MethodTypes:   typeSet{"function_definition": true},
		ImportTypes:   typeSet{"import_statement": true, "import_from_statement": true},
		CallTypes:     typeSet{"call": true},
		NameField:     "name",
		ParamsField:   "parameters",
		ReturnField:   "return_type",
		SignatureSep:  " -> ",
		Async:         modifierExtractor("async"),
	}

	golang := &Policy{
		Language:       lang.Go,
		FunctionTypes:  typeSet{"function_declaration": true},
		MethodTypes:    typeSet{"method_declaration": true},
		InterfaceTypes: typeSet{"interface_type": true},
		StructTypes:    typeSet{"struct_type": true},
		ImportTypes:    typeSet{"import_spec": true},
		CallTypes:      typeSet{"call_expression": true},
		NameField:      "name",
		ParamsField:    "parameters",
		ReturnField:    "result",
		SignatureSep:   " ",
		ExportedByCase: true,
	}

	rust := &Policy{
		Language:          lang.Rust,
		FunctionTypes:     typeSet{"function_item": true},
		ClassTypes:        typeSet{"impl_item": true},
		MethodTypes:       typeSet{"function_item": true},
		InterfaceTypes:    typeSet{"trait_item": true},
		InterfaceKind:     core.KindTrait,
		StructTypes:       typeSet{"struct_item": true},
		EnumTypes:         typeSet{"enum_item": true},
		ImportTypes:       typeSet{"use_declaration": true},
		CallTypes:         typeSet{"call_expression": true},
		NameField:         "name",
		ParamsField:       "parameters",
		ReturnField:       "return_type",
		SignatureSep:      " -> ",
		Async:             modifierExtractor("async"),
		Visibility:        rustVisibility,
		DefaultVisibility: core.VisibilityPrivate,
	}

	java := &Policy{
		Language:       lang.Java,
		ClassTypes:     typeSet{"class_declaration": true},
		MethodTypes:    typeSet{"method_declaration": true, "constructor_declaration": true},
		InterfaceTypes: typeSet{"interface_declaration": true},
		EnumTypes:      typeSet{"enum_declaration": true},
		ImportTypes:    typeSet{"import_declaration": true},
		CallTypes:      typeSet{"method_invocation": true},
		NameField:      "name",
		ParamsField:    "parameters",
		ReturnField:    "type",
		LeadingReturn:  true,
		Static:         modifierExtractor("static"),
		Visibility:     visibilityFromModifiers,
	}

	c := &Policy{
		Language:      lang.C,
		FunctionTypes: typeSet{"function_definition": true},
		StructTypes:   typeSet{"struct_specifier": true},
		EnumTypes:     typeSet{"enum_specifier": true},
		ImportTypes:   typeSet{"preproc_include": true},
		CallTypes:     typeSet{"call_expression": true},
		NameField:     "declarator",
		Signature:     cFunctionSignature,
	}

	cpp := &Policy{
		Language:      lang.CPP,
		FunctionTypes: typeSet{"function_definition": true},
		ClassTypes:    typeSet{"class_specifier": true},
		MethodTypes:   typeSet{"function_definition": true},
		StructTypes:   typeSet{"struct_specifier": true},
		EnumTypes:     typeSet{"enum_specifier": true},
		ImportTypes:   typeSet{"preproc_include": true},
		CallTypes:     typeSet{"call_expression": true},
		NameField:     "declarator",
		Signature:     cFunctionSignature,
		Static:        modifierExtractor("static"),
	}

	csharp := &Policy{
		Language:          lang.CSharp,
		ClassTypes:        typeSet{"class_declaration": true},
		MethodTypes:       typeSet{"method_declaration": true, "constructor_declaration": true},
		InterfaceTypes:    typeSet{"interface_declaration": true},
		StructTypes:       typeSet{"struct_declaration": true},
		EnumTypes:         typeSet{"enum_declaration": true},
		ImportTypes:       typeSet{"using_directive": true},
		CallTypes:         typeSet{"invocation_expression": true},
		NameField:         "name",
		ParamsField:       "parameters",
		ReturnField:       "type",
		LeadingReturn:     true,
		Async:             modifierExtractor("async"),
		Static:            modifierExtractor("static"),
		Visibility:        visibilityFromModifiers,
		DefaultVisibility: core.VisibilityInternal,
	}

	php := &Policy{
		Language:       lang.PHP,
		FunctionTypes:  typeSet{"function_definition": true},
		ClassTypes:     typeSet{"class_declaration": true},
		MethodTypes:    typeSet{"method_declaration": true},
		InterfaceTypes: typeSet{"interface_declaration": true},
		EnumTypes:      typeSet{"enum_declaration": true},
		ImportTypes:    typeSet{"namespace_use_declaration": true},
		CallTypes: typeSet{
			"function_call_expression": true,
			"member_call_expression":   true,
			"scoped_call_expression":   true,
		},
		NameField:         "name",
		ParamsField:       "parameters",
		ReturnField:       "return_type",
		SignatureSep:      ": ",
		Static:            modifierExtractor("static"),
		Visibility:        visibilityFromModifiers,
		DefaultVisibility: core.VisibilityPublic,
	}

	ruby := &Policy{
		Language:    lang.Ruby,
		ClassTypes:  typeSet{"class": true},
		MethodTypes: typeSet{"method": true, "singleton_method": true},
		CallTypes:   typeSet{"call": true, "method_call": true},
		NameField:   "name",
		ParamsField: "parameters",
	}

	swift := &Policy{
		Language:          lang.Swift,
		ImportTypes:       typeSet{"import_declaration": true},
		CallTypes:         typeSet{"call_expression": true},
		NameField:         "name",
		DefaultVisibility: core.VisibilityInternal,
	}

	kotlin := &Policy{
		Language:          lang.Kotlin,
		ImportTypes:       typeSet{"import_header": true},
		CallTypes:         typeSet{"call_expression": true},
		NameField:         "name",
		DefaultVisibility: core.VisibilityPublic,
	}

	policies[lang.TypeScript] = ts
	policies[lang.TSX] = ts
	policies[lang.JavaScript] = js
	policies[lang.JSX] = js
	policies[lang.Python] = python
	policies[lang.Go] = golang
	policies[lang.Rust] = rust
	policies[lang.Java] = java
	policies[lang.C] = c
	policies[lang.CPP] = cpp
	policies[lang.CSharp] = csharp
	policies[lang.PHP] = php
	policies[lang.Ruby] = ruby
	policies[lang.Swift] = swift
	policies[lang.Kotlin] = kotlin
}

// modifierExtractor builds a flag extractor matching one modifier token.
func modifierExtractor(token string) func(n *sitter.Node, source []byte) bool {
	return func(n *sitter.Node, source []byte) bool {
		return hasModifier(n, source, token)
	}
}

// exportStatementParent reports whether a declaration sits inside an
// `export` statement.
func exportStatementParent(n *sitter.Node, _ []byte) bool {
	for par := n.Parent(); par != nil; par = par.Parent() {
		switch par.Type() {
		case "export_statement":
			return true
		case "program", "statement_block", "class_body":
			return false
		}
	}
	return false
}

// visibilityFromModifiers scans a declaration's modifier tokens for an
// explicit visibility keyword.
func visibilityFromModifiers(n *sitter.Node, source []byte) core.Visibility {
	text := modifierText(n, source)
	switch {
	case containsWord(text, "public"):
		return core.VisibilityPublic
	case containsWord(text, "private"), containsWord(text, "fileprivate"):
		return core.VisibilityPrivate
	case containsWord(text, "protected"):
		return core.VisibilityProtected
	case containsWord(text, "internal"):
		return core.VisibilityInternal
	}
	return ""
}

// rustVisibility maps pub / pub(crate) / pub(super) onto the schema.
func rustVisibility(n *sitter.Node, source []byte) core.Visibility {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "visibility_modifier" {
			continue
		}
		text := nodeText(c, source)
		if strings.Contains(text, "crate") || strings.Contains(text, "super") || strings.Contains(text, "self") {
			return core.VisibilityInternal
		}
		return core.VisibilityPublic
	}
	return ""
}

// cFunctionSignature reads parameters off the function declarator and puts
// the return type first.
func cFunctionSignature(n *sitter.Node, source []byte) string {
	decl := n.ChildByFieldName("declarator")
	if decl == nil {
		return ""
	}
	params := nodeText(decl.ChildByFieldName("parameters"), source)
	ret := nodeText(n.ChildByFieldName("type"), source)
	switch {
	case params == "" && ret == "":
		return ""
	case ret == "":
		return params
	case params == "":
		return ret
	}
	return ret + " " + params
}
