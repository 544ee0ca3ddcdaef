package lang

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is the tag assigned to a source file.
type Language string

const (
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	JavaScript Language = "javascript"
	JSX        Language = "jsx"
	Python     Language = "python"
	Go         Language = "go"
	Rust       Language = "rust"
	Java       Language = "java"
	C          Language = "c"
	CPP        Language = "cpp"
	CSharp     Language = "csharp"
	PHP        Language = "php"
	Ruby       Language = "ruby"
	Swift      Language = "swift"
	Kotlin     Language = "kotlin"
	Liquid     Language = "liquid"
	Unknown    Language = "unknown"
)

// byExtension maps the suffix after the final dot, case-sensitive.
var byExtension = map[string]Language{
	"ts":     TypeScript,
	"tsx":    TSX,
	"js":     JavaScript,
	"mjs":    JavaScript,
	"cjs":    JavaScript,
	"jsx":    JSX,
	"py":     Python,
	"go":     Go,
	"rs":     Rust,
	"java":   Java,
	"c":      C,
	"h":      C,
	"cpp":    CPP,
	"cc":     CPP,
	"cxx":    CPP,
	"hpp":    CPP,
	"cs":     CSharp,
	"php":    PHP,
	"rb":     Ruby,
	"swift":  Swift,
	"kt":     Kotlin,
	"kts":    Kotlin,
	"liquid": Liquid,
}

// Detect maps a file path to its language tag by extension.
func Detect(path string) Language {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return Unknown
	}
	if l, ok := byExtension[path[idx+1:]]; ok {
		return l
	}
	return Unknown
}

// Grammar returns the tree-sitter grammar handle for a language, or nil when
// the language has no parser (liquid, unknown).
func Grammar(l Language) *sitter.Language {
	switch l {
	case TypeScript:
		return typescript.GetLanguage()
	case TSX:
		return tsx.GetLanguage()
	case JavaScript, JSX:
		return javascript.GetLanguage()
	case Python:
		return python.GetLanguage()
	case Go:
		return golang.GetLanguage()
	case Rust:
		return rust.GetLanguage()
	case Java:
		return java.GetLanguage()
	case C:
		return c.GetLanguage()
	case CPP:
		return cpp.GetLanguage()
	case CSharp:
		return csharp.GetLanguage()
	case PHP:
		return php.GetLanguage()
	case Ruby:
		return ruby.GetLanguage()
	case Swift:
		return swift.GetLanguage()
	case Kotlin:
		return kotlin.GetLanguage()
	default:
		return nil
	}
}

// Supported reports whether extraction can handle the language, either with
// a parser or with the pattern-based liquid path.
func Supported(l Language) bool {
	return l == Liquid || Grammar(l) != nil
}

// All returns the supported language tags in sorted order.
func All() []Language {
	seen := map[Language]struct{}{}
	for _, l := range byExtension {
		seen[l] = struct{}{}
	}
	out := make([]Language, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Extensions returns the registered extensions for a language, dot-prefixed
// and sorted.
func Extensions(l Language) []string {
	var out []string
	for ext, tag := range byExtension {
		if tag == l {
			out = append(out, "."+ext)
		}
	}
	sort.Strings(out)
	return out
}
