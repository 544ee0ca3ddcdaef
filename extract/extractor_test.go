package extract

import (
	"encoding/json"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codegraph/core"
	"github.com/oxhq/codegraph/lang"
)

// extractSrc runs one extraction with a throwaway extractor.
func extractSrc(t *testing.T, path, src string) core.ExtractionResult {
	t.Helper()
	ex := New(nil)
	t.Cleanup(ex.Close)
	return ex.Extract(path, []byte(src))
}

// findNode returns the first node with the given kind and name.
func findNode(res core.ExtractionResult, kind core.NodeKind, name string) *core.Node {
	for i := range res.Nodes {
		if res.Nodes[i].Kind == kind && res.Nodes[i].Name == name {
			return &res.Nodes[i]
		}
	}
	return nil
}

// findRef returns the first unresolved reference with the given kind and name.
func findRef(res core.ExtractionResult, kind core.EdgeKind, name string) *core.UnresolvedReference {
	for i := range res.UnresolvedRefs {
		if res.UnresolvedRefs[i].Kind == kind && res.UnresolvedRefs[i].Name == name {
			return &res.UnresolvedRefs[i]
		}
	}
	return nil
}

func requireNode(t *testing.T, res core.ExtractionResult, kind core.NodeKind, name string) *core.Node {
	t.Helper()
	n := findNode(res, kind, name)
	if n == nil {
		t.Fatalf("expected %s node %q, got %s", kind, name, nodeSummary(res))
	}
	return n
}

func requireRef(t *testing.T, res core.ExtractionResult, kind core.EdgeKind, name string) *core.UnresolvedReference {
	t.Helper()
	r := findRef(res, kind, name)
	if r == nil {
		t.Fatalf("expected %s reference to %q, got %d refs: %+v", kind, name, len(res.UnresolvedRefs), res.UnresolvedRefs)
	}
	return r
}

func nodeSummary(res core.ExtractionResult) string {
	out := make([]string, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		out = append(out, string(n.Kind)+":"+n.Name)
	}
	data, _ := json.Marshal(out)
	return string(data)
}

func TestUnsupportedLanguage(t *testing.T) {
	res := extractSrc(t, "notes.txt", "hello")
	require.Empty(t, res.Nodes)
	require.Empty(t, res.Edges)
	require.Len(t, res.Errors, 1)
	require.Equal(t, core.SeverityError, res.Errors[0].Severity)
}

func TestExplicitLanguageOverride(t *testing.T) {
	ex := New(nil)
	defer ex.Close()

	res := ex.ExtractAs("script.txt", []byte("def helper():\n    pass\n"), lang.Python)
	requireNode(t, res, core.KindFunction, "helper")
}

// Determinism: two extractions of the same bytes must emit identical
// sequences once the wall-clock fields are zeroed.
func TestDeterminism(t *testing.T) {
	samples := map[string]string{
		"svc.ts":      "export class Api { fetch(url: string): Promise<Data> { return http.get(url); } }",
		"svc.py":      "class Api:\n    def fetch(self, url):\n        return http.get(url)\n",
		"svc.go":      "package svc\n\nfunc Fetch(url string) error { return client.Get(url) }\n",
		"svc.rs":      "pub struct Api;\n\nimpl Api {\n    pub fn fetch(&self) -> Result<(), Error> { client.get() }\n}\n",
		"Svc.kt":      "class Api { suspend fun fetch(url: String): String { return http.get(url) } }",
		"Svc.swift":   "class Api {\n    func fetch() -> String { return http.get() }\n}\n",
		"card.liquid": "{% assign x = 1 %}\n{% render 'button' %}\n",
	}

	for path, src := range samples {
		first := canonical(t, extractSrc(t, path, src))
		second := canonical(t, extractSrc(t, path, src))
		if first != second {
			diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(first),
				B:        difflib.SplitLines(second),
				FromFile: "first",
				ToFile:   "second",
				Context:  3,
			})
			t.Fatalf("non-deterministic extraction for %s:\n%s", path, diff)
		}
	}
}

// Identity stability: editing a body without moving the declaration keeps
// node ids intact.
func TestIdentityStableAcrossBodyEdit(t *testing.T) {
	before := extractSrc(t, "calc.go", "package calc\n\nfunc Sum(a, b int) int { return a + b }\n")
	after := extractSrc(t, "calc.go", "package calc\n\nfunc Sum(a, b int) int { return b + a }\n")

	b := requireNode(t, before, core.KindFunction, "Sum")
	a := requireNode(t, after, core.KindFunction, "Sum")
	require.Equal(t, b.ID, a.ID)
}

// Structural invariants over a small multi-language corpus: containment is
// a forest, edges stay inside the batch, references come from emitted nodes
// or the file-scope sentinel, and locations are ordered.
func TestStructuralInvariants(t *testing.T) {
	samples := map[string]string{
		"app.ts": `import { api } from "./api";
export class Service {
  private cache: Cache;
  async load(id: string): Promise<Item> {
    return this.cache.get(id);
  }
}
export function start(): void { new Service().load("1"); }`,
		"app.py": "import os\n\nclass App:\n    def run(self):\n        os.getcwd()\n\ndef main():\n    App().run()\n",
		"app.go": "package app\n\nimport \"fmt\"\n\ntype App struct{}\n\nfunc (a *App) Run() { fmt.Println(\"run\") }\n",
		"app.rs": "pub trait Runner { fn run(&self); }\n\npub struct App;\n\nimpl App {\n    pub fn run(&self) { println!(\"run\") }\n}\n",
		"App.kt": "sealed class Result { data class Ok(val v: String) : Result(); object None : Result() }",
		"App.swift": `protocol Runner { func run() }
class App: Runner {
    func run() { print("run") }
}`,
	}

	for path, src := range samples {
		res := extractSrc(t, path, src)
		require.Empty(t, res.Errors, "unexpected errors for %s", path)

		ids := map[string]bool{}
		for _, n := range res.Nodes {
			require.NotEmpty(t, n.Name, "%s: empty node name", path)
			require.NotEqual(t, "<anonymous>", n.Name, path)
			require.GreaterOrEqual(t, n.EndLine, n.StartLine, "%s: %s", path, n.Name)
			require.False(t, ids[n.ID], "%s: duplicate id %s", path, n.ID)
			ids[n.ID] = true
		}

		containedBy := map[string]int{}
		for _, e := range res.Edges {
			require.True(t, ids[e.SourceID], "%s: edge source %s not in batch", path, e.SourceID)
			require.True(t, ids[e.TargetID], "%s: edge target %s not in batch", path, e.TargetID)
			if e.Kind == core.EdgeContains {
				containedBy[e.TargetID]++
			}
		}
		for id, count := range containedBy {
			require.LessOrEqual(t, count, 1, "%s: node %s has %d containment parents", path, id, count)
		}

		sentinel := core.FileScopeID(path)
		for _, r := range res.UnresolvedRefs {
			require.True(t, ids[r.FromNodeID] || r.FromNodeID == sentinel,
				"%s: reference from unknown node %s", path, r.FromNodeID)
			require.NotEmpty(t, r.Name, path)
		}
	}
}

// canonical renders a result as stable JSON with wall-clock fields zeroed.
func canonical(t *testing.T, res core.ExtractionResult) string {
	t.Helper()
	res.DurationMs = 0
	for i := range res.Nodes {
		res.Nodes[i].UpdatedAt = 0
	}
	data, err := json.MarshalIndent(res, "", "  ")
	require.NoError(t, err)
	return string(data)
}
