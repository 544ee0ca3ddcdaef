package lang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	cases := map[string]Language{
		"src/main.ts":        TypeScript,
		"src/App.tsx":        TSX,
		"lib/util.js":        JavaScript,
		"lib/util.mjs":       JavaScript,
		"lib/util.cjs":       JavaScript,
		"src/App.jsx":        JSX,
		"app/models.py":      Python,
		"pkg/server.go":      Go,
		"src/lib.rs":         Rust,
		"com/App.java":       Java,
		"src/main.c":         C,
		"include/defs.h":     C,
		"src/engine.cpp":     CPP,
		"src/engine.cc":      CPP,
		"src/engine.cxx":     CPP,
		"include/engine.hpp": CPP,
		"App/Program.cs":     CSharp,
		"web/index.php":      PHP,
		"app/invoice.rb":     Ruby,
		"Sources/App.swift":  Swift,
		"app/Main.kt":        Kotlin,
		"build.kts":          Kotlin,
		"theme/index.liquid": Liquid,
		"README.md":          Unknown,
		"Makefile":           Unknown,
		"archive.tar.gz":     Unknown,
	}
	for path, want := range cases {
		require.Equal(t, want, Detect(path), path)
	}
}

func TestDetectCaseSensitive(t *testing.T) {
	// Detection is case-sensitive on the suffix.
	require.Equal(t, Unknown, Detect("main.GO"))
	require.Equal(t, Unknown, Detect("App.Swift"))
}

func TestGrammarCoverage(t *testing.T) {
	for _, l := range All() {
		if l == Liquid {
			require.Nil(t, Grammar(l))
			continue
		}
		require.NotNil(t, Grammar(l), "missing grammar for %s", l)
	}
	require.Nil(t, Grammar(Unknown))
}

func TestSupported(t *testing.T) {
	require.True(t, Supported(Go))
	require.True(t, Supported(Liquid))
	require.False(t, Supported(Unknown))
}

func TestExtensions(t *testing.T) {
	require.Equal(t, []string{".cjs", ".js", ".mjs"}, Extensions(JavaScript))
}
