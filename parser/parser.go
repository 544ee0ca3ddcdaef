package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/codegraph/lang"
)

// ErrNoParser is returned when a language has no grammar registered.
var ErrNoParser = errors.New("no parser for language")

// Gateway keeps one warm tree-sitter parser per language. Parsers own
// non-trivial native memory, so instances are reused across files of the
// same language behind a lock. When extracting in parallel, give each
// worker its own Gateway.
type Gateway struct {
	mu      sync.Mutex
	parsers map[lang.Language]*sitter.Parser
}

// NewGateway creates an empty gateway; parsers are created on first use.
func NewGateway() *Gateway {
	return &Gateway{parsers: make(map[lang.Language]*sitter.Parser)}
}

// Parse produces a concrete syntax tree from UTF-8 source. A failed parse
// returns an error rather than panicking; the caller reports it and moves
// on to the next file. The returned tree must be Closed by the caller.
func (g *Gateway) Parse(language lang.Language, source []byte) (tree *sitter.Tree, err error) {
	grammar := lang.Grammar(language)
	if grammar == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoParser, language)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			tree = nil
			err = fmt.Errorf("parser panic for %s: %v", language, r)
		}
	}()

	p, ok := g.parsers[language]
	if !ok {
		p = sitter.NewParser()
		p.SetLanguage(grammar)
		g.parsers[language] = p
	}

	tree, err = p.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse failed for %s: %w", language, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parser produced no tree for %s", language)
	}
	return tree, nil
}

// Close releases every parser held by the gateway.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for l, p := range g.parsers {
		p.Close()
		delete(g.parsers, l)
	}
}
