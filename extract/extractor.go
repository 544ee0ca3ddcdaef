package extract

import (
	"fmt"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/oxhq/codegraph/core"
	"github.com/oxhq/codegraph/lang"
	"github.com/oxhq/codegraph/parser"
)

// Extractor maps (path, bytes) pairs to extraction results. It owns a parser
// gateway, so a single Extractor must not be shared across goroutines; give
// each worker its own.
type Extractor struct {
	gateway *parser.Gateway
	log     *zap.Logger
}

// New creates an extractor. A nil logger keeps it quiet.
func New(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{gateway: parser.NewGateway(), log: log}
}

// Close releases the warm parsers.
func (e *Extractor) Close() {
	e.gateway.Close()
}

// Extract detects the language from the path and runs extraction. It never
// returns an error: failures become entries in the result's error list and
// the pipeline moves to the next file.
func (e *Extractor) Extract(filePath string, source []byte) core.ExtractionResult {
	return e.ExtractAs(filePath, source, lang.Detect(filePath))
}

// ExtractAs runs extraction with an explicit language tag.
func (e *Extractor) ExtractAs(filePath string, source []byte, language lang.Language) core.ExtractionResult {
	start := time.Now()
	now := start.UnixMilli()

	if language == lang.Liquid {
		res := extractLiquid(filePath, source, now)
		res.DurationMs = time.Since(start).Milliseconds()
		return res
	}

	policy := policyFor(language)
	if policy == nil {
		return core.ExtractionResult{
			Errors: []core.ExtractionError{{
				Message:  fmt.Sprintf("unsupported language %q for %s", language, filePath),
				Severity: core.SeverityError,
			}},
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	tree, err := e.gateway.Parse(language, source)
	if err != nil {
		e.log.Warn("parse failed",
			zap.String("file", filePath),
			zap.String("language", string(language)),
			zap.Error(err))
		return core.ExtractionResult{
			Errors: []core.ExtractionError{{
				Message:  err.Error(),
				Severity: core.SeverityError,
			}},
			DurationMs: time.Since(start).Milliseconds(),
		}
	}
	defer tree.Close()

	w := newWalker(filePath, language, source, policy, now)
	if err := walkSafely(w, tree); err != nil {
		e.log.Error("walk failed", zap.String("file", filePath), zap.Error(err))
		return core.ExtractionResult{
			Errors: []core.ExtractionError{{
				Message:  err.Error(),
				Severity: core.SeverityError,
			}},
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	e.log.Debug("extracted",
		zap.String("file", filePath),
		zap.String("language", string(language)),
		zap.Int("nodes", len(w.nodes)),
		zap.Int("edges", len(w.edges)),
		zap.Int("refs", len(w.refs)),
		zap.Duration("took", time.Since(start)))

	return core.ExtractionResult{
		Nodes:          w.nodes,
		Edges:          w.edges,
		UnresolvedRefs: w.refs,
		DurationMs:     time.Since(start).Milliseconds(),
	}
}

// walkSafely keeps a misbehaving grammar from crashing the pipeline: a panic
// during the walk becomes this file's error record.
func walkSafely(w *walker, tree *sitter.Tree) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction panic: %v", r)
		}
	}()
	w.walk(tree.RootNode())
	return nil
}
