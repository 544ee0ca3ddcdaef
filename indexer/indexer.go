package indexer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oxhq/codegraph/core"
	"github.com/oxhq/codegraph/db"
	"github.com/oxhq/codegraph/extract"
)

// Indexer drives one full pipeline run: walk the tree, skip unchanged files
// by content hash, extract the rest in parallel, and replace batches in the
// store. Each worker owns its own extractor so parsers are never shared.
type Indexer struct {
	store   *db.Store
	walker  *core.FileWalker
	log     *zap.Logger
	workers int

	// sqlite takes one writer at a time; batch writes are serialized here
	// while extraction stays parallel.
	writeMu sync.Mutex
}

// New creates an indexer. Workers defaults to the CPU count.
func New(store *db.Store, log *zap.Logger, workers int) *Indexer {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Indexer{
		store:   store,
		walker:  core.NewFileWalker(),
		log:     log,
		workers: workers,
	}
}

// Summary reports what one run did.
type Summary struct {
	FilesSeen int
	Extracted int
	Skipped   int
	Failed    int
	Deleted   int
	Nodes     int
	Edges     int
	Refs      int
	Duration  time.Duration
}

// Run indexes the scope once. Files whose stored hash matches are skipped;
// files that disappeared since the last run are removed from the store.
func (ix *Indexer) Run(ctx context.Context, scope core.WalkScope) (Summary, error) {
	start := time.Now()

	results, err := ix.walker.Walk(ctx, scope)
	if err != nil {
		return Summary{}, fmt.Errorf("walk %s: %w", scope.Root, err)
	}

	var (
		mu      sync.Mutex
		summary Summary
		seen    = make(map[string]struct{})
	)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < ix.workers; i++ {
		g.Go(func() error {
			ex := extract.New(ix.log)
			defer ex.Close()

			for r := range results {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				ix.processFile(scope, r, ex, &mu, &summary, seen)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	deleted, err := ix.pruneMissing(seen)
	if err != nil {
		return summary, err
	}
	summary.Deleted = deleted
	summary.Duration = time.Since(start)

	ix.log.Info("index run complete",
		zap.Int("seen", summary.FilesSeen),
		zap.Int("extracted", summary.Extracted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("deleted", summary.Deleted),
		zap.Int("nodes", summary.Nodes),
		zap.Duration("took", summary.Duration))
	return summary, nil
}

func (ix *Indexer) processFile(
	scope core.WalkScope,
	r core.WalkResult,
	ex *extract.Extractor,
	mu *sync.Mutex,
	summary *Summary,
	seen map[string]struct{},
) {
	rel := relPath(scope.Root, r.Path)

	mu.Lock()
	summary.FilesSeen++
	seen[rel] = struct{}{}
	mu.Unlock()

	if r.Error != nil {
		ix.log.Warn("unreadable file", zap.String("file", rel), zap.Error(r.Error))
		mu.Lock()
		summary.Failed++
		mu.Unlock()
		return
	}

	hash := core.ContentHash(r.Data)
	prev, err := ix.storedHash(rel)
	if err != nil {
		ix.log.Warn("hash lookup failed", zap.String("file", rel), zap.Error(err))
	} else if prev == hash {
		mu.Lock()
		summary.Skipped++
		mu.Unlock()
		return
	}

	res := ex.ExtractAs(rel, r.Data, r.Language)
	if len(res.Errors) > 0 && len(res.Nodes) == 0 {
		mu.Lock()
		summary.Failed++
		mu.Unlock()
		return
	}

	ix.writeMu.Lock()
	err = ix.store.ReplaceFileBatch(rel, string(r.Language), hash, lineCount(r.Data), res)
	ix.writeMu.Unlock()
	if err != nil {
		ix.log.Error("store write failed", zap.String("file", rel), zap.Error(err))
		mu.Lock()
		summary.Failed++
		mu.Unlock()
		return
	}

	mu.Lock()
	summary.Extracted++
	summary.Nodes += len(res.Nodes)
	summary.Edges += len(res.Edges)
	summary.Refs += len(res.UnresolvedRefs)
	mu.Unlock()
}

func (ix *Indexer) storedHash(rel string) (string, error) {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	return ix.store.FileHash(rel)
}

// pruneMissing drops store batches for files the walk no longer found.
func (ix *Indexer) pruneMissing(seen map[string]struct{}) (int, error) {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	files, err := ix.store.Files()
	if err != nil {
		return 0, fmt.Errorf("list indexed files: %w", err)
	}
	deleted := 0
	for _, f := range files {
		if _, ok := seen[f.Path]; ok {
			continue
		}
		if err := ix.store.DeleteFile(f.Path); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", f.Path, err)
		}
		ix.log.Debug("pruned missing file", zap.String("file", f.Path))
		deleted++
	}
	return deleted, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func lineCount(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	return bytes.Count(data, []byte{'\n'}) + 1
}
