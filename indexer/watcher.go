package indexer

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/oxhq/codegraph/core"
)

// Watch runs an initial index, then re-runs whenever the tree changes.
// Events are debounced so one save burst becomes one incremental run; the
// hash check keeps untouched files cheap.
func (ix *Indexer) Watch(ctx context.Context, scope core.WalkScope, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	if _, err := ix.Run(ctx, scope); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addDirs(watcher, scope.Root); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	dirty := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if strings.Contains(event.Name, string(filepath.Separator)+".git"+string(filepath.Separator)) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories need their own watch.
				_ = addDirs(watcher, event.Name)
			}
			ix.log.Debug("fs event", zap.String("op", event.Op.String()), zap.String("path", event.Name))
			if !dirty {
				dirty = true
			} else if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ix.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			dirty = false
			if _, err := ix.Run(ctx, scope); err != nil {
				return err
			}
		}
	}
}

// addDirs registers a directory tree with the watcher.
func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" || d.Name() == "node_modules" {
			return filepath.SkipDir
		}
		_ = watcher.Add(path)
		return nil
	})
}
