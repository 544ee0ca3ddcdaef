package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/oxhq/codegraph/lang"
)

// FileWalker provides parallel source-tree traversal, producing the
// (path, bytes) stream the extractor consumes.
type FileWalker struct {
	workers    int
	bufferSize int
}

// NewFileWalker creates a walker sized for I/O bound work.
func NewFileWalker() *FileWalker {
	return &FileWalker{
		workers:    runtime.NumCPU() * 2,
		bufferSize: 1000,
	}
}

// WalkScope bounds one traversal.
type WalkScope struct {
	Root           string
	Include        []string // doublestar globs; empty means every supported file
	Exclude        []string // doublestar globs
	MaxBytes       int64    // skip files larger than this; 0 means no limit
	MaxDepth       int
	MaxFiles       int
	FollowSymlinks bool
	NoGitignore    bool
}

// WalkResult is one discovered file with its contents.
type WalkResult struct {
	Path     string
	Language lang.Language
	Data     []byte
	Error    error
}

// Walk performs parallel directory traversal with pattern matching. Results
// arrive on the returned channel until the scope is exhausted or the context
// is cancelled.
func (fw *FileWalker) Walk(ctx context.Context, scope WalkScope) (<-chan WalkResult, error) {
	info, err := os.Stat(scope.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid walk root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walk root is not a directory: %s", scope.Root)
	}

	var gi *ignore.GitIgnore
	if !scope.NoGitignore {
		if compiled, err := ignore.CompileIgnoreFile(filepath.Join(scope.Root, ".gitignore")); err == nil {
			gi = compiled
		}
	}

	results := make(chan WalkResult, fw.bufferSize)
	paths := make(chan string, fw.bufferSize)

	var wg sync.WaitGroup
	for i := 0; i < fw.workers; i++ {
		wg.Add(1)
		go fw.worker(ctx, paths, results, scope, &wg)
	}

	go func() {
		defer close(paths)
		processed := 0
		var visited map[string]struct{}
		if scope.FollowSymlinks {
			visited = make(map[string]struct{})
			if resolved, err := filepath.EvalSymlinks(scope.Root); err == nil {
				visited[resolved] = struct{}{}
			} else {
				visited[scope.Root] = struct{}{}
			}
		}
		fw.scanDirectory(ctx, scope.Root, scope, gi, paths, 0, &processed, visited)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

// worker reads file contents in parallel.
func (fw *FileWalker) worker(
	ctx context.Context,
	paths <-chan string,
	results chan<- WalkResult,
	scope WalkScope,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}

			result := fw.processFile(path, scope)

			select {
			case <-ctx.Done():
				return
			case results <- result:
			}
		}
	}
}

// scanDirectory recursively discovers files matching the scope.
func (fw *FileWalker) scanDirectory(
	ctx context.Context,
	dirPath string,
	scope WalkScope,
	gi *ignore.GitIgnore,
	paths chan<- string,
	depth int,
	processed *int,
	visited map[string]struct{},
) {
	if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
		return
	}
	select {
	case <-ctx.Done():
		return
	default:
	}

	if scope.MaxDepth > 0 && depth > scope.MaxDepth {
		return
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return // Skip directories we can't read
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		rel, relErr := filepath.Rel(scope.Root, fullPath)
		if relErr != nil {
			rel = fullPath
		}

		if entry.Name() == ".git" {
			continue
		}
		if gi != nil && gi.MatchesPath(rel) {
			continue
		}
		if fw.isExcluded(rel, scope.Exclude) {
			continue
		}

		if entry.Type()&os.ModeSymlink != 0 && scope.FollowSymlinks {
			resolvedPath, err := filepath.EvalSymlinks(fullPath)
			if err != nil || resolvedPath == "" {
				continue
			}
			info, err := os.Stat(resolvedPath)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if visited != nil {
					if _, seen := visited[resolvedPath]; seen {
						continue
					}
					visited[resolvedPath] = struct{}{}
				}
				fw.scanDirectory(ctx, fullPath, scope, gi, paths, depth+1, processed, visited)
				continue
			}
		}

		if entry.IsDir() {
			if visited != nil {
				realPath := fullPath
				if resolved, err := filepath.EvalSymlinks(fullPath); err == nil && resolved != "" {
					realPath = resolved
				}
				if _, seen := visited[realPath]; seen {
					continue
				}
				visited[realPath] = struct{}{}
			}
			fw.scanDirectory(ctx, fullPath, scope, gi, paths, depth+1, processed, visited)
			continue
		}

		if fw.isIncluded(rel, scope.Include) {
			if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
				return
			}
			select {
			case <-ctx.Done():
				return
			case paths <- fullPath:
				*processed++
			}
		}
	}
}

// processFile reads one file and tags its language.
func (fw *FileWalker) processFile(path string, scope WalkScope) WalkResult {
	language := lang.Detect(path)

	info, err := os.Stat(path)
	if err != nil {
		return WalkResult{Path: path, Language: language, Error: err}
	}
	if scope.MaxBytes > 0 && info.Size() > scope.MaxBytes {
		return WalkResult{Path: path, Language: language, Error: fmt.Errorf("file exceeds %d bytes", scope.MaxBytes)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return WalkResult{Path: path, Language: language, Error: err}
	}
	return WalkResult{Path: path, Language: language, Data: data}
}

// isIncluded checks include globs; with none set, any supported language
// passes.
func (fw *FileWalker) isIncluded(rel string, include []string) bool {
	if len(include) == 0 {
		return lang.Supported(lang.Detect(rel))
	}
	for _, pattern := range include {
		if ok, err := doublestar.Match(pattern, filepath.ToSlash(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

func (fw *FileWalker) isExcluded(rel string, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, err := doublestar.Match(pattern, filepath.ToSlash(rel)); err == nil && ok {
			return true
		}
	}
	return false
}
