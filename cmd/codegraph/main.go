package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oxhq/codegraph/core"
	"github.com/oxhq/codegraph/db"
	"github.com/oxhq/codegraph/indexer"
	"github.com/oxhq/codegraph/lang"
)

var (
	flagDB       string
	flagInclude  []string
	flagExclude  []string
	flagWorkers  int
	flagMaxBytes int64
	flagDebug    bool
	flagDebounce time.Duration
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "codegraph",
		Short: "Build a queryable code knowledge graph from a source tree",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagDB, "db", defaultDSN(), "sqlite path or libsql URL for the graph store")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose logging")

	indexCmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index a source tree into the graph store",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIndex,
	}
	indexCmd.Flags().StringSliceVar(&flagInclude, "include", nil, "doublestar globs to include (default: every supported file)")
	indexCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "doublestar globs to exclude")
	indexCmd.Flags().IntVar(&flagWorkers, "workers", 0, "extraction workers (default: CPU count)")
	indexCmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 2<<20, "skip files larger than this")

	watchCmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Index a source tree and re-index on file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWatch,
	}
	watchCmd.Flags().StringSliceVar(&flagInclude, "include", nil, "doublestar globs to include")
	watchCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "doublestar globs to exclude")
	watchCmd.Flags().IntVar(&flagWorkers, "workers", 0, "extraction workers")
	watchCmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 2<<20, "skip files larger than this")
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", 500*time.Millisecond, "quiet period before re-indexing")

	languagesCmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages and their extensions",
		Run: func(cmd *cobra.Command, args []string) {
			for _, l := range lang.All() {
				fmt.Printf("%-12s %s\n", l, strings.Join(lang.Extensions(l), " "))
			}
		},
	}

	root.AddCommand(indexCmd, watchCmd, languagesCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	ix, scope, log, err := setup(args)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	summary, err := ix.Run(cmd.Context(), scope)
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d files (%d extracted, %d unchanged, %d failed, %d removed) in %s\n",
		summary.FilesSeen, summary.Extracted, summary.Skipped, summary.Failed, summary.Deleted,
		summary.Duration.Round(time.Millisecond))
	fmt.Printf("graph: %d nodes, %d edges, %d unresolved references\n",
		summary.Nodes, summary.Edges, summary.Refs)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ix, scope, log, err := setup(args)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fmt.Printf("watching %s (ctrl-c to stop)\n", scope.Root)
	return ix.Watch(cmd.Context(), scope, flagDebounce)
}

func setup(args []string) (*indexer.Indexer, core.WalkScope, *zap.Logger, error) {
	rootPath := "."
	if len(args) > 0 {
		rootPath = args[0]
	}

	log, err := buildLogger()
	if err != nil {
		return nil, core.WalkScope{}, nil, err
	}

	gdb, err := db.Open(flagDB, db.Options{Debug: flagDebug})
	if err != nil {
		return nil, core.WalkScope{}, nil, fmt.Errorf("open store: %w", err)
	}

	scope := core.WalkScope{
		Root:     rootPath,
		Include:  flagInclude,
		Exclude:  flagExclude,
		MaxBytes: flagMaxBytes,
	}
	ix := indexer.New(db.NewStore(gdb, log), log, flagWorkers)
	return ix, scope, log, nil
}

func buildLogger() (*zap.Logger, error) {
	if flagDebug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func defaultDSN() string {
	if dsn := os.Getenv("CODEGRAPH_DB"); dsn != "" {
		return dsn
	}
	return ".codegraph/graph.db"
}
