package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/codegraph/models"
)

// Options control how the graph database is opened.
type Options struct {
	// Debug switches gorm to statement-level logging.
	Debug bool
}

// Open connects to the graph database and prepares its schema. Plain paths
// get a file-backed sqlite database; libsql:// and http(s):// DSNs go
// through the remote libsql driver, with CODEGRAPH_LIBSQL_AUTH_TOKEN picked
// up when set.
func Open(dsn string, opts Options) (*gorm.DB, error) {
	dialector, cleanup, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	level := logger.Silent
	if opts.Debug {
		level = logger.Info
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, fmt.Errorf("open graph db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if err := gdb.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := gdb.AutoMigrate(schema()...); err != nil {
		return nil, fmt.Errorf("migrate graph schema: %w", err)
	}
	return gdb, nil
}

// dialectorFor classifies the DSN and builds the matching dialector. The
// cleanup closes the raw connection when gorm.Open fails before adopting it.
func dialectorFor(dsn string) (gorm.Dialector, func(), error) {
	switch {
	case strings.HasPrefix(dsn, "libsql://"),
		strings.HasPrefix(dsn, "http://"),
		strings.HasPrefix(dsn, "https://"):
		var copts []libsql.Option
		if token := os.Getenv("CODEGRAPH_LIBSQL_AUTH_TOKEN"); token != "" {
			copts = append(copts, libsql.WithAuthToken(token))
		}
		connector, err := libsql.NewConnector(dsn, copts...)
		if err != nil {
			return nil, nil, fmt.Errorf("libsql connector for %s: %w", dsn, err)
		}
		conn := sql.OpenDB(connector)
		return sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		}), func() { _ = conn.Close() }, nil

	default:
		if dir := filepath.Dir(dsn); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create db directory %s: %w", dir, err)
			}
		}
		return sqlite.Open(dsn), nil, nil
	}
}

// schema lists every table the store owns.
func schema() []any {
	return []any{
		&models.File{},
		&models.Node{},
		&models.Edge{},
		&models.Reference{},
	}
}
