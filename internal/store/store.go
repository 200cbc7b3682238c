package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Postgres driver for deployments that share a database server.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
}

// Open connects to the database named by dsn and runs auto-migration.
// A postgres:// or postgresql:// URL selects Postgres; anything else is
// treated as a SQLite file path or DSN.
func Open(dsn string) (*Store, error) {
	driverName, dialectName := "sqlite", dialect.SQLite
	if isPostgres(dsn) {
		driverName, dialectName = "postgres", dialect.Postgres
	} else {
		dsn = withSQLiteForeignKeys(dsn)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dialectName == dialect.SQLite {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	drv := entsql.OpenDB(dialectName, db)
	s := &Store{db: db, drv: drv, dialect: dialectName}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name of the connected database.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// GenerationRepo returns a GenerationRepo backed by this store.
func (s *Store) GenerationRepo() GenerationRepo {
	return &generationRepo{db: s.db, dialect: s.dialect}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, dialect: s.dialect}
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// withSQLiteForeignKeys makes every pooled connection enable foreign keys,
// which the migration engine checks for.
func withSQLiteForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// applyPragmas configures SQLite for a single-process service.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database location in priority order:
// 1. DATABASE_URL environment variable
// 2. $XDG_DATA_HOME/umlgen/umlgen.db
// 3. ~/.local/share/umlgen/umlgen.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("DATABASE_URL"); p != "" {
		if isPostgres(p) {
			return p, nil
		}
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "umlgen", "umlgen.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
// DSNs that are not plain file paths are left alone.
func EnsureDir(path string) error {
	if isPostgres(path) || strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
