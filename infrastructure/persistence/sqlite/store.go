// Package sqlite implements the repository ports on an embedded SQLite
// database for local development, the CLI and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"versegraph/infrastructure/persistence/schema"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

var migrations = []schema.Migration{
	{
		Version:     1,
		Description: "notes",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS notes (
				id               TEXT NOT NULL,
				user_id          TEXT NOT NULL,
				title            TEXT NOT NULL DEFAULT '',
				content          TEXT NOT NULL DEFAULT '',
				content_plain    TEXT NOT NULL DEFAULT '',
				bible_references TEXT NOT NULL DEFAULT '[]',
				tags             TEXT NOT NULL DEFAULT '[]',
				is_archived      INTEGER NOT NULL DEFAULT 0,
				created_at       TEXT NOT NULL,
				updated_at       TEXT NOT NULL,
				PRIMARY KEY (user_id, id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_notes_user_archived ON notes(user_id, is_archived, created_at)`,
		},
	},
	{
		Version:     2,
		Description: "graph nodes and edges",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS graph_nodes (
				id           TEXT PRIMARY KEY,
				user_id      TEXT NOT NULL,
				node_type    TEXT NOT NULL,
				reference_id TEXT NOT NULL,
				label        TEXT NOT NULL DEFAULT '',
				description  TEXT NOT NULL DEFAULT '',
				metadata     TEXT NOT NULL DEFAULT '{}',
				created_at   TEXT NOT NULL,
				updated_at   TEXT NOT NULL,
				UNIQUE (user_id, node_type, reference_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_graph_nodes_user ON graph_nodes(user_id)`,
			`CREATE TABLE IF NOT EXISTS graph_edges (
				id             TEXT PRIMARY KEY,
				user_id        TEXT NOT NULL,
				source_node_id TEXT NOT NULL,
				target_node_id TEXT NOT NULL,
				edge_type      TEXT NOT NULL,
				weight         REAL NOT NULL DEFAULT 1.0,
				created_at     TEXT NOT NULL,
				UNIQUE (user_id, source_node_id, target_node_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_graph_edges_source ON graph_edges(user_id, source_node_id)`,
			`CREATE INDEX IF NOT EXISTS idx_graph_edges_target ON graph_edges(user_id, target_node_id)`,
		},
	},
}

// Store owns the database handle shared by the repositories
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the database at path and migrates it to the
// latest schema
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = MemoryPath
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// every connection to :memory: is a separate database
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}

	evolution, err := schema.NewEvolution(migrations, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	applied, err := evolution.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	logger.Debug("SQLite store opened", zap.String("path", path), zap.Int("migrationsApplied", applied))
	return &Store{db: db, logger: logger}, nil
}

func dsn(path string) string {
	if path == MemoryPath || strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// DB exposes the handle for callers that manage their own statements
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// NodeRepository returns the graph node repository
func (s *Store) NodeRepository() *NodeRepository {
	return &NodeRepository{db: s.db, logger: s.logger}
}

// EdgeRepository returns the graph edge repository
func (s *Store) EdgeRepository() *EdgeRepository {
	return &EdgeRepository{db: s.db, logger: s.logger}
}

// NoteRepository returns the note repository
func (s *Store) NoteRepository() *NoteRepository {
	return &NoteRepository{db: s.db, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
