// Package schema applies versioned migrations to SQL databases and records
// which versions a database has seen.
package schema

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Migration moves a database from Version-1 to Version
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// Checksum identifies the statements of a migration
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(strings.Join(m.Statements, ";\n")))
	return hex.EncodeToString(sum[:8])
}

// AppliedVersion is one row of the migration history
type AppliedVersion struct {
	Version     int
	Description string
	Checksum    string
	AppliedAt   time.Time
}

const historyTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version     INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	checksum    TEXT NOT NULL,
	applied_at  TEXT NOT NULL
)`

// Evolution applies an ordered set of migrations
type Evolution struct {
	migrations []Migration
	logger     *zap.Logger
	now        func() time.Time
}

// NewEvolution validates the migration set. Versions must be unique and
// contiguous from 1.
func NewEvolution(migrations []Migration, logger *zap.Logger) (*Evolution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	for i, m := range sorted {
		if m.Version != i+1 {
			return nil, fmt.Errorf("migration versions must be contiguous from 1, found %d at position %d", m.Version, i+1)
		}
		if len(m.Statements) == 0 {
			return nil, fmt.Errorf("migration %d has no statements", m.Version)
		}
	}

	return &Evolution{migrations: sorted, logger: logger, now: time.Now}, nil
}

// Latest returns the highest known version
func (e *Evolution) Latest() int {
	return len(e.migrations)
}

// History returns the applied versions in order
func (e *Evolution) History(ctx context.Context, db *sql.DB) ([]AppliedVersion, error) {
	if _, err := db.ExecContext(ctx, historyTable); err != nil {
		return nil, fmt.Errorf("creating migration history: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT version, description, checksum, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("reading migration history: %w", err)
	}
	defer rows.Close()

	var history []AppliedVersion
	for rows.Next() {
		var v AppliedVersion
		var appliedAt string
		if err := rows.Scan(&v.Version, &v.Description, &v.Checksum, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning migration history: %w", err)
		}
		v.AppliedAt, _ = time.Parse(time.RFC3339Nano, appliedAt)
		history = append(history, v)
	}
	return history, rows.Err()
}

// Migrate applies every pending migration, each in its own transaction, and
// returns how many ran. A database newer than the code, or one whose history
// disagrees with the known checksums, is refused.
func (e *Evolution) Migrate(ctx context.Context, db *sql.DB) (int, error) {
	history, err := e.History(ctx, db)
	if err != nil {
		return 0, err
	}

	current := 0
	for _, applied := range history {
		if applied.Version > e.Latest() {
			return 0, fmt.Errorf("database schema version %d is newer than supported version %d", applied.Version, e.Latest())
		}
		if want := e.migrations[applied.Version-1].Checksum(); applied.Checksum != want {
			return 0, fmt.Errorf("migration %d was changed after it was applied", applied.Version)
		}
		current = applied.Version
	}

	ran := 0
	for _, m := range e.migrations[current:] {
		if err := e.apply(ctx, db, m); err != nil {
			return ran, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}
		ran++
		e.logger.Info("Schema migration applied",
			zap.Int("version", m.Version),
			zap.String("description", m.Description),
		)
	}
	return ran, nil
}

func (e *Evolution) apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, checksum, applied_at) VALUES (?, ?, ?, ?)`,
		m.Version, m.Description, m.Checksum(), e.now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return err
	}

	return tx.Commit()
}
