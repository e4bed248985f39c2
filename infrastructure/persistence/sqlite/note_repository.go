package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/domain/core/entities"
	pkgerrors "versegraph/pkg/errors"
	"versegraph/pkg/utils"
)

const noteColumns = `id, user_id, title, content, content_plain, bible_references, tags, is_archived, created_at, updated_at`

// NoteRepository reads notes and lets local tooling import them
type NoteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ ports.NoteRepository = (*NoteRepository)(nil)

// SaveNote inserts or replaces a note
func (r *NoteRepository) SaveNote(ctx context.Context, note *entities.Note) error {
	if note.ID == "" || note.UserID == "" {
		return pkgerrors.NewValidationError("note id and user id are required")
	}

	refs, err := json.Marshal(nonNil(note.BibleReferences))
	if err != nil {
		return fmt.Errorf("marshaling references: %w", err)
	}
	tags, err := json.Marshal(nonNil(note.Tags))
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = note.CreatedAt
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			content_plain = excluded.content_plain,
			bible_references = excluded.bible_references,
			tags = excluded.tags,
			is_archived = excluded.is_archived,
			updated_at = excluded.updated_at`,
		note.ID, note.UserID, note.Title, note.Content, note.ContentPlain,
		string(refs), string(tags), boolToInt(note.IsArchived),
		utils.FormatTimestamp(note.CreatedAt), utils.FormatTimestamp(note.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// GetByID returns a note of the user
func (r *NoteRepository) GetByID(ctx context.Context, userID, noteID string) (*entities.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND id = ?`, userID, noteID)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("note").WithCode(pkgerrors.CodeNoteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying note: %w", err)
	}
	return note, nil
}

// ListNotes returns the newest notes first. A non-positive limit means no
// limit.
func (r *NoteRepository) ListNotes(ctx context.Context, userID string, opts ports.ListNotesOptions) ([]*entities.Note, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND is_archived = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		userID, boolToInt(opts.Archived), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	notes := []*entities.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// HasNotes reports whether the user has any note row
func (r *NoteRepository) HasNotes(ctx context.Context, userID string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM notes WHERE user_id = ?)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("querying notes: %w", err)
	}
	return exists == 1, nil
}

func scanNote(row rowScanner) (*entities.Note, error) {
	var (
		note                 entities.Note
		refs, tags           string
		archived             int
		createdAt, updatedAt string
	)
	err := row.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.ContentPlain,
		&refs, &tags, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(refs), &note.BibleReferences); err != nil {
		return nil, fmt.Errorf("unmarshaling references: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &note.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	note.IsArchived = archived == 1
	note.CreatedAt = utils.ParseTimestamp(createdAt)
	note.UpdatedAt = utils.ParseTimestamp(updatedAt)
	return &note, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
