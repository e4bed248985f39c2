package entities

import (
	"time"

	"versegraph/domain/core/valueobjects"
)

// Note is a journal entry owned by the notes service. Graph generation only
// reads it.
type Note struct {
	ID              string    `json:"id" yaml:"id" validate:"required"`
	UserID          string    `json:"user_id" yaml:"user_id" validate:"required"`
	Title           string    `json:"title" yaml:"title"`
	Content         string    `json:"content" yaml:"content"`
	ContentPlain    string    `json:"content_plain" yaml:"content_plain"`
	BibleReferences []string  `json:"bible_references" yaml:"bible_references"`
	Tags            []string  `json:"tags" yaml:"tags"`
	IsArchived      bool      `json:"is_archived" yaml:"is_archived"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at"`
}

// Text returns the readable content of the note
func (n *Note) Text() valueobjects.NoteContent {
	return valueobjects.NewNoteContent(n.Title, n.Content, n.ContentPlain)
}
