package valueobjects

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// NoteContent is the readable text of a journal note: its title, the rich
// editor content and the plain-text rendition the editor stores alongside.
type NoteContent struct {
	title string
	rich  string
	plain string
}

// NewNoteContent creates note content. Any part may be empty.
func NewNoteContent(title, rich, plain string) NoteContent {
	return NoteContent{
		title: strings.TrimSpace(title),
		rich:  rich,
		plain: plain,
	}
}

// Title returns the note title
func (c NoteContent) Title() string {
	return c.title
}

// PlainText returns the stored plain text, or the rich content with markup
// removed when no plain text was stored.
func (c NoteContent) PlainText() string {
	if strings.TrimSpace(c.plain) != "" {
		return c.plain
	}
	return StripMarkup(c.rich)
}

// DetectionText is the text scanned for people and places.
func (c NoteContent) DetectionText() string {
	return c.title + " " + c.PlainText()
}

// Excerpt returns at most maxRunes characters of the plain text.
func (c NoteContent) Excerpt(maxRunes int) string {
	return Truncate(strings.TrimSpace(c.PlainText()), maxRunes)
}

// IsEmpty checks if content is empty
func (c NoteContent) IsEmpty() bool {
	return c.title == "" && strings.TrimSpace(c.rich) == "" && strings.TrimSpace(c.plain) == ""
}

var (
	markupTag  = regexp.MustCompile(`<[^>]*>`)
	spaceTrail = regexp.MustCompile(`[ \t]+`)
)

// StripMarkup removes HTML tags and decodes entities.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}
	text := markupTag.ReplaceAllString(s, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(spaceTrail.ReplaceAllString(text, " "))
}

// Truncate cuts s to at most maxRunes characters.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes])
}
