// Package scripture parses, normalizes and formats Bible references such as
// "John 3:16", "1 Cor 13:4-7" or "Ps. 23".
package scripture

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Reference is a parsed Bible reference. A zero VerseStart means the
// reference names a whole chapter; a zero VerseEnd means a single verse.
type Reference struct {
	Book       string `json:"book"`
	Chapter    int    `json:"chapter"`
	VerseStart int    `json:"verse_start,omitempty"`
	VerseEnd   int    `json:"verse_end,omitempty"`
	Original   string `json:"original"`
}

// HasVerse reports whether the reference narrows to a verse.
func (r Reference) HasVerse() bool {
	return r.VerseStart > 0
}

// HasRange reports whether the reference spans a verse range.
func (r Reference) HasRange() bool {
	return r.VerseEnd > 0
}

// String formats the reference in canonical form.
func (r Reference) String() string {
	return Format(r)
}

// book name, chapter, optional verse, optional verse end
var referencePattern = regexp.MustCompile(`(?i)^((?:[1-3]\s*)?[a-z][a-z.\s]*?)\s*(\d+)(?:\s*:\s*(\d+)(?:\s*-\s*(\d+))?)?$`)

// Parse parses a single reference. It returns false when the input is not
// a well-formed reference to a known book.
func Parse(ref string) (Reference, bool) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return Reference{}, false
	}

	m := referencePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Reference{}, false
	}

	book, ok := NormalizeBookName(m[1])
	if !ok {
		return Reference{}, false
	}

	chapter, ok := positiveInt(m[2])
	if !ok {
		return Reference{}, false
	}

	parsed := Reference{Book: book, Chapter: chapter, Original: ref}

	if m[3] != "" {
		start, ok := positiveInt(m[3])
		if !ok {
			return Reference{}, false
		}
		parsed.VerseStart = start
	}

	if m[4] != "" {
		end, ok := positiveInt(m[4])
		if !ok || end < parsed.VerseStart {
			return Reference{}, false
		}
		parsed.VerseEnd = end
	}

	return parsed, true
}

// ExtractBookName returns the canonical book of a reference string.
func ExtractBookName(ref string) (string, bool) {
	parsed, ok := Parse(ref)
	if !ok {
		return "", false
	}
	return parsed.Book, true
}

// Format renders "Book Chapter", "Book Chapter:Verse" or
// "Book Chapter:VerseStart-VerseEnd".
func Format(r Reference) string {
	switch {
	case r.VerseStart > 0 && r.VerseEnd > 0:
		return fmt.Sprintf("%s %d:%d-%d", r.Book, r.Chapter, r.VerseStart, r.VerseEnd)
	case r.VerseStart > 0:
		return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.VerseStart)
	default:
		return fmt.Sprintf("%s %d", r.Book, r.Chapter)
	}
}

// IsBibleReference reports whether s parses as a reference.
func IsBibleReference(s string) bool {
	_, ok := Parse(s)
	return ok
}

// positiveInt parses a base-10 integer >= 1. Overflow is a failure.
func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
