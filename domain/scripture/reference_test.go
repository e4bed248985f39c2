package scripture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBookName(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Genesis", "Genesis", true},
		{"gen", "Genesis", true},
		{"Gen.", "Genesis", true},
		{"  GEN  ", "Genesis", true},
		{"1 John", "1 John", true},
		{"1John", "1 John", true},
		{"I John", "1 John", true},
		{"First John", "1 John", true},
		{"1 Jn", "1 John", true},
		{"III John", "3 John", true},
		{"II Kings", "2 Kings", true},
		{"2 Cor", "2 Corinthians", true},
		{"Ps", "Psalms", true},
		{"Psalm", "Psalms", true},
		{"Song of Songs", "Song of Solomon", true},
		{"song   of solomon", "Song of Solomon", true},
		{"Rev", "Revelation", true},
		{"Phil", "Philippians", true},
		{"Philem", "Philemon", true},
		{"Isa", "Isaiah", true},
		{"Mk", "Mark", true},
		{"Col", "Colossians", true},
		{"", "", false},
		{"   ", "", false},
		{"Hezekiah", "", false},
		{"4 John", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeBookName(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Reference
		ok    bool
	}{
		{
			name:  "chapter and verse",
			input: "John 3:16",
			want:  Reference{Book: "John", Chapter: 3, VerseStart: 16, Original: "John 3:16"},
			ok:    true,
		},
		{
			name:  "verse range with abbreviation",
			input: "1 Cor 13:4-7",
			want:  Reference{Book: "1 Corinthians", Chapter: 13, VerseStart: 4, VerseEnd: 7, Original: "1 Cor 13:4-7"},
			ok:    true,
		},
		{
			name:  "chapter only",
			input: "Psalm 23",
			want:  Reference{Book: "Psalms", Chapter: 23, Original: "Psalm 23"},
			ok:    true,
		},
		{
			name:  "no space between prefix and name",
			input: "1John 1:9",
			want:  Reference{Book: "1 John", Chapter: 1, VerseStart: 9, Original: "1John 1:9"},
			ok:    true,
		},
		{
			name:  "no space before chapter",
			input: "Gen1:1",
			want:  Reference{Book: "Genesis", Chapter: 1, VerseStart: 1, Original: "Gen1:1"},
			ok:    true,
		},
		{
			name:  "spaces around range dash",
			input: "Rom 8:28 - 30",
			want:  Reference{Book: "Romans", Chapter: 8, VerseStart: 28, VerseEnd: 30, Original: "Rom 8:28 - 30"},
			ok:    true,
		},
		{
			name:  "multi word book",
			input: "Song of Solomon 2:4",
			want:  Reference{Book: "Song of Solomon", Chapter: 2, VerseStart: 4, Original: "Song of Solomon 2:4"},
			ok:    true,
		},
		{name: "unknown book", input: "Hezekiah 1:1"},
		{name: "verse end before start", input: "John 3:16-10"},
		{name: "zero chapter", input: "John 0"},
		{name: "zero verse", input: "John 3:0"},
		{name: "empty", input: ""},
		{name: "whitespace", input: "   "},
		{name: "missing chapter", input: "John"},
		{name: "dangling colon", input: "John 3:"},
		{name: "overflow", input: "John 99999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	inputs := []string{
		"John 3:16",
		"1 Cor 13:4-7",
		"Ps 23",
		"II Tim 3:16-17",
		"song of songs 8:6",
		"Rev. 21:4",
		"3 Jn 1:4",
		"Obad 1",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, ok := Parse(input)
			require.True(t, ok)

			second, ok := Parse(Format(first))
			require.True(t, ok)

			assert.Equal(t, first.Book, second.Book)
			assert.Equal(t, first.Chapter, second.Chapter)
			assert.Equal(t, first.VerseStart, second.VerseStart)
			assert.Equal(t, first.VerseEnd, second.VerseEnd)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "John 3", Format(Reference{Book: "John", Chapter: 3}))
	assert.Equal(t, "John 3:16", Format(Reference{Book: "John", Chapter: 3, VerseStart: 16}))
	assert.Equal(t, "John 3:16-18", Reference{Book: "John", Chapter: 3, VerseStart: 16, VerseEnd: 18}.String())
}

func TestExtractBookName(t *testing.T) {
	book, ok := ExtractBookName("Matt 5:3-12")
	require.True(t, ok)
	assert.Equal(t, "Matthew", book)

	_, ok = ExtractBookName("not a reference")
	assert.False(t, ok)
}

func TestIsBibleReference(t *testing.T) {
	assert.True(t, IsBibleReference("Gen 1:1"))
	assert.False(t, IsBibleReference("hello world"))
	assert.False(t, IsBibleReference(""))
}

func TestBookTable(t *testing.T) {
	all := Books()
	require.Len(t, all, 66)

	seen := make(map[string]bool)
	for i, b := range all {
		assert.NotEmpty(t, b.Name)
		assert.False(t, seen[b.Name], "duplicate book %s", b.Name)
		seen[b.Name] = true
		assert.Equal(t, i+1, b.Order)

		// every canonical name normalizes to itself
		got, ok := NormalizeBookName(b.Name)
		assert.True(t, ok, b.Name)
		assert.Equal(t, b.Name, got)
	}

	assert.Equal(t, OldTestament, all[0].Testament)
	assert.Equal(t, OldTestament, all[38].Testament)
	assert.Equal(t, NewTestament, all[39].Testament)
	assert.Equal(t, "Matthew", all[39].Name)
}
