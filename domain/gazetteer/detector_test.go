package gazetteer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personNames(people []Person) []string {
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.Name
	}
	return names
}

func placeNames(places []Place) []string {
	names := make([]string, len(places))
	for i, p := range places {
		names[i] = p.Name
	}
	return names
}

func TestFindPeopleInText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "substring inside a longer word does not match",
			text: "The marksman shot well",
			want: []string{},
		},
		{
			name: "alias resolves to canonical name",
			text: "Pilate washed his hands",
			want: []string{"Pontius Pilate"},
		},
		{
			name: "multi word name and distinct single word entry",
			text: "John the Baptist preached",
			want: []string{"John the Baptist", "John"},
		},
		{
			name: "case insensitive",
			text: "jesus wept",
			want: []string{"Jesus"},
		},
		{
			name: "multiple aliases of one entry yield one record",
			text: "Jesus Christ, the Christ, called Jesus",
			want: []string{"Jesus"},
		},
		{
			name: "gazetteer order is kept regardless of text order",
			text: "Paul wrote to Timothy about Moses",
			want: []string{"Moses", "Paul", "Timothy"},
		},
		{
			name: "phrase split across whitespace runs",
			text: "and then Pontius \n  Pilate asked",
			want: []string{"Pontius Pilate"},
		},
		{
			name: "phrase must be contiguous",
			text: "Pontius was not here, nor the other",
			want: []string{},
		},
		{
			name: "John Mark alias",
			text: "John Mark left early",
			want: []string{"John", "Mark"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPeopleInText(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, personNames(got))
		})
	}
}

func TestFindPlacesInText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "roman is not rome", text: "a roman soldier", want: []string{}},
		{name: "plain match", text: "They went up to Jerusalem", want: []string{"Jerusalem"}},
		{name: "alias", text: "the hill of Calvary", want: []string{"Golgotha"}},
		{name: "multi word", text: "prayed on the Mount of Olives", want: []string{"Mount of Olives"}},
		{name: "several", text: "From Egypt to Babylon and Rome", want: []string{"Egypt", "Babylon", "Rome"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPlacesInText(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, placeNames(got))
		})
	}
}

func TestShortTextGuard(t *testing.T) {
	assert.Empty(t, FindPeopleInText("ab"))
	assert.NotNil(t, FindPeopleInText("ab"))
	assert.Empty(t, FindPlacesInText(""))
	assert.NotNil(t, FindPlacesInText(""))
}

func TestDetectionIsDeterministic(t *testing.T) {
	text := "Peter and John went to Jerusalem, then Paul sailed to Rome"
	first := FindPeopleInText(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, FindPeopleInText(text))
	}
	assert.Equal(t, FindPlacesInText(text), FindPlacesInText(text))
}

func TestReturnedRecordsDoNotAliasTables(t *testing.T) {
	got := FindPeopleInText("Pilate")
	require.Len(t, got, 1)
	got[0].Aliases[0] = "changed"

	again := FindPeopleInText("Pilate")
	assert.Equal(t, "Pilate", again[0].Aliases[0])
}

func TestGazetteerIntegrity(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range People() {
		require.NotEmpty(t, p.Name)
		assert.False(t, seen[p.Name], "duplicate person %q", p.Name)
		seen[p.Name] = true
		for _, a := range p.Aliases {
			assert.NotEmpty(t, a)
		}
	}

	seen = make(map[string]bool)
	for _, p := range Places() {
		require.NotEmpty(t, p.Name)
		assert.False(t, seen[p.Name], "duplicate place %q", p.Name)
		seen[p.Name] = true
	}

	names := personNames(People())
	assert.Contains(t, names, "Mark")
	assert.Contains(t, names, "Pontius Pilate")
	assert.Contains(t, names, "John the Baptist")
	assert.Contains(t, placeNames(Places()), "Jerusalem")
}
