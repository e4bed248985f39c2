// Package gazetteer holds the static tables of biblical people and places and
// detects mentions of them in free text.
package gazetteer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinDetectableLength is the shortest text, in characters, that detection
// will scan.
const MinDetectableLength = 3

type matcher struct {
	index    int
	patterns []*regexp.Regexp
}

var (
	peopleMatchers = compileMatchers(len(peopleTable), func(i int) []string {
		return append([]string{peopleTable[i].Name}, peopleTable[i].Aliases...)
	})
	placeMatchers = compileMatchers(len(placesTable), func(i int) []string {
		return append([]string{placesTable[i].Name}, placesTable[i].Aliases...)
	})
)

func compileMatchers(n int, names func(int) []string) []matcher {
	out := make([]matcher, n)
	for i := 0; i < n; i++ {
		m := matcher{index: i}
		for _, name := range names(i) {
			m.patterns = append(m.patterns, phrasePattern(name))
		}
		out[i] = m
	}
	return out
}

// phrasePattern matches name as a whole word or phrase, case-insensitively,
// allowing any run of whitespace between its words.
func phrasePattern(name string) *regexp.Regexp {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
}

func (m matcher) matches(text string) bool {
	for _, p := range m.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func scan(text string, matchers []matcher) []int {
	if utf8.RuneCountInString(text) < MinDetectableLength {
		return nil
	}
	var hits []int
	for _, m := range matchers {
		if m.matches(text) {
			hits = append(hits, m.index)
		}
	}
	return hits
}

// FindPeopleInText returns every person mentioned in text, once each, in
// gazetteer order.
func FindPeopleInText(text string) []Person {
	found := make([]Person, 0)
	for _, i := range scan(text, peopleMatchers) {
		found = append(found, clonePerson(peopleTable[i]))
	}
	return found
}

// FindPlacesInText returns every place mentioned in text, once each, in
// gazetteer order.
func FindPlacesInText(text string) []Place {
	found := make([]Place, 0)
	for _, i := range scan(text, placeMatchers) {
		found = append(found, clonePlace(placesTable[i]))
	}
	return found
}

// People returns a copy of the people table.
func People() []Person {
	out := make([]Person, len(peopleTable))
	for i, p := range peopleTable {
		out[i] = clonePerson(p)
	}
	return out
}

// Places returns a copy of the places table.
func Places() []Place {
	out := make([]Place, len(placesTable))
	for i, p := range placesTable {
		out[i] = clonePlace(p)
	}
	return out
}

func clonePerson(p Person) Person {
	p.Aliases = append([]string(nil), p.Aliases...)
	return p
}

func clonePlace(p Place) Place {
	p.Aliases = append([]string(nil), p.Aliases...)
	return p
}
