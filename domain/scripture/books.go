package scripture

import (
	"regexp"
	"strings"
)

// Testament identifies which canon section a book belongs to.
type Testament string

const (
	OldTestament Testament = "old"
	NewTestament Testament = "new"
)

// Book is one row of the canonical book table.
type Book struct {
	Name      string
	Testament Testament
	Order     int
}

type bookEntry struct {
	book    Book
	pattern *regexp.Regexp
}

// ordinal prefixes accepted in front of numbered books; roman numerals and
// words need a following space so "Isa" stays Isaiah
var ordinalPrefixes = map[int]string{
	1: `(?:1|1st)\s*|(?:i|first)\s+`,
	2: `(?:2|2nd)\s*|(?:ii|second)\s+`,
	3: `(?:3|3rd)\s*|(?:iii|third)\s+`,
}

// bookDef describes a book by its canonical name, its ordinal (0 when the
// book has no numeric prefix) and the accepted spellings of the name stem.
type bookDef struct {
	name    string
	ordinal int
	stems   []string
}

var bookDefs = []bookDef{
	// Old Testament
	{"Genesis", 0, []string{"genesis", "gen", "ge", "gn"}},
	{"Exodus", 0, []string{"exodus", "exod", "exo", "ex"}},
	{"Leviticus", 0, []string{"leviticus", "lev", "le", "lv"}},
	{"Numbers", 0, []string{"numbers", "num", "nu", "nm", "nb"}},
	{"Deuteronomy", 0, []string{"deuteronomy", "deut", "deu", "dt"}},
	{"Joshua", 0, []string{"joshua", "josh", "jos", "jsh"}},
	{"Judges", 0, []string{"judges", "judg", "jdg", "jg", "jdgs"}},
	{"Ruth", 0, []string{"ruth", "rth", "ru"}},
	{"1 Samuel", 1, []string{"samuel", "sam", "sa", "sm", "s"}},
	{"2 Samuel", 2, []string{"samuel", "sam", "sa", "sm", "s"}},
	{"1 Kings", 1, []string{"kings", "kgs", "kin", "ki", "k"}},
	{"2 Kings", 2, []string{"kings", "kgs", "kin", "ki", "k"}},
	{"1 Chronicles", 1, []string{"chronicles", "chron", "chr", "ch"}},
	{"2 Chronicles", 2, []string{"chronicles", "chron", "chr", "ch"}},
	{"Ezra", 0, []string{"ezra", "ezr", "ez"}},
	{"Nehemiah", 0, []string{"nehemiah", "neh", "ne"}},
	{"Esther", 0, []string{"esther", "esth", "est", "es"}},
	{"Job", 0, []string{"job", "jb"}},
	{"Psalms", 0, []string{"psalms", "psalm", "pslm", "psa", "psm", "pss", "ps"}},
	{"Proverbs", 0, []string{"proverbs", "proverb", "prov", "pro", "prv", "pr"}},
	{"Ecclesiastes", 0, []string{"ecclesiastes", "eccles", "eccle", "ecc", "ec", "qoh"}},
	{"Song of Solomon", 0, []string{"song of solomon", "song of songs", "song of sol", "song", "sos", "so", "canticles"}},
	{"Isaiah", 0, []string{"isaiah", "isa", "is"}},
	{"Jeremiah", 0, []string{"jeremiah", "jer", "je", "jr"}},
	{"Lamentations", 0, []string{"lamentations", "lam", "la"}},
	{"Ezekiel", 0, []string{"ezekiel", "ezek", "eze", "ezk"}},
	{"Daniel", 0, []string{"daniel", "dan", "da", "dn"}},
	{"Hosea", 0, []string{"hosea", "hos", "ho"}},
	{"Joel", 0, []string{"joel", "jl"}},
	{"Amos", 0, []string{"amos", "am"}},
	{"Obadiah", 0, []string{"obadiah", "obad", "ob"}},
	{"Jonah", 0, []string{"jonah", "jnh", "jon"}},
	{"Micah", 0, []string{"micah", "mic", "mc"}},
	{"Nahum", 0, []string{"nahum", "nah", "na"}},
	{"Habakkuk", 0, []string{"habakkuk", "hab", "hb"}},
	{"Zephaniah", 0, []string{"zephaniah", "zeph", "zep", "zp"}},
	{"Haggai", 0, []string{"haggai", "hag", "hg"}},
	{"Zechariah", 0, []string{"zechariah", "zech", "zec", "zc"}},
	{"Malachi", 0, []string{"malachi", "mal", "ml"}},

	// New Testament
	{"Matthew", 0, []string{"matthew", "matt", "mat", "mt"}},
	{"Mark", 0, []string{"mark", "mrk", "mar", "mk", "mr"}},
	{"Luke", 0, []string{"luke", "luk", "lk"}},
	{"John", 0, []string{"john", "joh", "jhn", "jn"}},
	{"Acts", 0, []string{"acts", "act", "ac"}},
	{"Romans", 0, []string{"romans", "rom", "ro", "rm"}},
	{"1 Corinthians", 1, []string{"corinthians", "cor", "co"}},
	{"2 Corinthians", 2, []string{"corinthians", "cor", "co"}},
	{"Galatians", 0, []string{"galatians", "gal", "ga"}},
	{"Ephesians", 0, []string{"ephesians", "eph", "ephes"}},
	{"Philippians", 0, []string{"philippians", "phil", "php", "pp"}},
	{"Colossians", 0, []string{"colossians", "col", "co"}},
	{"1 Thessalonians", 1, []string{"thessalonians", "thess", "thes", "th"}},
	{"2 Thessalonians", 2, []string{"thessalonians", "thess", "thes", "th"}},
	{"1 Timothy", 1, []string{"timothy", "tim", "ti", "tm"}},
	{"2 Timothy", 2, []string{"timothy", "tim", "ti", "tm"}},
	{"Titus", 0, []string{"titus", "tit", "ti"}},
	{"Philemon", 0, []string{"philemon", "philem", "phm", "pm"}},
	{"Hebrews", 0, []string{"hebrews", "heb"}},
	{"James", 0, []string{"james", "jas", "jm"}},
	{"1 Peter", 1, []string{"peter", "pet", "pe", "pt", "p"}},
	{"2 Peter", 2, []string{"peter", "pet", "pe", "pt", "p"}},
	{"1 John", 1, []string{"john", "joh", "jhn", "jn", "j"}},
	{"2 John", 2, []string{"john", "joh", "jhn", "jn", "j"}},
	{"3 John", 3, []string{"john", "joh", "jhn", "jn", "j"}},
	{"Jude", 0, []string{"jude", "jud", "jd"}},
	{"Revelation", 0, []string{"revelation", "revelations", "rev", "re", "rv"}},
}

// books is built once and never mutated afterwards.
var books = buildBookTable()

func buildBookTable() []bookEntry {
	entries := make([]bookEntry, 0, len(bookDefs))
	for i, def := range bookDefs {
		testament := OldTestament
		if i >= 39 {
			testament = NewTestament
		}

		stems := make([]string, len(def.stems))
		for j, s := range def.stems {
			stems[j] = strings.ReplaceAll(regexp.QuoteMeta(s), " ", `\s+`)
		}
		expr := `(?:` + strings.Join(stems, "|") + `)`
		if def.ordinal > 0 {
			expr = `(?:` + ordinalPrefixes[def.ordinal] + `)` + expr
		}

		entries = append(entries, bookEntry{
			book:    Book{Name: def.name, Testament: testament, Order: i + 1},
			pattern: regexp.MustCompile(`(?i)^` + expr + `$`),
		})
	}
	return entries
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanBookInput trims, drops periods and collapses inner whitespace.
func cleanBookInput(input string) string {
	s := strings.ReplaceAll(input, ".", " ")
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.TrimSpace(s)
}

// NormalizeBookName maps any accepted spelling to the canonical book name.
func NormalizeBookName(input string) (string, bool) {
	book, ok := LookupBook(input)
	if !ok {
		return "", false
	}
	return book.Name, true
}

// LookupBook returns the canonical book row for an accepted spelling.
func LookupBook(input string) (Book, bool) {
	cleaned := cleanBookInput(input)
	if cleaned == "" {
		return Book{}, false
	}
	for _, entry := range books {
		if entry.pattern.MatchString(cleaned) {
			return entry.book, true
		}
	}
	return Book{}, false
}

// Books returns the canonical book table in canon order.
func Books() []Book {
	out := make([]Book, len(books))
	for i, entry := range books {
		out[i] = entry.book
	}
	return out
}
