package coord2country

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Country identifies the country painted in a color: its English name and the
// numeric part of its Wikidata QID (e.g. "183" for http://www.wikidata.org/entity/Q183).
type Country struct {
	Name string
	QID  string
}

// Unknown is returned when no country could be resolved. Name and QID are both empty.
var Unknown = Country{}

// IsUnknown reports whether c is the Unknown sentinel.
func (c Country) IsUnknown() bool {
	return c == Unknown
}

// Entry assigns one map color to a country. Code optionally pins the ISO
// 3166-1 alpha-2 code; when empty it is derived from the name.
type Entry struct {
	Color   Color
	Country Country
	Code    string
}

// Table maps colors to countries. It is immutable once built and safe for
// concurrent use.
type Table struct {
	byColor map[Color]Country
	byQID   map[string]Color   // first color registered for each QID
	byName  map[string]Country // folded name -> country
	entries []Entry            // sorted by color

	pinnedCodes map[string]string // QID -> code given in the table
	codesOnce   sync.Once
	codes       map[string]string // QID -> code, see codes.go
}

// maxSuggestDistance caps the edit distance Suggest will accept.
const maxSuggestDistance = 3

// foldName folds case the Unicode way so "CÔTE" and "côte" index alike.
// A Caser keeps state, so each call builds its own.
func foldName(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// NewTable validates entries and builds a Table. Errors wrap ErrMalformedTable.
// An identical row listed twice is accepted; one color claimed by two
// different countries is not.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		byColor: make(map[Color]Country, len(entries)),
		byQID:   make(map[string]Color, len(entries)),
		byName:  make(map[string]Country, len(entries)),

		pinnedCodes: make(map[string]string),
	}

	for i, e := range entries {
		c := e.Country
		c.Name = strings.TrimSpace(c.Name)
		c.QID = normalizeQID(c.QID)

		if c.Name == "" {
			return nil, fmt.Errorf("%w: entry %d (%s): empty country name", ErrMalformedTable, i, e.Color)
		}
		if !validQID(c.QID) {
			return nil, fmt.Errorf("%w: entry %d (%s): invalid QID %q for %s", ErrMalformedTable, i, e.Color, e.Country.QID, c.Name)
		}
		if e.Color > 0xFFFFFF {
			return nil, fmt.Errorf("%w: entry %d: color %#x exceeds 24 bits", ErrMalformedTable, i, uint32(e.Color))
		}
		if e.Color.Reserved() {
			return nil, fmt.Errorf("%w: entry %d: %s is a reserved color and cannot map to %s", ErrMalformedTable, i, e.Color, c.Name)
		}

		if prev, ok := t.byColor[e.Color]; ok {
			if prev != c {
				return nil, fmt.Errorf("%w: color %s mapped to both %s (Q%s) and %s (Q%s)",
					ErrMalformedTable, e.Color, prev.Name, prev.QID, c.Name, c.QID)
			}
			continue
		}
		if known, ok := t.byName[foldName(c.Name)]; ok && known.QID != c.QID {
			return nil, fmt.Errorf("%w: %s listed with QIDs %s and %s", ErrMalformedTable, c.Name, known.QID, c.QID)
		}

		t.byColor[e.Color] = c
		if _, ok := t.byQID[c.QID]; !ok {
			t.byQID[c.QID] = e.Color
		}
		t.byName[foldName(c.Name)] = c
		code := strings.ToUpper(strings.TrimSpace(e.Code))
		if code != "" {
			t.pinnedCodes[c.QID] = code
		}
		t.entries = append(t.entries, Entry{Color: e.Color, Country: c, Code: code})
	}

	if len(t.entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrMalformedTable)
	}

	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].Color < t.entries[j].Color })
	return t, nil
}

// normalizeQID strips whitespace and an optional leading "Q".
func normalizeQID(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > 1 && (q[0] == 'Q' || q[0] == 'q') {
		q = q[1:]
	}
	return q
}

func validQID(q string) bool {
	if q == "" {
		return false
	}
	for _, r := range q {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LoadTable reads a CSV table with the columns color,name,qid and an optional
// fourth column holding the ISO 3166-1 alpha-2 code. Colors are
// written as rrggbb, 0xrrggbb or a decimal gray shade; '#' starts a comment
// line, so the #rrggbb form is not available here. Blank lines and a header
// row are skipped.
func LoadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var entries []Entry
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading csv: %v", ErrMalformedTable, err)
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "color") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("%w: record %d: want 3 fields (color,name,qid), got %d", ErrMalformedTable, line, len(rec))
		}

		c, err := ParseColor(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedTable, line, err)
		}
		e := Entry{
			Color:   c,
			Country: Country{Name: rec[1], QID: rec[2]},
		}
		if len(rec) > 3 {
			e.Code = rec[3]
		}
		entries = append(entries, e)
	}
	return NewTable(entries)
}

// Classify returns the country registered for c.
func (t *Table) Classify(c Color) (Country, bool) {
	country, ok := t.byColor[c]
	return country, ok
}

// Len returns the number of distinct colors in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table rows sorted by color.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Countries returns each distinct country once, sorted by name.
func (t *Table) Countries() []Country {
	out := make([]Country, 0, len(t.byName))
	for _, c := range t.byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ColorOf returns the first color registered for a QID ("183" or "Q183").
func (t *Table) ColorOf(qid string) (Color, bool) {
	c, ok := t.byQID[normalizeQID(qid)]
	return c, ok
}

// ByName looks a country up by its exact name, ignoring case.
func (t *Table) ByName(name string) (Country, bool) {
	c, ok := t.byName[foldName(name)]
	return c, ok
}

// Suggest returns the country whose name is closest to name, provided the
// edit distance is at most maxDist. maxDist is capped at 3. Ties go to the
// alphabetically first name so the answer is stable.
func (t *Table) Suggest(name string, maxDist int) (Country, bool) {
	if c, ok := t.ByName(name); ok {
		return c, true
	}
	if maxDist > maxSuggestDistance {
		maxDist = maxSuggestDistance
	}
	if maxDist <= 0 {
		return Unknown, false
	}

	query := foldName(name)
	best, bestDist := Unknown, maxDist+1
	for _, c := range t.Countries() {
		d := levenshtein.ComputeDistance(query, foldName(c.Name))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist <= maxDist
}
