package coord2country

import (
	"strings"

	"github.com/biter777/countries"
)

// Code returns the ISO 3166-1 alpha-2 code of c ("DE" for Germany), or ""
// for Unknown and for names that match no ISO country (e.g. disputed areas).
//
// Codes pinned in the table win. The rest are derived from the English name
// once per table, on first use, so tables that never need codes never pay
// for the name matching.
func (t *Table) Code(c Country) string {
	if c.IsUnknown() {
		return ""
	}
	t.codesOnce.Do(t.buildCodes)
	return t.codes[c.QID]
}

// buildCodes fills the QID -> code index.
func (t *Table) buildCodes() {
	t.codes = make(map[string]string, len(t.byName))
	for _, e := range t.entries {
		qid := e.Country.QID
		if _, done := t.codes[qid]; done {
			continue
		}
		if code, ok := t.pinnedCodes[qid]; ok {
			t.codes[qid] = code
			continue
		}
		t.codes[qid] = isoCode(e.Country.Name)
	}
}

// isoCode matches an English country name against the ISO 3166 registry.
func isoCode(name string) string {
	cc := countries.ByName(strings.TrimSpace(name))
	if cc == countries.Unknown {
		return ""
	}
	return cc.Alpha2()
}
