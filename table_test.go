package coord2country

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTableRejects(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty", nil},
		{"empty name", []Entry{{Color: 0x010203, Country: Country{Name: " ", QID: "1"}}}},
		{"empty qid", []Entry{{Color: 0x010203, Country: Country{Name: "Nowhere", QID: ""}}}},
		{"bare Q", []Entry{{Color: 0x010203, Country: Country{Name: "Nowhere", QID: "Q"}}}},
		{"non-numeric qid", []Entry{{Color: 0x010203, Country: Country{Name: "Nowhere", QID: "Q12a"}}}},
		{"border color", []Entry{{Color: Border, Country: germany}}},
		{"sea color", []Entry{{Color: Sea, Country: germany}}},
		{"wide color", []Entry{{Color: 0x1000000, Country: germany}}},
		{"color reused", []Entry{
			{Color: germanyColor, Country: germany},
			{Color: germanyColor, Country: france},
		}},
		{"name with two qids", []Entry{
			{Color: germanyColor, Country: germany},
			{Color: franceColor, Country: Country{Name: "GERMANY", QID: "1"}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable(tc.entries)
			if !errors.Is(err, ErrMalformedTable) {
				t.Errorf("NewTable() error = %v, want ErrMalformedTable", err)
			}
		})
	}
}

func TestNewTableAccepts(t *testing.T) {
	tbl, err := NewTable([]Entry{
		{Color: madagascarColor, Country: madagascar},
		{Color: germanyColor, Country: Country{Name: " Germany ", QID: "Q183"}},
		{Color: germanyColor, Country: germany}, // identical duplicate
		{Color: 0x51c9a8, Country: germany},     // second shade of one country
	})
	if err != nil {
		t.Fatalf("NewTable() error: %v", err)
	}
	if tbl.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tbl.Len())
	}

	for _, c := range []Color{germanyColor, 0x51c9a8} {
		got, ok := tbl.Classify(c)
		if !ok || got != germany {
			t.Errorf("Classify(%s) = %v, %v; want %v", c, got, ok, germany)
		}
	}
	if _, ok := tbl.Classify(Sea); ok {
		t.Error("sea must not classify")
	}

	entries := tbl.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Color >= entries[i].Color {
			t.Fatalf("Entries() not sorted by color: %v", entries)
		}
	}
	entries[0].Country = france
	if tbl.Entries()[0].Country == france {
		t.Error("Entries() must return a copy")
	}

	if c, ok := tbl.ColorOf("Q183"); !ok || c != germanyColor {
		t.Errorf("ColorOf(Q183) = %s, %v", c, ok)
	}
	if _, ok := tbl.ColorOf("142"); ok {
		t.Error("ColorOf(142) should be missing")
	}

	countries := tbl.Countries()
	if len(countries) != 2 || countries[0] != germany || countries[1] != madagascar {
		t.Errorf("Countries() = %v", countries)
	}
}

func TestLoadTable(t *testing.T) {
	src := `# sample
color,name,qid,code

51c9a7,Germany,183
0x4d454b, France ,Q142,fr
7890a8,"Madagascar",1019,
200,Gray Land,4242
`
	tbl, err := LoadTable(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadTable() error: %v", err)
	}
	if tbl.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tbl.Len())
	}
	if got, _ := tbl.Classify(franceColor); got != france {
		t.Errorf("Classify(france) = %v", got)
	}
	if got, _ := tbl.Classify(Gray(200)); got.Name != "Gray Land" {
		t.Errorf("Classify(gray 200) = %v", got)
	}
	if code := tbl.Code(france); code != "FR" {
		t.Errorf("Code(France) = %q, want FR", code)
	}
}

func TestLoadTableErrors(t *testing.T) {
	tests := map[string]string{
		"short record": "51c9a7,Germany\n",
		"bad color":    "zzzzzz,Germany,183\n",
		"bad quotes":   "51c9a7,\"Germany,183\n",
		"only header":  "color,name,qid\n",
		"reserved":     "000000,Germany,183\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadTable(strings.NewReader(src)); !errors.Is(err, ErrMalformedTable) {
				t.Errorf("LoadTable() error = %v, want ErrMalformedTable", err)
			}
		})
	}
}

func TestByNameAndSuggest(t *testing.T) {
	tbl := testTable()

	for _, name := range []string{"germany", "GERMANY", " Germany"} {
		if c, ok := tbl.ByName(name); !ok || c != germany {
			t.Errorf("ByName(%q) = %v, %v", name, c, ok)
		}
	}
	if _, ok := tbl.ByName("Germ"); ok {
		t.Error("ByName must match whole names only")
	}

	tests := []struct {
		query   string
		maxDist int
		want    Country
		ok      bool
	}{
		{"Germany", 0, germany, true},
		{"Germani", 1, germany, true},
		{"Madagaskar", 2, madagascar, true},
		{"Frnce", 1, france, true},
		{"Frnce", 0, Unknown, false},
		{"Atlantis", 3, Unknown, false},
		{"Mdgscr", 10, Unknown, false}, // capped at 3
	}
	for _, tc := range tests {
		got, ok := tbl.Suggest(tc.query, tc.maxDist)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("Suggest(%q, %d) = %v, %v; want %v, %v", tc.query, tc.maxDist, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDefaultTable(t *testing.T) {
	tbl, err := DefaultTable()
	if err != nil {
		t.Fatalf("DefaultTable() error: %v", err)
	}
	if tbl.Len() < minTableSize {
		t.Errorf("Len() = %d, want >= %d", tbl.Len(), minTableSize)
	}

	for _, k := range KnownPoints {
		c, ok := tbl.ByName(k.Name)
		if !ok {
			t.Errorf("%s missing from the bundled table", k.Name)
			continue
		}
		if c.QID != k.QID {
			t.Errorf("%s QID = %s, want %s", k.Name, c.QID, k.QID)
		}
	}

	for _, tc := range []struct{ name, code string }{
		{"Germany", "DE"},
		{"Ivory Coast", "CI"},
		{"Kosovo", "XK"},
	} {
		c, ok := tbl.ByName(tc.name)
		if !ok {
			t.Fatalf("%s missing from the bundled table", tc.name)
		}
		if got := tbl.Code(c); got != tc.code {
			t.Errorf("Code(%s) = %q, want %q", tc.name, got, tc.code)
		}
	}
}
