package fixture

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreiashu/coord2country"
)

// newWorld paints Germany, Madagascar and a single French pixel next to a
// border pixel onto a one-pixel-per-degree world.
func newWorld(t *testing.T) (*coord2country.Locator, *coord2country.Table) {
	t.Helper()

	tbl, err := coord2country.NewTable([]coord2country.Entry{
		{Color: 0x51c9a7, Country: coord2country.Country{Name: "Germany", QID: "183"}},
		{Color: 0x4d454b, Country: coord2country.Country{Name: "France", QID: "142"}},
		{Color: 0x7890a8, Country: coord2country.Country{Name: "Madagascar", QID: "1019"}},
	})
	require.NoError(t, err)

	m := coord2country.NewMemRaster(360, 180)
	m.FillRect(186, 35, 194, 42, 0x51c9a7)
	m.FillRect(223, 102, 230, 115, 0x7890a8)
	m.Set(220, 112, 0x4d454b)
	m.Set(219, 113, coord2country.Border)

	loc, err := coord2country.New(tbl, m)
	require.NoError(t, err)
	return loc, tbl
}

func TestReadFile(t *testing.T) {
	rows, err := ReadFile("testdata/countries.csv")
	require.NoError(t, err)
	require.Len(t, rows, 10)

	want := []Row{
		{Line: 2, Index: "1", Name: "Germany", Lat: 50, Lon: 10},
		{Line: 9, Index: "", Name: "Kiribati", Skip: true},
		{Line: 10, Index: "", Name: "Tuvalu", Skip: true},
	}
	got := []Row{rows[0], rows[7], rows[8]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"short row":     "index,country_name,latitude,longitude\n1,Germany,50\n",
		"bad latitude":  "index,country_name,latitude,longitude\n1,Germany,north,10\n",
		"bad longitude": "index,country_name,latitude,longitude\n1,Germany,50,\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 2")
		})
	}

	_, err := ReadFile("testdata/missing.csv")
	assert.Error(t, err)
}

func TestVerifyFixture(t *testing.T) {
	loc, tbl := newWorld(t)
	rows, err := ReadFile("testdata/countries.csv")
	require.NoError(t, err)

	rep := Verify(loc, tbl, rows)
	assert.True(t, rep.OK(), "failures: %v", rep.Err())
	assert.NoError(t, rep.Err())
	assert.Equal(t, 8, rep.Checked)
	assert.Equal(t, 2, rep.Skipped)
}

func TestVerifyReportsMismatches(t *testing.T) {
	loc, tbl := newWorld(t)
	rows := []Row{
		{Line: 2, Index: "1", Name: "Germany", Lat: 50, Lon: 10},
		{Line: 3, Index: "2", Name: "Madagaskar", Lat: -18.9, Lon: 47.5},
		{Line: 4, Index: "3", Name: "France", Lat: 50, Lon: 10},
		{Line: 5, Name: "Spain", Skip: true},
	}

	rep := Verify(loc, tbl, rows)
	assert.False(t, rep.OK())
	assert.Equal(t, 3, rep.Checked)
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.Failures, 2)

	assert.Equal(t, "Madagascar", rep.Failures[0].Got)
	assert.Equal(t, "Madagascar", rep.Failures[0].Suggestion)
	assert.Equal(t, "Germany", rep.Failures[1].Got)
	assert.Empty(t, rep.Failures[1].Suggestion)

	err := rep.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `line 3 (#2): country(-18.9, 47.5) = "Madagascar", want "Madagaskar"`)
	assert.Contains(t, err.Error(), `did you mean "Madagascar"?`)

	// without a suggester the failures are still reported
	rep = Verify(loc, nil, rows)
	require.Len(t, rep.Failures, 2)
	assert.Empty(t, rep.Failures[0].Suggestion)
}
