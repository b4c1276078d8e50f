// Package fixture reads regression fixtures of known coordinates and checks a
// locator against them.
//
// A fixture is CSV with a header row and the columns
// index,country_name,latitude,longitude. Rows whose index is empty mark
// countries not covered yet; they are kept but skipped by Verify.
package fixture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andreiashu/coord2country"
)

// suggestDistance is the edit distance allowed when suggesting the table name
// a misspelled fixture name probably meant.
const suggestDistance = 3

// Row is one fixture record.
type Row struct {
	Line  int // 1-based line in the source file
	Index string
	Name  string
	Lat   float64
	Lon   float64
	Skip  bool
}

// Lookuper resolves coordinates to country names.
type Lookuper interface {
	CountryName(lat, lon float64) string
}

// Suggester proposes the known country closest to a name.
type Suggester interface {
	Suggest(name string, maxDist int) (coord2country.Country, bool)
}

// Failure is a row whose lookup did not return the recorded name.
type Failure struct {
	Row        Row
	Got        string
	Suggestion string // table name close to Row.Name when Row.Name is not in the table
}

func (f Failure) String() string {
	s := fmt.Sprintf("line %d (#%s): country(%v, %v) = %q, want %q", f.Row.Line, f.Row.Index, f.Row.Lat, f.Row.Lon, f.Got, f.Row.Name)
	if f.Suggestion != "" {
		s += fmt.Sprintf(" (fixture name unknown to the table, did you mean %q?)", f.Suggestion)
	}
	return s
}

// Report summarizes a Verify run.
type Report struct {
	Checked  int
	Skipped  int
	Failures []Failure
}

// OK reports whether every checked row matched.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// Err returns all failures joined, or nil.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, errors.New(f.String()))
	}
	return errors.Join(errs...)
}

// ReadFile reads a fixture from disk.
func ReadFile(path string) ([]Row, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixture: %w", err)
	}
	defer fh.Close()
	return Read(fh)
}

// Read parses a fixture. The first record is the header.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []Row
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading fixture: %w", err)
		}
		if header {
			header = false
			continue
		}
		line, _ := cr.FieldPos(0)

		row := Row{Line: line, Index: strings.TrimSpace(rec[0])}
		if len(rec) > 1 {
			row.Name = strings.TrimSpace(rec[1])
		}
		if row.Index == "" {
			row.Skip = true
			rows = append(rows, row)
			continue
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("line %d: want index,country_name,latitude,longitude, got %d fields", line, len(rec))
		}
		if row.Lat, err = parseCoord(rec[2]); err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		if row.Lon, err = parseCoord(rec[3]); err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCoord(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Verify looks every non-skipped row up and collects the mismatches. When s
// is not nil, failures whose recorded name the table does not know carry the
// closest table name.
func Verify(l Lookuper, s Suggester, rows []Row) Report {
	var rep Report
	for _, row := range rows {
		if row.Skip {
			rep.Skipped++
			continue
		}
		rep.Checked++

		got := l.CountryName(row.Lat, row.Lon)
		if got == row.Name {
			continue
		}
		f := Failure{Row: row, Got: got}
		if s != nil {
			if c, ok := s.Suggest(row.Name, suggestDistance); ok && c.Name != row.Name {
				f.Suggestion = c.Name
			}
		}
		rep.Failures = append(rep.Failures, f)
	}
	return rep
}
