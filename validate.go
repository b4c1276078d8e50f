package coord2country

import (
	"errors"
	"fmt"
)

// minTableSize is the smallest table a world map is expected to carry.
const minTableSize = 190

// Known is a coordinate with an expected country, for functional checks.
type Known struct {
	Lat  float64
	Lon  float64
	Name string
	QID  string
}

// KnownPoints are well inside their countries, far from borders and coasts,
// so any world map at the bundled resolution must resolve them directly or
// within a few pixels.
var KnownPoints = []Known{
	{50.1, 10.2, "Germany", "183"},
	{46.6, 2.4, "France", "142"},
	{40.2, -3.6, "Spain", "29"},
	{39.8, -98.6, "United States", "30"},
	{56.1, -106.3, "Canada", "16"},
	{-10.3, -53.2, "Brazil", "155"},
	{-34.6, -64.2, "Argentina", "414"},
	{26.8, 30.8, "Egypt", "79"},
	{-0.2, 37.9, "Kenya", "114"},
	{-19.4, 46.7, "Madagascar", "1019"},
	{23.6, 78.9, "India", "668"},
	{35.0, 103.8, "China", "148"},
	{61.5, 98.0, "Russia", "159"},
	{36.2, 138.3, "Japan", "17"},
	{-24.8, 134.2, "Australia", "408"},
}

// Validate checks l against known coordinates and returns every mismatch
// joined into one error, or nil. Use it after rendering or replacing a map.
func (l *Locator) Validate(known []Known) error {
	var errs []error
	for _, k := range known {
		got := l.Resolve(k.Lat, k.Lon)
		if got.Name != k.Name || got.QID != k.QID {
			errs = append(errs, fmt.Errorf("lookup(%v, %v) = %q (Q%s), want %q (Q%s)",
				k.Lat, k.Lon, got.Name, got.QID, k.Name, k.QID))
		}
	}
	return errors.Join(errs...)
}

// ValidateMap loads the configured table and map and checks them against
// KnownPoints.
func ValidateMap(opts ...Option) error {
	l, err := Load(opts...)
	if err != nil {
		return fmt.Errorf("failed to load map: %w", err)
	}
	if n := l.table.Len(); n < minTableSize {
		return fmt.Errorf("table too small: got %d colors, want >= %d", n, minTableSize)
	}
	if err := l.Validate(KnownPoints); err != nil {
		return fmt.Errorf("known points: %w", err)
	}
	l.config.Logger.Info("map_valid", "colors", l.table.Len(), "points", len(KnownPoints))
	return nil
}
