// Package coord2country converts coordinates into the country at that point,
// offline, by reading a pre-rendered world map in which every country is
// painted a distinct color.
//
//	loc, err := coord2country.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(loc.CountryName(50.1, 10.2)) // Germany
//	fmt.Println(loc.CountryQID(50.1, 10.2))  // 183
//
// Accuracy is bounded by the map resolution. Points on a border line, in
// coastal water or on an anti-aliased pixel are snapped to the nearest
// country color within a bounded ring search; points further out, such as the
// open ocean, resolve to Unknown.
package coord2country

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"sync"

	"github.com/golang/geo/s2"
)

// data holds the bundled color table and, once rendered with
// `coord2country build-map`, the map image.
//
//go:embed data
var data embed.FS

const (
	defaultTablePath = "data/countries.csv"
	defaultMapPath   = "data/countries.png"
)

// earthRadiusKm is the mean Earth radius used for snap distances.
const earthRadiusKm = 6371.0088

var (
	// ErrMalformedTable means the color table cannot serve lookups.
	ErrMalformedTable = errors.New("coord2country: malformed color table")
	// ErrMalformedRaster means the map image cannot serve lookups.
	ErrMalformedRaster = errors.New("coord2country: malformed map raster")
	// ErrMapNotFound means no map image was found on disk or embedded.
	ErrMapNotFound = errors.New("coord2country: map image not found")
	// ErrInvalidCoordinate is returned for NaN or infinite coordinates.
	ErrInvalidCoordinate = errors.New("coord2country: invalid coordinate")
	// ErrOutOfRange is returned under RangeReject for coordinates outside
	// [-90,90] x [-180,180].
	ErrOutOfRange = errors.New("coord2country: coordinate out of range")
)

// LookupResult describes one lookup.
type LookupResult struct {
	Country    Country
	Code       string  // ISO 3166-1 alpha-2, "" when unknown
	Pixel      Pixel   // pixel the coordinate projects to
	Match      Pixel   // pixel whose color decided the country
	Radius     int     // ring radius of Match, 0 when the pixel classified directly
	Method     Method  // how the country was found
	DistanceKm float64 // great-circle distance from the coordinate to the center of Match, 0 for direct hits
}

// Locator resolves coordinates to countries.
// Safe for concurrent use: nothing is mutated after construction.
type Locator struct {
	table     *Table
	raster    Raster
	projector Projector
	resolver  *Resolver
	config    *Config
}

// New builds a Locator from an already loaded table and raster. Errors are
// initialization failures (malformed table, raster or extent) and must be
// treated as fatal.
func New(t *Table, r Raster, opts ...Option) (*Locator, error) {
	cfg := newConfig(opts)

	if t == nil || t.Len() == 0 {
		return nil, fmt.Errorf("%w: nil or empty table", ErrMalformedTable)
	}
	if err := ValidateRaster(r); err != nil {
		return nil, err
	}

	proj, err := NewProjector(r.Width(), r.Height(), cfg.Extent)
	if err != nil {
		return nil, fmt.Errorf("building projector: %w", err)
	}
	res, err := NewResolver(r, t, WithRingRadius(cfg.SearchRadius), WithRingStrategy(cfg.Strategy))
	if err != nil {
		return nil, fmt.Errorf("building resolver: %w", err)
	}

	cfg.Logger.Debug("locator_ready",
		"width", r.Width(),
		"height", r.Height(),
		"colors", t.Len(),
		"search_radius", cfg.SearchRadius,
		"strategy", cfg.Strategy.String(),
		"range_policy", cfg.RangePolicy.String(),
	)

	return &Locator{
		table:     t,
		raster:    r,
		projector: proj,
		resolver:  res,
		config:    cfg,
	}, nil
}

// Load reads the color table and map image and builds a Locator.
//
// Without WithTableFile/WithMapFile, data/countries.csv and data/countries.png
// are read from the working directory when present and from the copies
// embedded in the package otherwise.
//
// Example:
//
//	loc, err := coord2country.Load(coord2country.WithMapFile("/srv/maps/world.png"))
func Load(opts ...Option) (*Locator, error) {
	cfg := newConfig(opts)

	t, err := loadTableFile(cfg.TableFile)
	if err != nil {
		return nil, err
	}
	r, err := loadMapFile(cfg.MapFile)
	if err != nil {
		return nil, err
	}
	return New(t, r, opts...)
}

// DefaultTable returns the color table bundled with the package.
func DefaultTable() (*Table, error) {
	return loadTableFile("")
}

func loadTableFile(path string) (*Table, error) {
	fh, err := openAsset(path, defaultTablePath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening table: %v", ErrMalformedTable, err)
	}
	defer fh.Close()

	t, err := LoadTable(fh)
	if err != nil {
		return nil, fmt.Errorf("loading table: %w", err)
	}
	return t, nil
}

func loadMapFile(path string) (Raster, error) {
	fh, err := openAsset(path, defaultMapPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrMapNotFound, err)
		}
		return nil, fmt.Errorf("opening map: %w", err)
	}
	defer fh.Close()

	r, err := DecodeRaster(fh)
	if err != nil {
		return nil, fmt.Errorf("loading map: %w", err)
	}
	return r, nil
}

// openAsset opens an explicitly configured file from disk, or the default
// asset from the working directory first and the embedded copy second, so a
// freshly rendered map can be tried before it is embedded.
func openAsset(explicit, fallback string) (io.ReadCloser, error) {
	if explicit != "" {
		return os.Open(explicit)
	}
	if fh, err := os.Open(fallback); err == nil {
		return fh, nil
	}
	return data.Open(fallback)
}

// Singleton pattern for the default Locator.
var (
	defaultLocator     *Locator
	defaultLocatorOnce sync.Once
	defaultLocatorErr  error
)

// Default returns a shared Locator built with Load(), initializing it on
// first call.
func Default() (*Locator, error) {
	defaultLocatorOnce.Do(func() {
		defaultLocator, defaultLocatorErr = Load()
	})
	return defaultLocator, defaultLocatorErr
}

// MustDefault is like Default but panics when the bundled data cannot be
// loaded: a process without its map cannot answer any lookup.
func MustDefault() *Locator {
	l, err := Default()
	if err != nil {
		panic(err)
	}
	return l
}

// BUG(coord2country): CountryName and CountryQID panic until data/countries.png
// has been rendered with `coord2country build-map` and embedded; use Load or
// New to handle ErrMapNotFound.

// CountryName returns the English name of the country at the coordinate using
// the default Locator, or "" when none is found.
// Example: CountryName(50.1, 10.2) == "Germany".
func CountryName(latitude, longitude float64) string {
	return MustDefault().CountryName(latitude, longitude)
}

// CountryQID returns the numeric part of the Wikidata QID of the country at
// the coordinate using the default Locator, or "" when none is found.
// Example: CountryQID(50.1, 10.2) == "183", meaning http://www.wikidata.org/entity/Q183.
func CountryQID(latitude, longitude float64) string {
	return MustDefault().CountryQID(latitude, longitude)
}

// Table returns the color table.
func (l *Locator) Table() *Table {
	return l.table
}

// Projector returns the projector for the map.
func (l *Locator) Projector() Projector {
	return l.projector
}

// Lookup resolves a coordinate. The error is non-nil only for NaN/Inf input
// and, under RangeReject, for out-of-range input. Finding no country is not
// an error: the LookupResult then holds Unknown and MethodUnresolved.
func (l *Locator) Lookup(lat, lon float64) (LookupResult, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return LookupResult{Country: Unknown}, fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, lat, lon)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		if l.config.RangePolicy == RangeReject {
			return LookupResult{Country: Unknown}, fmt.Errorf("%w: (%v, %v)", ErrOutOfRange, lat, lon)
		}
		lat = math.Max(-90, math.Min(90, lat))
		lon = math.Max(-180, math.Min(180, lon))
	}

	px := l.projector.Project(lat, lon)
	res := l.resolver.Resolve(px)

	out := LookupResult{
		Country: res.Country,
		Pixel:   px,
		Match:   res.Match,
		Radius:  res.Radius,
		Method:  res.Method,
	}
	if res.Method == MethodUnresolved {
		return out, nil
	}
	out.Code = l.table.Code(res.Country)
	if res.Method == MethodRing {
		mlat, mlon := l.projector.Unproject(res.Match)
		out.DistanceKm = distanceKm(lat, lon, mlat, mlon)
	}
	return out, nil
}

// distanceKm returns the great-circle distance between two coordinates.
func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * earthRadiusKm
}

// Resolve returns the country at the coordinate, Unknown when there is none
// or the input is rejected.
func (l *Locator) Resolve(lat, lon float64) Country {
	res, err := l.Lookup(lat, lon)
	if err != nil {
		return Unknown
	}
	return res.Country
}

// CountryName returns the English country name at the coordinate, or "".
func (l *Locator) CountryName(lat, lon float64) string {
	return l.Resolve(lat, lon).Name
}

// CountryQID returns the numeric Wikidata QID of the country at the
// coordinate, or "".
func (l *Locator) CountryQID(lat, lon float64) string {
	return l.Resolve(lat, lon).QID
}

// CountryCode returns the ISO 3166-1 alpha-2 code of the country at the
// coordinate, or "".
func (l *Locator) CountryCode(lat, lon float64) string {
	res, err := l.Lookup(lat, lon)
	if err != nil {
		return ""
	}
	return res.Code
}
