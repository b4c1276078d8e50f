// Package mapbuild renders country boundaries into the color map used for
// lookups. It reads a GeoJSON FeatureCollection such as Natural Earth's
// admin-0 countries and paints every feature with the color the table assigns
// to it.
//
// This is the only place boundary geometry is used; lookups read the
// rendered image.
package mapbuild

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/andreiashu/coord2country"
)

// Feature properties consulted when matching a feature to the table, in
// order. Wikidata ids are tried before names.
var (
	qidProperties  = []string{"WIKIDATAID", "wikidata", "WIKIDATA", "qid"}
	nameProperties = []string{"NAME_EN", "ADMIN", "NAME_LONG", "NAME", "name"}
)

// Config controls rendering.
type Config struct {
	Width    int
	Height   int
	Extent   coord2country.Extent
	Borders  bool // draw one-pixel Border lines between neighboring countries
	Workers  int  // concurrent row bands, default GOMAXPROCS
	Progress bool // draw a progress bar when stderr is a terminal
	Logger   *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// DefaultConfig matches the bundled map: 2400x1200 over the whole globe,
// 0.15 degrees per pixel, with borders.
func DefaultConfig() Config {
	return Config{
		Width:   2400,
		Height:  1200,
		Extent:  coord2country.WorldExtent,
		Borders: true,
	}
}

// Stats describes a render.
type Stats struct {
	Features  int
	Matched   int
	Unmatched []string // names of features with no table color, sorted
}

// polygon is one polygon of a shape with its bound precomputed, so rows
// outside it are skipped cheaply.
type polygon struct {
	bound orb.Bound
	poly  orb.Polygon
}

// shape is a matched feature.
type shape struct {
	color coord2country.Color
	bound orb.Bound
	polys []polygon
}

func (s *shape) contains(pt orb.Point) bool {
	if !s.bound.Contains(pt) {
		return false
	}
	for _, p := range s.polys {
		if p.bound.Contains(pt) && planar.PolygonContains(p.poly, pt) {
			return true
		}
	}
	return false
}

// ReadFeatures decodes a GeoJSON FeatureCollection.
func ReadFeatures(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding geojson: %w", err)
	}
	return fc, nil
}

// Match finds the table color for a feature: by Wikidata id first, then by
// name.
func Match(f *geojson.Feature, t *coord2country.Table) (coord2country.Color, bool) {
	for _, key := range qidProperties {
		if qid := f.Properties.MustString(key, ""); qid != "" {
			if c, ok := t.ColorOf(qid); ok {
				return c, true
			}
		}
	}
	for _, key := range nameProperties {
		name := f.Properties.MustString(key, "")
		if name == "" {
			continue
		}
		if country, ok := t.ByName(name); ok {
			return t.ColorOf(country.QID)
		}
	}
	return 0, false
}

func featureName(f *geojson.Feature) string {
	for _, key := range nameProperties {
		if name := f.Properties.MustString(key, ""); name != "" {
			return name
		}
	}
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return "(unnamed)"
}

// shapes keeps the polygonal features the table knows about.
func shapes(fc *geojson.FeatureCollection, t *coord2country.Table, stats *Stats) []*shape {
	var out []*shape
	for _, f := range fc.Features {
		var polys []orb.Polygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polys = []orb.Polygon{g}
		case orb.MultiPolygon:
			polys = g
		default:
			continue
		}
		stats.Features++

		color, ok := Match(f, t)
		if !ok {
			stats.Unmatched = append(stats.Unmatched, featureName(f))
			continue
		}
		stats.Matched++

		s := &shape{color: color, bound: f.Geometry.Bound()}
		for _, p := range polys {
			s.polys = append(s.polys, polygon{bound: p.Bound(), poly: p})
		}
		out = append(out, s)
	}
	sort.Strings(stats.Unmatched)
	return out
}

// Render paints fc onto a new raster. Pixels are tested at their centers;
// a pixel covered by two features takes the color of the first one listed.
func Render(ctx context.Context, fc *geojson.FeatureCollection, t *coord2country.Table, cfg Config) (*coord2country.MemRaster, Stats, error) {
	var stats Stats
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, stats, fmt.Errorf("invalid map size %dx%d", cfg.Width, cfg.Height)
	}
	proj, err := coord2country.NewProjector(cfg.Width, cfg.Height, cfg.Extent)
	if err != nil {
		return nil, stats, err
	}
	cfg.Logger = cfg.logger()
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	matched := shapes(fc, t, &stats)
	cfg.Logger.Info("render_start",
		"features", stats.Features,
		"matched", stats.Matched,
		"unmatched", len(stats.Unmatched),
		"width", cfg.Width,
		"height", cfg.Height,
	)
	for _, name := range stats.Unmatched {
		cfg.Logger.Warn("feature_without_color", "name", name)
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(cfg.Height,
			progressbar.OptionSetDescription("Rendering map"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	m := coord2country.NewMemRaster(cfg.Width, cfg.Height)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < cfg.Height; y++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			renderRow(m, proj, matched, y)
			if bar != nil {
				if err := bar.Add(1); err != nil {
					return fmt.Errorf("updating progress bar: %w", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	if cfg.Borders {
		m = outline(m)
	}
	return m, stats, nil
}

// renderRow paints row y. Rows never overlap, so concurrent calls are safe.
func renderRow(m *coord2country.MemRaster, proj coord2country.Projector, shapes []*shape, y int) {
	lat, _ := proj.Unproject(coord2country.Pixel{X: 0, Y: y})

	var row []*shape
	for _, s := range shapes {
		if lat >= s.bound.Min.Lat() && lat <= s.bound.Max.Lat() {
			row = append(row, s)
		}
	}
	if len(row) == 0 {
		return
	}

	for x := 0; x < m.Width(); x++ {
		_, lon := proj.Unproject(coord2country.Pixel{X: x, Y: y})
		pt := orb.Point{lon, lat}
		for _, s := range row {
			if s.contains(pt) {
				m.Set(x, y, s.color)
				break
			}
		}
	}
}

// outline draws one-pixel Border lines between neighboring countries. Of two
// touching pixels the one belonging to the country with more pixels becomes
// the border, so a country one pixel wide or tall keeps its pixels. Ties mark
// the left or upper pixel. Coastlines are left alone.
func outline(src *coord2country.MemRaster) *coord2country.MemRaster {
	w, h := src.Width(), src.Height()
	area := make(map[coord2country.Color]int)
	dst := coord2country.NewMemRaster(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.ColorAt(x, y)
			area[c]++
			dst.Set(x, y, c)
		}
	}

	// mark one side of the edge between (x, y) and its neighbor (nx, ny)
	edge := func(x, y, nx, ny int) {
		c, n := src.ColorAt(x, y), src.ColorAt(nx, ny)
		if c == n || c == coord2country.Sea || n == coord2country.Sea {
			return
		}
		if area[n] > area[c] {
			dst.Set(nx, ny, coord2country.Border)
			return
		}
		dst.Set(x, y, coord2country.Border)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x+1 < w {
				edge(x, y, x+1, y)
			}
			if y+1 < h {
				edge(x, y, x, y+1)
			}
		}
	}
	return dst
}

// WritePNG encodes m as PNG.
func WritePNG(w io.Writer, m *coord2country.MemRaster) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, m.Image()); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// BuildFile renders the GeoJSON at src into a PNG at dst.
func BuildFile(ctx context.Context, src, dst string, t *coord2country.Table, cfg Config) (Stats, error) {
	in, err := os.Open(src)
	if err != nil {
		return Stats{}, fmt.Errorf("opening boundaries: %w", err)
	}
	defer in.Close()

	fc, err := ReadFeatures(in)
	if err != nil {
		return Stats{}, err
	}
	m, stats, err := Render(ctx, fc, t, cfg)
	if err != nil {
		return stats, err
	}

	out, err := os.Create(dst)
	if err != nil {
		return stats, fmt.Errorf("creating map: %w", err)
	}
	if err := WritePNG(out, m); err != nil {
		out.Close()
		return stats, err
	}
	if err := out.Close(); err != nil {
		return stats, fmt.Errorf("closing map: %w", err)
	}
	cfg.logger().Info("render_done", "path", dst, "matched", stats.Matched)
	return stats, nil
}
