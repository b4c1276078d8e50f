package coord2country

import (
	"fmt"
	"math"
)

// Pixel is a position on the raster, x growing east and y growing south.
type Pixel struct {
	X int
	Y int
}

func (p Pixel) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Extent is the geographic rectangle covered by a map image.
type Extent struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// WorldExtent covers the whole globe; it is the extent of the bundled map.
var WorldExtent = Extent{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}

func (e Extent) valid() bool {
	for _, v := range []float64{e.MinLat, e.MaxLat, e.MinLon, e.MaxLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return e.MinLat < e.MaxLat && e.MinLon < e.MaxLon
}

// Projector maps coordinates onto an equirectangular raster
// (https://en.wikipedia.org/wiki/Equirectangular_projection, phi0 = lambda0 = 0).
type Projector struct {
	width  int
	height int
	extent Extent
}

// NewProjector returns a projector for a width x height raster covering e.
func NewProjector(width, height int, e Extent) (Projector, error) {
	if width <= 0 || height <= 0 {
		return Projector{}, fmt.Errorf("%w: dimensions %dx%d", ErrMalformedRaster, width, height)
	}
	if !e.valid() {
		return Projector{}, fmt.Errorf("invalid extent %+v", e)
	}
	return Projector{width: width, height: height, extent: e}, nil
}

// Extent returns the geographic extent of the raster.
func (p Projector) Extent() Extent {
	return p.extent
}

// Project converts a coordinate to the pixel containing it. Results are
// clamped to the raster: longitude 180 lands on the last column and latitude
// -90 on the last row. Coordinates never wrap around.
func (p Projector) Project(lat, lon float64) Pixel {
	e := p.extent
	x := math.Floor((lon - e.MinLon) / (e.MaxLon - e.MinLon) * float64(p.width))
	y := math.Floor((e.MaxLat - lat) / (e.MaxLat - e.MinLat) * float64(p.height))
	return Pixel{
		X: clampIndex(x, p.width),
		Y: clampIndex(y, p.height),
	}
}

// clampIndex clamps in float space first so huge values never overflow int.
func clampIndex(v float64, n int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > float64(n-1) {
		return n - 1
	}
	return int(v)
}

// Unproject returns the coordinate at the center of px.
func (p Projector) Unproject(px Pixel) (lat, lon float64) {
	e := p.extent
	lon = e.MinLon + (float64(px.X)+0.5)/float64(p.width)*(e.MaxLon-e.MinLon)
	lat = e.MaxLat - (float64(px.Y)+0.5)/float64(p.height)*(e.MaxLat-e.MinLat)
	return lat, lon
}
