package coord2country

import "fmt"

// defaultSearchRadius bounds the ring search, in pixels. On the 2400 pixel
// wide bundled map one pixel is 0.15 degrees, so the search reaches about
// 5 degrees: enough to cross borders, straits and coastal water, not enough to
// pull a mid-ocean point onto a continent.
const defaultSearchRadius = 32

// Method tells how a lookup was resolved.
type Method int

const (
	// MethodUnresolved means no classified pixel was found within the search radius.
	MethodUnresolved Method = iota
	// MethodDirect means the query pixel itself carried a country color.
	MethodDirect
	// MethodRing means the country was found by the ring search.
	MethodRing
)

func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodRing:
		return "ring"
	default:
		return "unresolved"
	}
}

// Strategy selects how a ring with several classified pixels is decided.
type Strategy int

const (
	// StrategyNearest takes the first classified pixel in ring scan order.
	StrategyNearest Strategy = iota
	// StrategyMajority takes the country owning most pixels of the first ring
	// that holds any. Ties go to the country met first in scan order.
	StrategyMajority
)

func (s Strategy) String() string {
	if s == StrategyMajority {
		return "majority"
	}
	return "nearest"
}

// ParseStrategy parses "nearest" or "majority".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "nearest", "":
		return StrategyNearest, nil
	case "majority":
		return StrategyMajority, nil
	}
	return StrategyNearest, fmt.Errorf("unknown search strategy %q (want nearest or majority)", s)
}

// Resolution is the outcome of resolving one pixel.
type Resolution struct {
	Country Country
	Match   Pixel // pixel whose color classified; equals the query pixel for MethodDirect
	Radius  int   // ring radius of Match, 0 for MethodDirect
	Method  Method
}

// Resolver finds the country for a raster pixel, searching neighbors when the
// pixel is a border, sea or anti-aliased color.
type Resolver struct {
	raster    Raster
	table     *Table
	maxRadius int
	strategy  Strategy
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRingRadius sets the largest ring radius searched. Zero or less disables
// the search, leaving only direct classification.
func WithRingRadius(n int) ResolverOption {
	return func(r *Resolver) {
		r.maxRadius = n
	}
}

// WithRingStrategy sets how a ring with several candidates is decided.
func WithRingStrategy(s Strategy) ResolverOption {
	return func(r *Resolver) {
		r.strategy = s
	}
}

// NewResolver returns a resolver over raster r classified by t.
func NewResolver(r Raster, t *Table, opts ...ResolverOption) (*Resolver, error) {
	if err := ValidateRaster(r); err != nil {
		return nil, err
	}
	if t == nil || t.Len() == 0 {
		return nil, fmt.Errorf("%w: nil or empty table", ErrMalformedTable)
	}
	res := &Resolver{raster: r, table: t, maxRadius: defaultSearchRadius}
	for _, opt := range opts {
		opt(res)
	}
	return res, nil
}

// MaxRadius returns the largest ring radius searched.
func (r *Resolver) MaxRadius() int {
	return r.maxRadius
}

// Resolve returns the country at p. p must lie inside the raster.
func (r *Resolver) Resolve(p Pixel) Resolution {
	if c, ok := r.table.Classify(r.raster.ColorAt(p.X, p.Y)); ok {
		return Resolution{Country: c, Match: p, Method: MethodDirect}
	}

	w, h := r.raster.Width(), r.raster.Height()
	for radius := 1; radius <= r.maxRadius; radius++ {
		// Once the square covers the whole raster, larger rings are all off-map.
		if p.X-radius < 0 && p.Y-radius < 0 && p.X+radius >= w && p.Y+radius >= h {
			break
		}

		var (
			res   Resolution
			found bool
		)
		if r.strategy == StrategyMajority {
			res, found = r.majority(p, radius)
		} else {
			res, found = r.nearest(p, radius)
		}
		if found {
			return res
		}
	}
	return Resolution{Country: Unknown, Match: p, Method: MethodUnresolved}
}

func (r *Resolver) nearest(center Pixel, radius int) (Resolution, bool) {
	var (
		res   Resolution
		found bool
	)
	r.ring(center, radius, func(px Pixel, c Country) bool {
		res = Resolution{Country: c, Match: px, Radius: radius, Method: MethodRing}
		found = true
		return false
	})
	return res, found
}

func (r *Resolver) majority(center Pixel, radius int) (Resolution, bool) {
	type tally struct {
		first Pixel
		count int
		order int
	}
	counts := make(map[Country]*tally)
	var order []Country

	r.ring(center, radius, func(px Pixel, c Country) bool {
		if t, ok := counts[c]; ok {
			t.count++
			return true
		}
		counts[c] = &tally{first: px, count: 1, order: len(order)}
		order = append(order, c)
		return true
	})
	if len(order) == 0 {
		return Resolution{}, false
	}

	best := order[0]
	for _, c := range order[1:] {
		// strictly greater keeps the earliest country on ties
		if counts[c].count > counts[best].count {
			best = c
		}
	}
	return Resolution{Country: best, Match: counts[best].first, Radius: radius, Method: MethodRing}, true
}

// ring visits the classified in-bounds pixels of one ring in scan order until
// fn returns false.
func (r *Resolver) ring(center Pixel, radius int, fn func(Pixel, Country) bool) {
	w, h := r.raster.Width(), r.raster.Height()
	Ring(center, radius, func(px Pixel) bool {
		if px.X < 0 || px.Y < 0 || px.X >= w || px.Y >= h {
			return true
		}
		c, ok := r.table.Classify(r.raster.ColorAt(px.X, px.Y))
		if !ok {
			return true
		}
		return fn(px, c)
	})
}

// Ring calls fn for each of the 8*radius pixels at Chebyshev distance radius
// from center, stopping early if fn returns false. The order is fixed: top
// row left to right, right column top to bottom, bottom row right to left,
// then left column bottom to top. Pixels may fall outside any raster; callers
// filter them. A radius of 0 visits center alone.
func Ring(center Pixel, radius int, fn func(Pixel) bool) {
	if radius < 0 {
		return
	}
	if radius == 0 {
		fn(center)
		return
	}

	x0, x1 := center.X-radius, center.X+radius
	y0, y1 := center.Y-radius, center.Y+radius

	for x := x0; x <= x1; x++ {
		if !fn(Pixel{x, y0}) {
			return
		}
	}
	for y := y0 + 1; y <= y1; y++ {
		if !fn(Pixel{x1, y}) {
			return
		}
	}
	for x := x1 - 1; x >= x0; x-- {
		if !fn(Pixel{x, y1}) {
			return
		}
	}
	for y := y1 - 1; y > y0; y-- {
		if !fn(Pixel{x0, y}) {
			return
		}
	}
}
