package coord2country

import (
	"errors"
	"reflect"
	"testing"
)

func TestRingOrder(t *testing.T) {
	var got []Pixel
	Ring(Pixel{5, 5}, 1, func(p Pixel) bool {
		got = append(got, p)
		return true
	})
	want := []Pixel{
		{4, 4}, {5, 4}, {6, 4}, // top, left to right
		{6, 5}, {6, 6}, // right, downwards
		{5, 6}, {4, 6}, // bottom, right to left
		{4, 5}, // left, upwards
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Ring(r=1) = %v, want %v", got, want)
	}
}

func TestRingCoversChebyshevShell(t *testing.T) {
	center := Pixel{0, 0}
	for r := 0; r <= 5; r++ {
		seen := make(map[Pixel]bool)
		Ring(center, r, func(p Pixel) bool {
			if seen[p] {
				t.Errorf("r=%d: %v visited twice", r, p)
			}
			seen[p] = true
			if d := max(abs(p.X), abs(p.Y)); d != r {
				t.Errorf("r=%d: %v is at distance %d", r, p, d)
			}
			return true
		})
		want := 8 * r
		if r == 0 {
			want = 1
		}
		if len(seen) != want {
			t.Errorf("r=%d: visited %d pixels, want %d", r, len(seen), want)
		}
	}

	calls := 0
	Ring(center, -1, func(Pixel) bool { calls++; return true })
	if calls != 0 {
		t.Errorf("negative radius visited %d pixels", calls)
	}
}

func TestRingStops(t *testing.T) {
	calls := 0
	Ring(Pixel{10, 10}, 3, func(Pixel) bool {
		calls++
		return calls < 3
	})
	if calls != 3 {
		t.Errorf("Ring kept going after false: %d calls", calls)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

const (
	colorA Color = 0x0000aa
	colorB Color = 0x00bb00
)

var (
	countryA = Country{Name: "Aland", QID: "1"}
	countryB = Country{Name: "Beeland", QID: "2"}
)

func abTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable([]Entry{
		{Color: colorA, Country: countryA},
		{Color: colorB, Country: countryB},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func newTestResolver(t *testing.T, m *MemRaster, opts ...ResolverOption) *Resolver {
	t.Helper()
	r, err := NewResolver(m, abTable(t), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestResolveDirect(t *testing.T) {
	m := NewMemRaster(3, 3)
	m.Set(1, 1, colorA)
	got := newTestResolver(t, m).Resolve(Pixel{1, 1})
	want := Resolution{Country: countryA, Match: Pixel{1, 1}, Method: MethodDirect}
	if got != want {
		t.Errorf("Resolve = %+v, want %+v", got, want)
	}
}

func TestResolveRadiusOne(t *testing.T) {
	// every neighbor alone is found at radius 1
	center := Pixel{2, 2}
	Ring(center, 1, func(p Pixel) bool {
		m := NewMemRaster(5, 5)
		m.Set(center.X, center.Y, Border)
		m.Set(p.X, p.Y, colorB)
		got := newTestResolver(t, m).Resolve(center)
		if got.Country != countryB || got.Radius != 1 || got.Match != p || got.Method != MethodRing {
			t.Errorf("neighbor %v: Resolve = %+v", p, got)
		}
		return true
	})
}

func TestResolveFirstInScanOrder(t *testing.T) {
	m := NewMemRaster(7, 7)
	m.Set(4, 4, colorA) // bottom-right corner of ring 1, scanned fifth
	m.Set(4, 3, colorB) // right column, scanned fourth
	m.Set(2, 3, colorA) // left column, scanned last
	got := newTestResolver(t, m).Resolve(Pixel{3, 3})
	if got.Country != countryB || got.Match != (Pixel{4, 3}) {
		t.Errorf("Resolve = %+v, want Beeland at (4,3)", got)
	}
}

func TestResolveRadiusBound(t *testing.T) {
	m := NewMemRaster(20, 20)
	m.Set(13, 10, colorA) // distance 3 from (10,10)

	if got := newTestResolver(t, m, WithRingRadius(2)).Resolve(Pixel{10, 10}); got.Method != MethodUnresolved || got.Country != Unknown {
		t.Errorf("radius 2: Resolve = %+v, want unresolved", got)
	}
	got := newTestResolver(t, m, WithRingRadius(3)).Resolve(Pixel{10, 10})
	if got.Country != countryA || got.Radius != 3 {
		t.Errorf("radius 3: Resolve = %+v", got)
	}
	if got := newTestResolver(t, m, WithRingRadius(0)).Resolve(Pixel{10, 10}); got.Method != MethodUnresolved {
		t.Errorf("radius 0: Resolve = %+v, want unresolved", got)
	}
}

func TestResolveNearCorner(t *testing.T) {
	m := NewMemRaster(5, 5)
	m.Set(1, 1, colorA)
	got := newTestResolver(t, m).Resolve(Pixel{0, 0})
	if got.Country != countryA || got.Match != (Pixel{1, 1}) || got.Radius != 1 {
		t.Errorf("Resolve = %+v", got)
	}
}

func TestResolveStopsOffMap(t *testing.T) {
	m := NewMemRaster(3, 3)
	r := newTestResolver(t, m, WithRingRadius(1<<20))
	got := r.Resolve(Pixel{1, 1})
	want := Resolution{Country: Unknown, Match: Pixel{1, 1}, Method: MethodUnresolved}
	if got != want {
		t.Errorf("Resolve = %+v, want %+v", got, want)
	}
	if r.MaxRadius() != 1<<20 {
		t.Errorf("MaxRadius() = %d", r.MaxRadius())
	}
}

func TestResolveMajority(t *testing.T) {
	m := NewMemRaster(7, 7)
	m.Set(2, 2, colorA)
	m.Set(3, 2, colorB)
	m.Set(4, 2, colorB)

	nearest := newTestResolver(t, m).Resolve(Pixel{3, 3})
	if nearest.Country != countryA {
		t.Errorf("nearest: Resolve = %+v, want Aland", nearest)
	}

	got := newTestResolver(t, m, WithRingStrategy(StrategyMajority)).Resolve(Pixel{3, 3})
	if got.Country != countryB || got.Match != (Pixel{3, 2}) || got.Radius != 1 {
		t.Errorf("majority: Resolve = %+v, want Beeland at (3,2)", got)
	}

	// a tie goes to the country scanned first
	m.Set(4, 2, Sea)
	got = newTestResolver(t, m, WithRingStrategy(StrategyMajority)).Resolve(Pixel{3, 3})
	if got.Country != countryA {
		t.Errorf("majority tie: Resolve = %+v, want Aland", got)
	}
}

func TestNewResolverErrors(t *testing.T) {
	if _, err := NewResolver(nil, abTable(t)); !errors.Is(err, ErrMalformedRaster) {
		t.Errorf("nil raster: err = %v", err)
	}
	if _, err := NewResolver(NewMemRaster(2, 2), nil); !errors.Is(err, ErrMalformedTable) {
		t.Errorf("nil table: err = %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"": StrategyNearest, "nearest": StrategyNearest, "majority": StrategyMajority} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %v, %v", in, got, err)
		}
		if in != "" && got.String() != in {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}
	if _, err := ParseStrategy("closest"); err == nil {
		t.Error("ParseStrategy(closest) succeeded")
	}

	for in, want := range map[string]RangePolicy{"": RangeClamp, "clamp": RangeClamp, "Reject": RangeReject} {
		got, err := ParseRangePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseRangePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseRangePolicy("wrap"); err == nil {
		t.Error("ParseRangePolicy(wrap) succeeded")
	}
}
