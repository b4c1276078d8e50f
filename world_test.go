package coord2country

// A 360x180 synthetic world, one pixel per degree, painted with a handful of
// countries at their real positions:
//
//	Germany     lat 47..55, lon 6..15       cols 186..194, rows 35..42
//	Madagascar  lat -25.5..-12, lon 43..50.5 cols 223..230, rows 102..115
//	France      a single pixel at (220,112), standing in for Europa Island
//	border      a single black pixel at (219,113)
//
// Everything else is sea.

const (
	franceColor     Color = 0x4d454b
	germanyColor    Color = 0x51c9a7
	madagascarColor Color = 0x7890a8
)

var (
	germany    = Country{Name: "Germany", QID: "183"}
	france     = Country{Name: "France", QID: "142"}
	madagascar = Country{Name: "Madagascar", QID: "1019"}
)

func testTable() *Table {
	t, err := NewTable([]Entry{
		{Color: germanyColor, Country: germany},
		{Color: franceColor, Country: france, Code: "FR"},
		{Color: madagascarColor, Country: madagascar, Code: "MG"},
	})
	if err != nil {
		panic(err)
	}
	return t
}

func testWorld() *MemRaster {
	m := NewMemRaster(360, 180)
	m.FillRect(186, 35, 194, 42, germanyColor)
	m.FillRect(223, 102, 230, 115, madagascarColor)
	m.Set(220, 112, franceColor)
	m.Set(219, 113, Border)
	return m
}

func testLocator(opts ...Option) *Locator {
	l, err := New(testTable(), testWorld(), opts...)
	if err != nil {
		panic(err)
	}
	return l
}
