package coord2country

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a packed 24-bit RGB value (0xRRGGBB). It is the join key between
// raster pixels and the color table.
type Color uint32

// Reserved colors. They mark pixels that do not classify directly and can
// never be registered in a Table.
const (
	Border Color = 0x000000 // country borders drawn on the map
	Sea    Color = 0xFFFFFF // water and anything outside a country
)

// RGB packs three 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Gray returns the color of an 8-bit gray shade, as used by single-channel maps.
func Gray(v uint8) Color {
	return RGB(v, v, v)
}

// RGB unpacks the color into its channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Reserved reports whether c is one of the non-country colors.
func (c Color) Reserved() bool {
	return c == Border || c == Sea
}

// String renders the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

// ParseColor parses "#rrggbb", "rrggbb", "0xrrggbb" or a decimal gray shade
// between 0 and 255.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parsing color: empty value")
	}

	hex := ""
	switch {
	case strings.HasPrefix(s, "#"):
		hex = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		hex = s[2:]
	case len(s) == 6:
		// gray shades top out at 3 digits, so six characters is always a hex triplet
		hex = s
	}

	if hex != "" {
		if len(hex) != 6 {
			return 0, fmt.Errorf("parsing color %q: want 6 hex digits", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("parsing color %q: %w", s, err)
		}
		return Color(v), nil
	}

	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("parsing gray shade %q: %w", s, err)
	}
	return Gray(uint8(v)), nil
}
