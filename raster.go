package coord2country

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // register the PNG decoder for DecodeRaster
	"io"
)

// Raster is a read-only grid of colors, the world map seen by the resolver.
// Implementations must be safe for concurrent reads.
type Raster interface {
	Width() int
	Height() int
	ColorAt(x, y int) Color
}

// MemRaster is a Raster backed by a packed in-memory pixel buffer.
type MemRaster struct {
	width  int
	height int
	pix    []Color // row-major, len = width*height
}

// NewMemRaster allocates a raster filled with Sea.
func NewMemRaster(width, height int) *MemRaster {
	if width <= 0 || height <= 0 {
		return &MemRaster{}
	}
	m := &MemRaster{width: width, height: height, pix: make([]Color, width*height)}
	m.Fill(Sea)
	return m
}

func (m *MemRaster) Width() int  { return m.width }
func (m *MemRaster) Height() int { return m.height }

// ColorAt returns the color at (x, y), or Border outside the raster.
func (m *MemRaster) ColorAt(x, y int) Color {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return Border
	}
	return m.pix[y*m.width+x]
}

// Set paints one pixel. Pixels outside the raster are ignored.
func (m *MemRaster) Set(x, y int, c Color) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.pix[y*m.width+x] = c
}

// Fill paints the whole raster.
func (m *MemRaster) Fill(c Color) {
	for i := range m.pix {
		m.pix[i] = c
	}
}

// FillRect paints the pixels in [x0,x1] x [y0,y1], both ends inclusive,
// clipped to the raster.
func (m *MemRaster) FillRect(x0, y0, x1, y1 int, c Color) {
	x0, x1 = max(x0, 0), min(x1, m.width-1)
	y0, y1 = max(y0, 0), min(y1, m.height-1)
	for y := y0; y <= y1; y++ {
		row := m.pix[y*m.width : (y+1)*m.width]
		for x := x0; x <= x1; x++ {
			row[x] = c
		}
	}
}

// Image returns an RGBA copy of the raster, for encoding.
func (m *MemRaster) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.width, m.height))
	for i, c := range m.pix {
		r, g, b := c.RGB()
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = r, g, b, 0xFF
	}
	return img
}

// NewImageRaster copies a decoded image into a MemRaster. Alpha is ignored:
// the map is expected to be fully opaque.
func NewImageRaster(img image.Image) (*MemRaster, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrMalformedRaster)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %v", ErrMalformedRaster, b)
	}

	m := &MemRaster{width: b.Dx(), height: b.Dy(), pix: make([]Color, b.Dx()*b.Dy())}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				m.pix[y*m.width+x] = Gray(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	case *image.Paletted:
		palette := make([]Color, len(src.Palette))
		for i, pc := range src.Palette {
			palette[i] = colorOf(pc)
		}
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				idx := src.ColorIndexAt(b.Min.X+x, b.Min.Y+y)
				if int(idx) < len(palette) {
					m.pix[y*m.width+x] = palette[idx]
				} else {
					m.pix[y*m.width+x] = Border
				}
			}
		}
	case *image.NRGBA:
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				o := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				m.pix[y*m.width+x] = RGB(src.Pix[o], src.Pix[o+1], src.Pix[o+2])
			}
		}
	default:
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				m.pix[y*m.width+x] = colorOf(img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}
	return m, nil
}

// colorOf converts any color.Color to a packed 8-bit-per-channel Color,
// dropping alpha.
func colorOf(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB(n.R, n.G, n.B)
}

// DecodeRaster decodes a PNG map into a MemRaster.
func DecodeRaster(r io.Reader) (*MemRaster, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding map image: %v", ErrMalformedRaster, err)
	}
	return NewImageRaster(img)
}

// ValidateRaster checks that r can serve lookups.
func ValidateRaster(r Raster) error {
	if m, ok := r.(*MemRaster); r == nil || (ok && m == nil) {
		return fmt.Errorf("%w: nil raster", ErrMalformedRaster)
	}
	if r.Width() <= 0 || r.Height() <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrMalformedRaster, r.Width(), r.Height())
	}
	return nil
}
