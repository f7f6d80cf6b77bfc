package render

import (
	"image/color"
	"strings"
)

// Buffer is an in-memory monochrome display used by the simulator and tests.
type Buffer struct {
	w, h     int16
	px       []bool
	Presents int
}

func NewBuffer(w, h int16) *Buffer {
	return &Buffer{w: w, h: h, px: make([]bool, int(w)*int(h))}
}

func (b *Buffer) Size() (x, y int16) { return b.w, b.h }

func (b *Buffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return
	}
	b.px[int(y)*int(b.w)+int(x)] = c.R|c.G|c.B != 0
}

func (b *Buffer) Display() error {
	b.Presents++
	return nil
}

// Pixel reports whether (x, y) is lit.
func (b *Buffer) Pixel(x, y int16) bool {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return false
	}
	return b.px[int(y)*int(b.w)+int(x)]
}

// Lit counts lit pixels.
func (b *Buffer) Lit() int {
	n := 0
	for _, p := range b.px {
		if p {
			n++
		}
	}
	return n
}

// ASCII renders the buffer at half resolution, one character per 2x2 cell.
func (b *Buffer) ASCII() string {
	var sb strings.Builder
	for y := int16(0); y < b.h; y += 2 {
		for x := int16(0); x < b.w; x += 2 {
			if b.Pixel(x, y) || b.Pixel(x+1, y) || b.Pixel(x, y+1) || b.Pixel(x+1, y+1) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
