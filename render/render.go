// Package render draws decoded frames onto a display. Frames use the SSD1306
// page layout: one byte per column per 8-row page, least significant bit at
// the top of the page.
package render

import (
	"fmt"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

const (
	Width     = 128
	Height    = 64
	FrameSize = Width * Height / 8
)

var (
	On  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Off = color.RGBA{A: 255}
)

// bufferSetter is implemented by displays that accept a whole page-format
// frame at once (ssd1306.Device).
type bufferSetter interface {
	SetBuffer(buffer []byte) error
}

// Screen is the frame sink used by the animation player.
type Screen struct {
	dev  drivers.Displayer
	font tinyfont.Fonter
}

func NewScreen(dev drivers.Displayer) *Screen {
	return &Screen{dev: dev, font: &tinyfont.TomThumb}
}

// Frame draws one page-format frame and presents it.
func (s *Screen) Frame(frame []byte) error {
	w, h := s.dev.Size()
	if len(frame) != int(w)*int(h)/8 {
		return fmt.Errorf("frame is %d bytes, display needs %d", len(frame), int(w)*int(h)/8)
	}

	if bs, ok := s.dev.(bufferSetter); ok {
		if err := bs.SetBuffer(frame); err != nil {
			return err
		}
		return s.dev.Display()
	}

	Blit(s.dev, frame)
	return s.dev.Display()
}

// Placeholder clears the display and centers text on it.
func (s *Screen) Placeholder(text string) error {
	Clear(s.dev)
	w, h := s.dev.Size()
	_, outbox := tinyfont.LineWidth(s.font, text)
	x := (int32(w) - int32(outbox)) / 2
	if x < 0 {
		x = 0
	}
	tinyfont.WriteLine(s.dev, s.font, int16(x), h/2, text, On)
	return s.dev.Display()
}

// Blit draws a page-format frame pixel by pixel.
func Blit(dev drivers.Displayer, frame []byte) {
	w, h := dev.Size()
	for page := int16(0); page < h/8; page++ {
		row := frame[int(page)*int(w) : int(page+1)*int(w)]
		for x, b := range row {
			for bit := int16(0); bit < 8; bit++ {
				c := Off
				if b&(1<<uint(bit)) != 0 {
					c = On
				}
				dev.SetPixel(int16(x), page*8+bit, c)
			}
		}
	}
}

func Clear(dev drivers.Displayer) {
	w, h := dev.Size()
	for y := int16(0); y < h; y++ {
		for x := int16(0); x < w; x++ {
			dev.SetPixel(x, y, Off)
		}
	}
}
