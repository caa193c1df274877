// Package render draws the sequencer grid onto a pixel display,
// redrawing only what a consumer frame reports as changed.
package render

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Canvas is a display that can fill rectangles in hardware, like the
// ILI9341 and ST7789 drivers
type Canvas interface {
	drivers.Displayer
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// Framebuffer is an in-memory Canvas
type Framebuffer struct {
	width, height int16
	pix           []color.RGBA

	Fills    int // FillRectangle calls since the last Display
	Displays int
}

func NewFramebuffer(width, height int16) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pix:    make([]color.RGBA, int(width)*int(height)),
	}
}

func (f *Framebuffer) Size() (x, y int16) {
	return f.width, f.height
}

func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	f.pix[int(y)*int(f.width)+int(x)] = c
}

// Pixel returns the color at x, y; zero outside the buffer
func (f *Framebuffer) Pixel(x, y int16) color.RGBA {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return color.RGBA{}
	}
	return f.pix[int(y)*int(f.width)+int(x)]
}

func (f *Framebuffer) Display() error {
	f.Displays++
	f.Fills = 0
	return nil
}

func (f *Framebuffer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if width <= 0 || height <= 0 {
		return ErrBadRect
	}
	f.Fills++
	for j := y; j < y+height; j++ {
		for i := x; i < x+width; i++ {
			f.SetPixel(i, j, c)
		}
	}
	return nil
}
