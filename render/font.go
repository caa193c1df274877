package render

import (
	"errors"
	"image/color"
)

var ErrBadRect = errors.New("render: empty rectangle")

const (
	GlyphWidth   = 3
	GlyphHeight  = 5
	GlyphAdvance = GlyphWidth + 1
)

// glyphs is a 3x5 font, one row per byte, bit 2 leftmost
var glyphs = [128][GlyphHeight]uint8{
	'0': {7, 5, 5, 5, 7},
	'1': {2, 6, 2, 2, 7},
	'2': {7, 1, 7, 4, 7},
	'3': {7, 1, 7, 1, 7},
	'4': {5, 5, 7, 1, 1},
	'5': {7, 4, 7, 1, 7},
	'6': {7, 4, 7, 5, 7},
	'7': {7, 1, 1, 2, 2},
	'8': {7, 5, 7, 5, 7},
	'9': {7, 5, 7, 1, 7},
	'A': {2, 5, 7, 5, 5},
	'B': {6, 5, 6, 5, 6},
	'C': {3, 4, 4, 4, 3},
	'D': {6, 5, 5, 5, 6},
	'E': {7, 4, 6, 4, 7},
	'F': {7, 4, 6, 4, 4},
	'G': {3, 4, 5, 5, 3},
	'H': {5, 5, 7, 5, 5},
	'I': {7, 2, 2, 2, 7},
	'J': {1, 1, 1, 5, 2},
	'K': {5, 5, 6, 5, 5},
	'L': {4, 4, 4, 4, 7},
	'M': {5, 7, 7, 5, 5},
	'N': {6, 5, 5, 5, 5},
	'O': {2, 5, 5, 5, 2},
	'P': {6, 5, 6, 4, 4},
	'Q': {2, 5, 5, 6, 3},
	'R': {6, 5, 6, 5, 5},
	'S': {3, 4, 2, 1, 6},
	'T': {7, 2, 2, 2, 2},
	'U': {5, 5, 5, 5, 7},
	'V': {5, 5, 5, 5, 2},
	'W': {5, 5, 7, 7, 5},
	'X': {5, 5, 2, 5, 5},
	'Y': {5, 5, 2, 2, 2},
	'Z': {7, 1, 2, 4, 7},
	'#': {5, 7, 5, 7, 5},
	'-': {0, 0, 7, 0, 0},
	':': {0, 2, 0, 2, 0},
	'>': {4, 6, 7, 6, 4},
	'|': {2, 2, 2, 2, 2},
	' ': {0, 0, 0, 0, 0},
}

// TextWidth returns the pixel width of s at scale
func TextWidth(s string, scale int16) int16 {
	if len(s) == 0 {
		return 0
	}
	return (int16(len(s))*GlyphAdvance - 1) * scale
}

// DrawText draws s with its top left corner at x, y. Lower case letters use
// the upper case glyphs; unknown bytes draw as blanks.
func DrawText(c Canvas, x, y int16, s string, scale int16, fg color.RGBA) error {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		var g [GlyphHeight]uint8
		if ch < 128 {
			g = glyphs[ch]
		}
		for row := int16(0); row < GlyphHeight; row++ {
			bits := g[row]
			for col := int16(0); col < GlyphWidth; col++ {
				if bits&(1<<(GlyphWidth-1-col)) == 0 {
					continue
				}
				if err := c.FillRectangle(x+col*scale, y+row*scale, scale, scale, fg); err != nil {
					return err
				}
			}
		}
		x += GlyphAdvance * scale
	}
	return nil
}
