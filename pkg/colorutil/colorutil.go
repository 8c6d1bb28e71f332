// Package colorutil provides shared color utilities for the TIM viewer application.
package colorutil

import (
	"image/color"
)

// Common colors used throughout the application.
var (
	Black      = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Magenta    = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Background = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 255} // viewport backdrop
)

// PS1ToRGBA converts a PlayStation 15-bit color word (0b?BBBBBGGGGGRRRRR)
// to 8-bit RGBA. Bit 15 is the STP flag and is ignored for display. A word
// whose low 15 bits are all zero is treated as fully transparent, which is
// the convention for indexed TIMs.
func PS1ToRGBA(word uint16) color.RGBA {
	r5 := word & 0x1F
	g5 := (word >> 5) & 0x1F
	b5 := (word >> 10) & 0x1F

	// Replicate the high bits so 0x1F maps to 0xFF.
	r := uint8(r5<<3 | r5>>2)
	g := uint8(g5<<3 | g5>>2)
	b := uint8(b5<<3 | b5>>2)

	a := uint8(255)
	if word&0x7FFF == 0 {
		a = 0
	}
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// RGBAToPS1 converts a color to a PlayStation 15-bit word. Fully
// transparent colors map to word 0. The STP bit is never set.
func RGBAToPS1(c color.Color) uint16 {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return 0
	}

	r5 := uint16(r >> 11)
	g5 := uint16(g >> 11)
	b5 := uint16(b >> 11)

	word := r5 | g5<<5 | b5<<10
	if word == 0 {
		// Opaque black would collide with the transparent sentinel;
		// nudge it to the darkest representable non-zero color.
		word = 1 << 10
	}
	return word
}

// GrayRamp returns a 256-entry palette whose first n entries form an
// evenly spaced grayscale ramp and whose remaining entries are black.
// It is used when exporting pixel indices as a viewable indexed PNG.
func GrayRamp(n int) color.Palette {
	pal := make(color.Palette, 256)
	for i := range pal {
		if i < n {
			v := uint8(0)
			if n > 1 {
				v = uint8((i*255 + (n-1)/2) / (n - 1))
			}
			pal[i] = color.RGBA{R: v, G: v, B: v, A: 255}
		} else {
			pal[i] = Black
		}
	}
	return pal
}
