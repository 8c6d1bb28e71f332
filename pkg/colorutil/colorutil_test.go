package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPS1ToRGBA(t *testing.T) {
	tests := []struct {
		name string
		word uint16
		want color.RGBA
	}{
		{"transparent zero", 0x0000, color.RGBA{0, 0, 0, 0}},
		{"pure red", 0x001F, color.RGBA{255, 0, 0, 255}},
		{"pure green", 0x03E0, color.RGBA{0, 255, 0, 255}},
		{"pure blue", 0x7C00, color.RGBA{0, 0, 255, 255}},
		{"white", 0x7FFF, color.RGBA{255, 255, 255, 255}},
		{"stp bit alone is still transparent", 0x8000, color.RGBA{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PS1ToRGBA(tt.word))
		})
	}
}

func TestRGBAToPS1RoundTrip(t *testing.T) {
	// Every representable 15-bit color except the transparent sentinel
	// must survive a trip through RGBA and back.
	for word := uint16(1); word < 0x8000; word++ {
		got := RGBAToPS1(PS1ToRGBA(word))
		if got != word {
			t.Fatalf("word %#04x round-tripped to %#04x", word, got)
		}
	}
}

func TestRGBAToPS1Transparent(t *testing.T) {
	assert.Equal(t, uint16(0), RGBAToPS1(color.RGBA{0, 0, 0, 0}))
	// Opaque black must not collapse into the transparent sentinel.
	assert.NotEqual(t, uint16(0), RGBAToPS1(color.RGBA{0, 0, 0, 255}))
}

func TestGrayRamp(t *testing.T) {
	pal := GrayRamp(16)
	assert.Len(t, pal, 256)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, pal[0])
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, pal[15])
	assert.Equal(t, Black, pal[16])

	one := GrayRamp(1)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, one[0])
}
