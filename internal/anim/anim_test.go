package anim

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want Layout
	}{
		{"vertical strip", 32, 128, Layout{FrameW: 32, FrameH: 32, Dir: Vertical, Count: 4}},
		{"horizontal strip", 96, 24, Layout{FrameW: 24, FrameH: 24, Dir: Horizontal, Count: 4}},
		{"square single", 64, 64, Layout{FrameW: 64, FrameH: 64, Dir: Vertical, Count: 1}},
		{"indivisible", 100, 30, Layout{FrameW: 100, FrameH: 30, Dir: Horizontal, Count: 1}},
		{"degenerate", 0, 10, Layout{FrameW: 0, FrameH: 10, Dir: Horizontal, Count: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLayout(tt.w, tt.h))
		})
	}
}

func TestSliceVertical(t *testing.T) {
	sheet := image.NewRGBA(image.Rect(0, 0, 8, 24))
	// Mark each 8x8 band with a distinct red value.
	for i := 0; i < 3; i++ {
		band := image.Rect(0, i*8, 8, (i+1)*8)
		draw.Draw(sheet, band, image.NewUniform(color.RGBA{R: uint8(50 * (i + 1)), A: 255}), image.Point{}, draw.Src)
	}

	frames := Slice(sheet, Layout{FrameW: 8, FrameH: 8, Dir: Vertical, Count: 3})
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.Equal(t, image.Rect(0, 0, 8, 8), f.Bounds())
		assert.Equal(t, uint8(50*(i+1)), f.RGBAAt(4, 4).R)
	}
}

func TestSlicePadsPartialFrames(t *testing.T) {
	sheet := image.NewRGBA(image.Rect(0, 0, 10, 4))
	frames := Slice(sheet, Layout{FrameW: 8, FrameH: 8, Dir: Horizontal, Count: 1})
	require.Len(t, frames, 1)
	assert.Equal(t, image.Rect(0, 0, 8, 8), frames[0].Bounds())
	// Padded area is transparent.
	assert.Equal(t, color.RGBA{}, frames[0].RGBAAt(4, 6))
}

func TestSliceDegenerateLayoutReturnsSheet(t *testing.T) {
	sheet := image.NewRGBA(image.Rect(0, 0, 5, 5))
	frames := Slice(sheet, Layout{})
	require.Len(t, frames, 1)
	assert.Same(t, sheet, frames[0])
}

func TestBestLayoutPrefersSimilarFrames(t *testing.T) {
	// Four identical 16x16 frames stacked vertically: both the 2-frame
	// (16x32) and 4-frame (16x16) slicings are admissible, but the
	// 4-frame one has identical frames and must win.
	frame := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			frame.SetRGBA(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), A: 255})
		}
	}
	sheet := image.NewRGBA(image.Rect(0, 0, 16, 64))
	for i := 0; i < 4; i++ {
		draw.Draw(sheet, image.Rect(0, i*16, 16, (i+1)*16), frame, image.Point{}, draw.Src)
	}

	best := BestLayout(sheet)
	assert.Equal(t, Vertical, best.Dir)
	assert.Equal(t, 4, best.Count)
	assert.Equal(t, 16, best.FrameH)
}

func TestBestLayoutFallsBackToGuess(t *testing.T) {
	sheet := image.NewRGBA(image.Rect(0, 0, 100, 30))
	assert.Equal(t, DetectLayout(100, 30), BestLayout(sheet))
}

func TestPlayerScrub(t *testing.T) {
	var got []int
	p := NewPlayer(func(_ *image.RGBA, idx int) { got = append(got, idx) })
	p.SetFrames([]*image.RGBA{
		image.NewRGBA(image.Rect(0, 0, 1, 1)),
		image.NewRGBA(image.Rect(0, 0, 1, 1)),
		image.NewRGBA(image.Rect(0, 0, 1, 1)),
	})

	p.Scrub(1)
	p.Scrub(99)
	p.Scrub(-5)
	assert.Equal(t, []int{1, 2, 0}, got)
	assert.Equal(t, 0, p.Index())
	assert.False(t, p.Playing())
}

func TestPlayerPlayPause(t *testing.T) {
	p := NewPlayer(nil)
	p.Play() // no frames: stays stopped
	assert.False(t, p.Playing())

	p.SetFrames([]*image.RGBA{image.NewRGBA(image.Rect(0, 0, 1, 1))})
	p.Play()
	assert.True(t, p.Playing())
	p.Pause()
	assert.False(t, p.Playing())
}
