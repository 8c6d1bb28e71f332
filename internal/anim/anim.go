// Package anim slices sprite-sheet rasters into animation frames and
// plays them back. Frame layout is guessed heuristically from the sheet
// dimensions, optionally refined by comparing candidate slicings.
package anim

import (
	"image"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Direction is the axis along which frames are laid out in the sheet.
type Direction int

// Frame strip directions.
const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Layout describes how a sheet divides into frames.
type Layout struct {
	FrameW int
	FrameH int
	Dir    Direction
	Count  int
}

// DetectLayout guesses a frame layout from the sheet dimensions: a tall
// sheet whose height divides evenly by its width is a vertical strip of
// square frames, a wide sheet the mirror case, anything else one frame.
func DetectLayout(w, h int) Layout {
	if w > 0 && h > 0 {
		if h%w == 0 && h >= w {
			return Layout{FrameW: w, FrameH: w, Dir: Vertical, Count: maxInt(1, h/w)}
		}
		if w%h == 0 && w >= h {
			return Layout{FrameW: h, FrameH: h, Dir: Horizontal, Count: maxInt(1, w/h)}
		}
	}
	return Layout{FrameW: w, FrameH: h, Dir: Horizontal, Count: 1}
}

// Slice cuts the sheet into frames of the layout's size. Frames that
// extend past the sheet edge are padded with transparent pixels. A
// degenerate layout returns the whole sheet as a single frame.
func Slice(sheet *image.RGBA, l Layout) []*image.RGBA {
	if sheet == nil {
		return nil
	}
	if l.FrameW <= 0 || l.FrameH <= 0 {
		return []*image.RGBA{sheet}
	}

	b := sheet.Bounds()
	var frames []*image.RGBA

	cut := func(x0, y0 int) {
		out := image.NewRGBA(image.Rect(0, 0, l.FrameW, l.FrameH))
		src := image.Rect(x0, y0, x0+l.FrameW, y0+l.FrameH).Intersect(b)
		if !src.Empty() {
			draw.Draw(out, image.Rect(0, 0, src.Dx(), src.Dy()), sheet, src.Min, draw.Src)
		}
		frames = append(frames, out)
	}

	if l.Dir == Vertical {
		count := maxInt(1, b.Dy()/l.FrameH)
		for i := 0; i < count; i++ {
			cut(b.Min.X, b.Min.Y+i*l.FrameH)
		}
	} else {
		count := maxInt(1, b.Dx()/l.FrameW)
		for i := 0; i < count; i++ {
			cut(b.Min.X+i*l.FrameW, b.Min.Y)
		}
	}

	if len(frames) == 0 {
		return []*image.RGBA{sheet}
	}
	return frames
}

// BestLayout refines DetectLayout by scoring every square-frame slicing
// the sheet dimensions admit and keeping the most self-similar one. When
// no multi-frame candidate scores better than the heuristic guess, the
// guess stands.
func BestLayout(sheet *image.RGBA) Layout {
	if sheet == nil {
		return Layout{Count: 1}
	}
	b := sheet.Bounds()
	guess := DetectLayout(b.Dx(), b.Dy())

	candidates := candidateLayouts(b.Dx(), b.Dy())
	if len(candidates) == 0 {
		return guess
	}

	best := guess
	bestScore := math.Inf(1)
	if guess.Count > 1 {
		bestScore = scoreLayout(sheet, guess)
	}
	for _, c := range candidates {
		if c == guess {
			continue
		}
		if s := scoreLayout(sheet, c); s < bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

// candidateLayouts enumerates square-frame strips along the long axis.
func candidateLayouts(w, h int) []Layout {
	var out []Layout
	if w <= 0 || h <= 0 {
		return out
	}
	if h >= w && h%w == 0 {
		for n := 2; n <= h/w; n++ {
			if h%n == 0 && h/n >= w {
				out = append(out, Layout{FrameW: w, FrameH: h / n, Dir: Vertical, Count: n})
			}
		}
	}
	if w >= h && w%h == 0 {
		for n := 2; n <= w/h; n++ {
			if w%n == 0 && w/n >= h {
				out = append(out, Layout{FrameW: w / n, FrameH: h, Dir: Horizontal, Count: n})
			}
		}
	}
	return out
}

// scoreLayout measures how plausible a slicing is. Frames of a real
// animation resemble each other, so we score by the mean plus variance
// of the per-pair pixel differences between adjacent frames; lower is
// better.
func scoreLayout(sheet *image.RGBA, l Layout) float64 {
	frames := Slice(sheet, l)
	if len(frames) < 2 {
		return math.Inf(1)
	}

	diffs := make([]float64, 0, len(frames)-1)
	for i := 1; i < len(frames); i++ {
		diffs = append(diffs, frameDiff(frames[i-1], frames[i]))
	}
	return stat.Mean(diffs, nil) + stat.Variance(diffs, nil)
}

// frameDiff is the mean absolute per-channel difference of two frames.
func frameDiff(a, b *image.RGBA) float64 {
	n := minInt(len(a.Pix), len(b.Pix))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		sum += float64(d)
	}
	return sum / float64(n)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
