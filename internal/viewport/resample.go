package viewport

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resampling kernels. Pixel art magnifies with hard edges, so upscaling
// is nearest-neighbor; shrinking smooths with bilinear. Dragging always
// uses nearest regardless of direction, trading fidelity for latency.
var (
	resampleNearest  xdraw.Interpolator = xdraw.NearestNeighbor
	resampleBilinear xdraw.Interpolator = xdraw.BiLinear
)

// resampleRegion scales the sub-rectangle sr of src to a w x h RGBA
// image. Returns nil for degenerate requests; callers treat that as an
// abort of the current redraw.
func resampleRegion(src image.Image, sr image.Rectangle, w, h int, q xdraw.Interpolator) *image.RGBA {
	if src == nil || w <= 0 || h <= 0 || sr.Empty() {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	q.Scale(dst, dst.Bounds(), src, sr, xdraw.Src, nil)
	return dst
}

// halveImage produces the next pyramid level: floor-halved dimensions
// (minimum 1) smoothed with the bilinear kernel.
func halveImage(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w := b.Dx() / 2
	if w < 1 {
		w = 1
	}
	h := b.Dy() / 2
	if h < 1 {
		h = 1
	}
	return resampleRegion(src, b, w, h, resampleBilinear)
}
