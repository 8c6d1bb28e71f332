package viewport

import (
	"timview/pkg/geometry"
)

// pad returns the symmetric padding around the image in the scrollable
// region, letting the user pan past the image edges. Automatic padding
// is generous: the larger canvas dimension.
func (v *Viewport) pad() float64 {
	if v.cfg.PadPixels > 0 {
		return float64(v.cfg.PadPixels)
	}
	if v.canvasW > v.canvasH {
		return float64(v.canvasW)
	}
	return float64(v.canvasH)
}

// scrollRegionSize is the full scrollable extent at the current zoom:
// the zoomed image plus padding on every side.
func (v *Viewport) scrollRegionSize() geometry.Size {
	if v.src == nil {
		return geometry.NewSize(float64(v.canvasW), float64(v.canvasH))
	}
	b := v.src.Bounds()
	pad := v.pad()
	zw := float64(b.Dx()) * v.zoom
	if zw < 1 {
		zw = 1
	}
	zh := float64(b.Dy()) * v.zoom
	if zh < 1 {
		zh = 1
	}
	return geometry.NewSize(zw+2*pad, zh+2*pad)
}

// imageBounds returns the source dimensions in image space.
func (v *Viewport) imageBounds() (w, h float64) {
	b := v.src.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// worldToImage converts world (scroll-region) coordinates to image pixel
// coordinates at the current zoom.
func (v *Viewport) worldToImage(wx, wy float64) (float64, float64) {
	pad := v.pad()
	return (wx - pad) / v.zoom, (wy - pad) / v.zoom
}

// imageToWorld converts image pixel coordinates to world coordinates.
func (v *Viewport) imageToWorld(ix, iy float64) (float64, float64) {
	pad := v.pad()
	return pad + ix*v.zoom, pad + iy*v.zoom
}

// canvasToImage converts a point on the canvas (screen coordinates) to
// image pixel coordinates.
func (v *Viewport) canvasToImage(x, y float64) (float64, float64) {
	return v.worldToImage(v.scrollX+x, v.scrollY+y)
}

// visibleRectImage returns the on-screen rectangle expressed in image
// pixel coordinates, clipped to the image bounds. ok is false when no
// image is loaded.
func (v *Viewport) visibleRectImage() (r geometry.Rect, ok bool) {
	if v.src == nil {
		return geometry.Rect{}, false
	}

	iw, ih := v.imageBounds()
	l, t := v.canvasToImage(0, 0)
	rr, b := v.canvasToImage(float64(v.canvasW), float64(v.canvasH))

	return geometry.NewRect(l, t, rr, b).Clamp(geometry.NewRect(0, 0, iw, ih)), true
}

// clampScroll keeps the canvas origin within the scroll region.
func (v *Viewport) clampScroll() {
	size := v.scrollRegionSize()
	maxX := size.Width - float64(v.canvasW)
	if maxX < 0 {
		maxX = 0
	}
	maxY := size.Height - float64(v.canvasH)
	if maxY < 0 {
		maxY = 0
	}
	if v.scrollX < 0 {
		v.scrollX = 0
	}
	if v.scrollX > maxX {
		v.scrollX = maxX
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
	if v.scrollY > maxY {
		v.scrollY = maxY
	}
}

// screenToImagePx converts a screen-pixel distance to image pixels at
// the current zoom, never less than one.
func screenToImagePx(px int, zoom float64) int {
	if zoom < 1e-9 {
		zoom = 1e-9
	}
	v := int(float64(px) / zoom)
	if v < 1 {
		v = 1
	}
	return v
}

func quantizeFloor(v, q int) int {
	return (v / q) * q
}

func quantizeCeil(v, q int) int {
	return ((v + q - 1) / q) * q
}
