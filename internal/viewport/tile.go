package viewport

import (
	"math"

	"timview/pkg/geometry"
)

// viewportOutsideTile reports whether any visible edge has left the
// cached sharp tile.
func (v *Viewport) viewportOutsideTile() bool {
	if v.tile == nil {
		return true
	}
	vis, ok := v.visibleRectImage()
	if !ok {
		return true
	}
	t := v.tile
	return vis.Left < float64(t.Left) || vis.Top < float64(t.Top) ||
		vis.Right > float64(t.Right) || vis.Bottom > float64(t.Bottom)
}

// outsideAmountScreen measures how far (in screen pixels) the view has
// overflowed the cached tile, taking the worst edge.
func (v *Viewport) outsideAmountScreen() float64 {
	if v.tile == nil {
		return math.Inf(1)
	}
	vis, ok := v.visibleRectImage()
	if !ok {
		return math.Inf(1)
	}
	t := v.tile

	over := math.Max(float64(t.Left)-vis.Left, float64(t.Top)-vis.Top)
	over = math.Max(over, vis.Right-float64(t.Right))
	over = math.Max(over, vis.Bottom-float64(t.Bottom))
	if over < 0 {
		over = 0
	}
	return over * v.zoom
}

// nearTileEdge reports whether the view has come within the edge
// trigger distance of the tile boundary. Only consulted when the drag
// freeze is disabled.
func (v *Viewport) nearTileEdge() bool {
	if v.tile == nil {
		return true
	}
	vis, ok := v.visibleRectImage()
	if !ok {
		return true
	}
	edge := float64(screenToImagePx(v.cfg.EdgeTriggerScreen, v.zoom))
	t := v.tile
	return vis.Left < float64(t.Left)+edge || vis.Top < float64(t.Top)+edge ||
		vis.Right > float64(t.Right)-edge || vis.Bottom > float64(t.Bottom)-edge
}

// drawSharp rebuilds the world-anchored sharp layer: it picks a tile
// covering the view plus a margin, selects the pyramid level nearest
// the zoom, resamples the tile region to screen size, and hands the
// bitmap to the compositor.
func (v *Viewport) drawSharp(recenter, force bool) {
	if v.src == nil {
		return
	}
	z := v.zoom

	vis, ok := v.visibleRectImage()
	if !ok {
		return
	}
	iw, ih := v.imageBounds()
	pad := v.pad()
	cw, ch := v.canvasW, v.canvasH

	if recenter {
		zw := math.Max(1, iw*z)
		zh := math.Max(1, ih*z)
		v.scrollX = pad + zw/2 - float64(cw)/2
		v.scrollY = pad + zh/2 - float64(ch)/2
		v.clampScroll()
		v.notifyScroll()
		vis, ok = v.visibleRectImage()
		if !ok {
			return
		}
	}

	// Still fully inside the cached tile with tolerance to spare:
	// nothing to do.
	if !force && v.tile != nil {
		inner := float64(screenToImagePx(v.cfg.InnerPadScreen, z))
		if v.tile.ToFloat().Inset(inner).ContainsRect(vis) {
			return
		}
	}

	marginScreen := v.cfg.IdleMarginScreen
	quantScreen := 1
	if v.dragging {
		marginScreen, quantScreen, _ = v.cfg.dragParams(z)
	}

	// Tile rect: the view expanded by the margin, in image coords.
	m := float64(marginScreen)
	lIx := (v.scrollX - m - pad) / z
	tIy := (v.scrollY - m - pad) / z
	rIx := (v.scrollX + float64(cw) + m - pad) / z
	bIy := (v.scrollY + float64(ch) + m - pad) / z

	lIx = clampF(lIx, 0, iw)
	rIx = clampF(rIx, 0, iw)
	tIy = clampF(tIy, 0, ih)
	bIy = clampF(bIy, 0, ih)
	if rIx <= lIx || bIy <= tIy {
		return
	}

	cropL := int(lIx)
	cropT := int(tIy)
	cropR := int(rIx + 0.999)
	cropB := int(bIy + 0.999)

	// Quantize both sides so small pans reuse the same tile.
	if quantImg := screenToImagePx(quantScreen, z); quantImg > 1 {
		cropL = quantizeFloor(cropL, quantImg)
		cropT = quantizeFloor(cropT, quantImg)
		cropR = quantizeCeil(cropR, quantImg)
		cropB = quantizeCeil(cropB, quantImg)
	}
	cropR = clampInt(cropR, cropL+1, int(iw))
	cropB = clampInt(cropB, cropT+1, int(ih))

	tile := geometry.NewRectInt(cropL, cropT, cropR, cropB)
	v.tile = &tile

	lvl, rel := v.pyr.Select(z, v.cfg.PyramidBias)
	lb := lvl.Image.Bounds()

	l2 := int(float64(cropL) * lvl.Scale)
	t2 := int(float64(cropT) * lvl.Scale)
	r2 := maxI(l2+1, int(math.Ceil(float64(cropR)*lvl.Scale)))
	b2 := maxI(t2+1, int(math.Ceil(float64(cropB)*lvl.Scale)))
	r2 = minI(r2, lb.Dx())
	b2 = minI(b2, lb.Dy())

	targetW := maxI(1, int(float64(cropR-cropL)*z))
	targetH := maxI(1, int(float64(cropB-cropT)*z))

	key := drawKey{
		imageGen: v.imageGen,
		zoom:     z,
		cropL:    cropL, cropT: cropT, cropR: cropR, cropB: cropB,
		lvlScale: lvl.Scale,
		l2:       l2, t2: t2, r2: r2, b2: b2,
		targetW: targetW, targetH: targetH,
		dragging: v.dragging,
		margin:   marginScreen, quant: quantScreen,
	}
	if v.haveKey && key == v.lastKey && !force {
		return
	}

	// Dragging trades fidelity for latency: nearest in both directions.
	interp := resampleNearest
	if v.dragging {
		v.lastWasCheap = true
	} else {
		if rel < 1.0 {
			interp = resampleBilinear
		}
		v.lastWasCheap = false
	}

	img := resampleRegion(lvl.Image, geometry.NewRectInt(l2, t2, r2, b2).ToImageRect(), targetW, targetH, interp)
	if img == nil {
		return
	}

	wx := math.Round(pad + float64(cropL)*z)
	wy := math.Round(pad + float64(cropT)*z)
	v.comp.SetSharp(img, wx, wy)

	v.lastKey = key
	v.haveKey = true
	v.stats.SharpRedraws++
}

func clampF(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}
