package viewport

import (
	"image"
	"image/draw"
	"math"
	"time"
)

// schedulePreview throttles preview rebuilds to the configured
// interval. When a rebuild is due it runs immediately; otherwise at
// most one deferred rebuild is kept pending.
func (v *Viewport) schedulePreview() {
	now := v.now()
	elapsed := now.Sub(v.lastPreview)
	if elapsed >= v.cfg.PreviewInterval {
		v.lastPreview = now
		v.drawPreview()
		return
	}
	if v.timers.pending(slotPreview) {
		return
	}
	delay := v.cfg.PreviewInterval - elapsed
	if delay < time.Millisecond {
		delay = time.Millisecond
	}
	v.timers.schedule(slotPreview, delay, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.timers.clear(slotPreview)
		v.lastPreview = v.now()
		v.drawPreview()
	})
}

// drawPreview rebuilds the screen-pinned proxy: a canvas-sized bitmap
// with the visible part of the image resampled from a coarse pyramid
// level, pasted over the background at its exact on-screen offset.
func (v *Viewport) drawPreview() {
	if !v.cfg.PreviewEnabled || v.src == nil || !v.dragging {
		return
	}

	z := v.zoom
	cw, ch := v.canvasW, v.canvasH
	iw, ih := v.imageBounds()
	pad := v.pad()

	// Ideal viewport rect in image coords; may extend past the image.
	l0 := (v.scrollX - pad) / z
	t0 := (v.scrollY - pad) / z
	r0 := l0 + float64(cw)/z
	b0 := t0 + float64(ch)/z

	cropL := clampF(l0, 0, iw)
	cropT := clampF(t0, 0, ih)
	cropR := clampF(r0, 0, iw)
	cropB := clampF(b0, 0, ih)

	bg := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(bg, bg.Bounds(), image.NewUniform(v.cfg.PreviewBackground), image.Point{}, draw.Src)

	// View entirely off the image: background only.
	if cropR <= cropL || cropB <= cropT {
		v.comp.SetPreview(bg)
		v.stats.PreviewRedraws++
		return
	}

	// Paste offset of the clipped crop within the canvas.
	dx := int(math.Round((cropL - l0) * z))
	dy := int(math.Round((cropT - t0) * z))

	// The extra bias pushes the preview to coarser levels than sharp
	// would pick at the same zoom.
	lvl, _ := v.pyr.Select(z, v.cfg.PyramidBias+v.cfg.PreviewBiasExtra)
	lb := lvl.Image.Bounds()

	l2 := int(math.Round(cropL * lvl.Scale))
	t2 := int(math.Round(cropT * lvl.Scale))
	r2 := int(math.Round(cropR * lvl.Scale))
	b2 := int(math.Round(cropB * lvl.Scale))

	l2 = clampInt(l2, 0, lb.Dx()-1)
	t2 = clampInt(t2, 0, lb.Dy()-1)
	r2 = clampInt(r2, l2+1, lb.Dx())
	b2 = clampInt(b2, t2+1, lb.Dy())

	cropW := maxI(1, int(math.Round((cropR-cropL)*z)))
	cropH := maxI(1, int(math.Round((cropB-cropT)*z)))

	scaled := resampleRegion(lvl.Image, image.Rect(l2, t2, r2, b2), cropW, cropH, resampleBilinear)
	if scaled != nil {
		draw.Draw(bg, image.Rect(dx, dy, dx+cropW, dy+cropH), scaled, image.Point{}, draw.Src)
	}

	v.comp.SetPreview(bg)
	v.stats.PreviewRedraws++
}
