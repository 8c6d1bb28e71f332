package viewport

import "math"

// PanBegin starts a drag at the given canvas coordinates. Any pending
// settle or preview work from a previous drag is cancelled.
func (v *Viewport) PanBegin(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.src == nil {
		return
	}
	v.timers.cancel(slotSettle)
	v.timers.cancel(slotPreview)

	v.dragging = true
	v.userPanned = true
	v.lastPtrX, v.lastPtrY = x, y
}

// PanMove continues a drag: the scroll position follows the pointer,
// the preview is refreshed under its throttle, and the sharp layer
// stays frozen unless the view escapes the cached tile.
func (v *Viewport) PanMove(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.src == nil || !v.dragging {
		return
	}
	z := v.zoom

	v.userPanned = true
	v.scrollX -= x - v.lastPtrX
	v.scrollY -= y - v.lastPtrY
	v.lastPtrX, v.lastPtrY = x, y
	v.clampScroll()
	v.notifyScroll()

	if v.cfg.PreviewEnabled {
		v.schedulePreview()
	}

	// No tile yet: permit one sharp draw soon.
	if v.tile == nil {
		v.escapePending = true
		v.scheduleEscapeRedraw(z)
		return
	}

	outside := v.viewportOutsideTile()

	if v.cfg.FreezeEnabled {
		if outside && v.outsideAmountScreen() >= v.cfg.EscapeThresholdScreen {
			v.escapePending = true
			v.scheduleEscapeRedraw(z)
		}
		return
	}

	// Fallback path when the freeze is disabled.
	if outside {
		v.scheduleDragRedraw(z, true)
		return
	}
	if v.nearTileEdge() {
		v.scheduleDragRedraw(z, false)
	}
}

// PanEnd finishes a drag: pending deferred work is cancelled, a forced
// sharp redraw covers the final position, the preview is dropped, and a
// settle pass is queued to upgrade the drag-quality render.
func (v *Viewport) PanEnd() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.dragging {
		return
	}
	v.dragging = false
	v.escapePending = false

	v.timers.cancel(slotSharp)
	v.timers.cancel(slotPreview)
	v.timers.cancel(slotSettle)

	v.scheduleRedrawLocked(0, true)

	v.timers.schedule(slotSettle, v.cfg.SettleDelay, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.timers.clear(slotSettle)
		v.settle()
	})

	if v.cfg.PreviewEnabled {
		v.comp.ClearPreview()
	}
}

// settle upgrades the last drag-quality sharp render to full quality
// once the pointer has been still long enough.
func (v *Viewport) settle() {
	if v.dragging {
		return
	}
	if !v.lastWasCheap {
		return
	}
	v.scheduleRedrawLocked(0, false)
}

// WheelZoom zooms around the canvas point (cx, cy): the image pixel
// under the cursor stays put. delta is in wheel units, 120 per notch;
// ±1 deltas are normalized to a full notch.
func (v *Viewport) WheelZoom(cx, cy, delta float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if math.Abs(delta) < 1e-9 {
		return
	}
	if math.Abs(delta) == 1.0 {
		delta = math.Copysign(120, delta)
	}

	oldZ := v.zoom
	if oldZ == 0 {
		oldZ = 1.0
	}
	newZ := clampZoom(oldZ * math.Pow(v.cfg.WheelRatio, delta/120.0))
	if math.Abs(newZ-oldZ) < 1e-9 {
		return
	}

	if v.src == nil {
		v.zoom = newZ
		v.invalidateLocked()
		v.scheduleRedrawLocked(0, true)
		return
	}

	// Anchor: image point under the cursor before the zoom change.
	pad := v.pad()
	ix := (v.scrollX + cx - pad) / oldZ
	iy := (v.scrollY + cy - pad) / oldZ

	v.zoom = newZ
	v.invalidateLocked()

	v.scrollX = pad + ix*newZ - cx
	v.scrollY = pad + iy*newZ - cy
	v.clampScroll()
	v.notifyScroll()

	v.userPanned = true
	v.scheduleRedrawLocked(0, true)
}

// scheduleEscapeRedraw rate-limits sharp redraws escaping the drag
// freeze. The minimum interval grows with zoom.
func (v *Viewport) scheduleEscapeRedraw(z float64) {
	now := v.now()
	minIv := lerpDuration(v.cfg.EscapeIntervalLow, v.cfg.EscapeIntervalHigh, v.cfg.zoomT(z))

	if elapsed := now.Sub(v.lastEscape); elapsed >= minIv {
		v.lastEscape = now
		v.scheduleRedrawLocked(0, false)
	} else {
		v.scheduleRedrawLocked(minIv-elapsed, false)
	}
}

// scheduleDragRedraw rate-limits sharp redraws when the freeze is
// disabled. Leaving the tile entirely tolerates a longer interval than
// merely approaching its edge.
func (v *Viewport) scheduleDragRedraw(z float64, outsideTile bool) {
	now := v.now()
	t := v.cfg.zoomT(z)
	minIv := lerpDuration(v.cfg.DragIntervalLow, v.cfg.DragIntervalHigh, t)
	if outsideTile {
		if out := lerpDuration(0, v.cfg.DragOutsideTileInterval, t); out > minIv {
			minIv = out
		}
	}

	if elapsed := now.Sub(v.lastDragRedraw); elapsed >= minIv {
		v.lastDragRedraw = now
		v.scheduleRedrawLocked(0, false)
	} else {
		v.scheduleRedrawLocked(minIv-elapsed, false)
	}
}
