// Package viewport implements a smooth pan/zoom renderer with a
// two-layer drag system:
//
//   - SHARP layer: a world-anchored tile resampled from a resolution
//     pyramid, covering the visible area plus a margin.
//   - PREVIEW layer: a screen-pinned proxy rebuilt cheaply during drag
//     from a smaller pyramid level.
//
// During a drag the sharp layer is frozen and the preview carries the
// motion; sharp rebuilds escape the freeze only when the view overflows
// the cached tile far enough. The package is headless: rendering output
// goes to a Compositor and deferred work runs on a Scheduler, so the
// whole pipeline is testable without a UI toolkit.
package viewport

import (
	"image"
	"sync"
	"time"

	"timview/pkg/geometry"
)

// Compositor receives the rendered layers. Calls arrive while the
// viewport holds its internal lock, so implementations must not call
// back into the Viewport.
type Compositor interface {
	// SetSharp installs the sharp-layer bitmap anchored at world
	// coordinates (wx, wy). A nil image clears the layer.
	SetSharp(img *image.RGBA, wx, wy float64)

	// SetPreview installs the canvas-sized preview bitmap, pinned to
	// the canvas origin.
	SetPreview(img *image.RGBA)

	// ClearPreview removes the preview layer once the sharp layer is
	// current again.
	ClearPreview()

	// SetScroll reports the canvas origin in world coordinates and the
	// total scrollable extent, for scrollbars and layer placement.
	SetScroll(x, y, regionW, regionH float64)
}

// Stats counts layer rebuilds, mainly for tests asserting the freeze
// and throttle behavior.
type Stats struct {
	SharpRedraws   uint64
	PreviewRedraws uint64
}

// drawKey identifies a sharp render completely; an identical key means
// the installed bitmap is already correct.
type drawKey struct {
	imageGen                   int
	zoom                       float64
	cropL, cropT, cropR, cropB int
	lvlScale                   float64
	l2, t2, r2, b2             int
	targetW, targetH           int
	dragging                   bool
	margin, quant              int
}

// Viewport owns the view state: source image, pyramid, zoom, and the
// scroll position (world coordinates of the canvas origin). All public
// methods are safe for concurrent use.
type Viewport struct {
	mu     sync.Mutex
	cfg    Config
	comp   Compositor
	timers timerTable
	now    Clock

	src      *image.RGBA
	pyr      *Pyramid
	imageGen int

	zoom             float64
	scrollX, scrollY float64
	canvasW, canvasH int

	dragging   bool
	userPanned bool
	lastPtrX   float64
	lastPtrY   float64

	forceNext     bool
	escapePending bool

	lastEscape     time.Time
	lastDragRedraw time.Time
	lastPreview    time.Time

	tile         *geometry.RectInt // sharp tile coverage, image coords
	lastKey      drawKey
	haveKey      bool
	lastWasCheap bool

	stats Stats
}

// New creates a viewport with the default configuration.
func New(comp Compositor, sched Scheduler) *Viewport {
	return NewWithConfig(DefaultConfig(), comp, sched)
}

// NewWithConfig creates a viewport with explicit tuning.
func NewWithConfig(cfg Config, comp Compositor, sched Scheduler) *Viewport {
	return &Viewport{
		cfg:     cfg,
		comp:    comp,
		timers:  timerTable{sched: sched},
		now:     time.Now,
		zoom:    4.0,
		canvasW: 1,
		canvasH: 1,
	}
}

// SetClock replaces the time source, for tests.
func (v *Viewport) SetClock(c Clock) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = c
}

// SetImage replaces the source image and rebuilds the resolution
// pyramid. With recenter the next redraw centers the image.
func (v *Viewport) SetImage(img *image.RGBA, recenter bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.src = img
	v.imageGen++
	if img != nil {
		v.pyr = BuildPyramid(img, v.cfg.PyramidLevels, v.cfg.PyramidMinDim)
	} else {
		v.pyr = nil
		v.comp.SetSharp(nil, 0, 0)
		v.comp.ClearPreview()
	}
	if recenter {
		v.userPanned = false
	}
	v.invalidateLocked()
	v.clampScroll()
	v.notifyScroll()
	v.scheduleRedrawLocked(0, true)
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom]. With
// recenter the next redraw centers the image; force redraws even when
// the zoom did not change.
func (v *Viewport) SetZoom(z float64, recenter, force bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if z == 0 {
		z = 1.0
	}
	z = clampZoom(z)
	if abs(z-v.zoom) < 1e-9 && !force {
		return
	}
	v.zoom = z
	if recenter {
		v.userPanned = false
	}
	v.invalidateLocked()
	v.clampScroll()
	v.notifyScroll()
	v.scheduleRedrawLocked(0, true)
}

// ZoomFit picks the largest zoom at which the whole image fits the
// canvas, clamped to the zoom limits, and recenters.
func (v *Viewport) ZoomFit() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.src == nil {
		return
	}
	iw, ih := v.imageBounds()
	if iw <= 0 || ih <= 0 {
		return
	}
	z := float64(v.canvasW) / iw
	if zh := float64(v.canvasH) / ih; zh < z {
		z = zh
	}
	v.zoom = clampZoom(z)
	v.userPanned = false
	v.invalidateLocked()
	v.clampScroll()
	v.notifyScroll()
	v.scheduleRedrawLocked(0, true)
}

// Resize updates the canvas size. The redraw is forced: the margin
// math and the scroll region both depend on the canvas dimensions.
func (v *Viewport) Resize(w, h int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w == v.canvasW && h == v.canvasH {
		return
	}
	v.canvasW, v.canvasH = w, h
	v.clampScroll()
	v.notifyScroll()
	v.scheduleRedrawLocked(0, true)
	if v.dragging && v.cfg.PreviewEnabled {
		v.drawPreview()
	}
}

// Scroll returns the canvas origin in world coordinates.
func (v *Viewport) Scroll() (x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollX, v.scrollY
}

// SetScroll moves the canvas origin, clamped to the scroll region, and
// schedules an unforced redraw. Used by external scrollbars.
func (v *Viewport) SetScroll(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.scrollX, v.scrollY = x, y
	v.userPanned = true
	v.clampScroll()
	v.notifyScroll()
	if !v.dragging {
		v.scheduleRedrawLocked(16*time.Millisecond, false)
	}
}

// VisibleRect returns the on-screen area in image pixel coordinates,
// clipped to the image. ok is false when no image is loaded.
func (v *Viewport) VisibleRect() (r geometry.Rect, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleRectImage()
}

// ImageAt converts canvas coordinates to image pixel coordinates.
func (v *Viewport) ImageAt(x, y float64) (ix, iy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canvasToImage(x, y)
}

// InvalidateCache drops the cached tile and draw key so the next
// redraw rebuilds the sharp layer from scratch.
func (v *Viewport) InvalidateCache() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.invalidateLocked()
}

// ScheduleRedraw requests a sharp redraw after the delay, replacing any
// pending request. A forced redraw bypasses the drag freeze and the
// tile-coverage and draw-key skips.
func (v *Viewport) ScheduleRedraw(delay time.Duration, force bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scheduleRedrawLocked(delay, force)
}

// Stats returns a snapshot of the redraw counters.
func (v *Viewport) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

// Close cancels all pending deferred work.
func (v *Viewport) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.timers.cancelAll()
}

func (v *Viewport) invalidateLocked() {
	v.haveKey = false
	v.tile = nil
}

func (v *Viewport) notifyScroll() {
	size := v.scrollRegionSize()
	v.comp.SetScroll(v.scrollX, v.scrollY, size.Width, size.Height)
}

func (v *Viewport) scheduleRedrawLocked(delay time.Duration, force bool) {
	v.forceNext = force
	v.timers.schedule(slotSharp, delay, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.timers.clear(slotSharp)
		v.redrawLocked()
	})
}

// redrawLocked is the sharp redraw entry point. During a frozen drag it
// drops the request unless forced or explicitly escaped.
func (v *Viewport) redrawLocked() {
	if v.dragging && v.cfg.FreezeEnabled && !v.forceNext && !v.escapePending {
		v.forceNext = false
		return
	}
	v.drawSharp(!v.userPanned, v.forceNext)
	v.forceNext = false
	v.escapePending = false
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
