// Package viewcanvas provides the Fyne widget hosting the pan/zoom
// viewport renderer.
package viewcanvas

import (
	"image"
	"image/draw"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"timview/internal/viewport"
	"timview/pkg/colorutil"
)

// uiScheduler defers callbacks with real timers. Callbacks fire on
// timer goroutines; the viewport serializes them internally and the
// widget only refreshes the raster, which Fyne accepts from any
// goroutine.
type uiScheduler struct{}

func (uiScheduler) AfterFunc(d time.Duration, fn func()) viewport.Timer {
	return time.AfterFunc(d, fn)
}

// ViewCanvas displays a zoomable image through the viewport renderer.
// It implements the renderer's Compositor: the sharp layer is placed by
// world position relative to the current scroll, the preview is pinned
// to the canvas origin underneath it.
type ViewCanvas struct {
	widget.BaseWidget

	vp     *viewport.Viewport
	raster *fynecanvas.Raster

	mu               sync.Mutex
	sharp            *image.RGBA
	sharpX, sharpY   float64
	preview          *image.RGBA
	scrollX, scrollY float64
	regionW, regionH float64

	dragging bool

	onZoomChange func(zoom float64)
	onPixel      func(ix, iy float64)
}

// New creates the canvas widget and its viewport.
func New() *ViewCanvas {
	vc := &ViewCanvas{}
	vc.vp = viewport.New(vc, uiScheduler{})
	vc.raster = fynecanvas.NewRaster(vc.draw)
	vc.raster.ScaleMode = fynecanvas.ImageScalePixels
	vc.ExtendBaseWidget(vc)
	return vc
}

// Viewport exposes the underlying renderer for window-level wiring.
func (vc *ViewCanvas) Viewport() *viewport.Viewport {
	return vc.vp
}

// SetImage replaces the displayed image.
func (vc *ViewCanvas) SetImage(img *image.RGBA, recenter bool) {
	vc.vp.SetImage(img, recenter)
}

// SetZoom sets the zoom factor and notifies the zoom callback.
func (vc *ViewCanvas) SetZoom(z float64) {
	vc.vp.SetZoom(z, false, false)
	vc.notifyZoom()
}

// Zoom returns the current zoom factor.
func (vc *ViewCanvas) Zoom() float64 {
	return vc.vp.Zoom()
}

// ZoomFit fits the whole image into the canvas.
func (vc *ViewCanvas) ZoomFit() {
	vc.vp.ZoomFit()
	vc.notifyZoom()
}

// OnZoomChange sets a callback for zoom changes made through the
// widget (wheel, fit).
func (vc *ViewCanvas) OnZoomChange(callback func(zoom float64)) {
	vc.onZoomChange = callback
}

// OnPixel sets a callback reporting the image coordinates under a
// click, for status display.
func (vc *ViewCanvas) OnPixel(callback func(ix, iy float64)) {
	vc.onPixel = callback
}

// SetSharp implements viewport.Compositor.
func (vc *ViewCanvas) SetSharp(img *image.RGBA, wx, wy float64) {
	vc.mu.Lock()
	vc.sharp, vc.sharpX, vc.sharpY = img, wx, wy
	vc.mu.Unlock()
	vc.raster.Refresh()
}

// SetPreview implements viewport.Compositor.
func (vc *ViewCanvas) SetPreview(img *image.RGBA) {
	vc.mu.Lock()
	vc.preview = img
	vc.mu.Unlock()
	vc.raster.Refresh()
}

// ClearPreview implements viewport.Compositor.
func (vc *ViewCanvas) ClearPreview() {
	vc.mu.Lock()
	vc.preview = nil
	vc.mu.Unlock()
	vc.raster.Refresh()
}

// SetScroll implements viewport.Compositor.
func (vc *ViewCanvas) SetScroll(x, y, regionW, regionH float64) {
	vc.mu.Lock()
	vc.scrollX, vc.scrollY = x, y
	vc.regionW, vc.regionH = regionW, regionH
	vc.mu.Unlock()
	vc.raster.Refresh()
}

// draw composites preview below sharp against the dark background. The
// raster hands us the pixel size, which doubles as the viewport's
// canvas size.
func (vc *ViewCanvas) draw(w, h int) image.Image {
	vc.vp.Resize(w, h)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(colorutil.Background), image.Point{}, draw.Src)

	vc.mu.Lock()
	defer vc.mu.Unlock()

	if vc.preview != nil {
		draw.Draw(out, vc.preview.Bounds(), vc.preview, image.Point{}, draw.Over)
	}
	if vc.sharp != nil {
		x := int(math.Round(vc.sharpX - vc.scrollX))
		y := int(math.Round(vc.sharpY - vc.scrollY))
		b := vc.sharp.Bounds()
		draw.Draw(out, image.Rect(x, y, x+b.Dx(), y+b.Dy()), vc.sharp, image.Point{}, draw.Over)
	}
	return out
}

// Dragged forwards pan gestures. The first event of a gesture begins
// the pan at the pre-drag position so no motion is lost.
func (vc *ViewCanvas) Dragged(ev *fyne.DragEvent) {
	if !vc.dragging {
		vc.dragging = true
		vc.vp.PanBegin(float64(ev.Position.X-ev.Dragged.DX), float64(ev.Position.Y-ev.Dragged.DY))
	}
	vc.vp.PanMove(float64(ev.Position.X), float64(ev.Position.Y))
}

// DragEnd finishes the pan gesture.
func (vc *ViewCanvas) DragEnd() {
	if !vc.dragging {
		return
	}
	vc.dragging = false
	vc.vp.PanEnd()
}

// Scrolled zooms around the cursor, one notch per wheel event.
func (vc *ViewCanvas) Scrolled(ev *fyne.ScrollEvent) {
	delta := 120.0
	if ev.Scrolled.DY < 0 {
		delta = -120.0
	} else if ev.Scrolled.DY == 0 {
		return
	}
	vc.vp.WheelZoom(float64(ev.Position.X), float64(ev.Position.Y), delta)
	vc.notifyZoom()
}

// Tapped reports the clicked image pixel.
func (vc *ViewCanvas) Tapped(ev *fyne.PointEvent) {
	if vc.onPixel == nil {
		return
	}
	ix, iy := vc.vp.ImageAt(float64(ev.Position.X), float64(ev.Position.Y))
	vc.onPixel(ix, iy)
}

func (vc *ViewCanvas) notifyZoom() {
	if vc.onZoomChange != nil {
		vc.onZoomChange(vc.vp.Zoom())
	}
}

// CreateRenderer implements fyne.Widget.
func (vc *ViewCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &viewCanvasRenderer{vc: vc}
}

type viewCanvasRenderer struct {
	vc *ViewCanvas
}

func (r *viewCanvasRenderer) Layout(size fyne.Size) {
	r.vc.raster.Resize(size)
}

func (r *viewCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *viewCanvasRenderer) Refresh() {
	r.vc.raster.Refresh()
}

func (r *viewCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.vc.raster}
}

func (r *viewCanvasRenderer) Destroy() {
	r.vc.vp.Close()
}
