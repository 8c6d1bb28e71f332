package viewport

import (
	"image/color"
	"time"

	"timview/pkg/colorutil"
)

// Zoom limits shared by every zoom entry point.
const (
	MinZoom = 0.5
	MaxZoom = 16.0
)

// Config collects the renderer's tuning knobs. The defaults are
// empirically tuned; the mechanisms (freeze, escape, throttles) are the
// contract, the exact numbers are not.
type Config struct {
	// WheelRatio is the zoom multiplier per 120 wheel units.
	WheelRatio float64

	// PadPixels fixes the scroll-region padding around the image. Zero
	// or negative means automatic: max(canvas width, canvas height).
	PadPixels int

	// Sharp-layer margins, in screen pixels.
	IdleMarginScreen  int // tile margin when not dragging
	InnerPadScreen    int // tolerance before a pan forces a redraw
	EdgeTriggerScreen int // near-edge trigger, non-freeze mode only

	// BaseEdgeDebounce is the base delay for drag-scaled debouncing.
	BaseEdgeDebounce time.Duration

	// ZoomLow/ZoomHigh bound the smoothstep easing used to scale drag
	// margins, quantization, and throttle intervals with zoom.
	ZoomLow  float64
	ZoomHigh float64

	// Drag-time tile sizing, interpolated between the low-zoom and
	// high-zoom endpoints.
	DragMarginLowZoom  int
	DragMarginHighZoom int
	DragQuantLowZoom   int
	DragQuantHighZoom  int

	// Freeze: suppress sharp redraws during a drag, escaping only when
	// the view overflows the cached tile far enough.
	FreezeEnabled         bool
	EscapeThresholdScreen float64
	EscapeIntervalLow     time.Duration
	EscapeIntervalHigh    time.Duration

	// Fallback drag throttle used when freeze is disabled.
	DragIntervalLow         time.Duration
	DragIntervalHigh        time.Duration
	DragOutsideTileInterval time.Duration

	// Preview (proxy) layer.
	PreviewEnabled    bool
	PreviewInterval   time.Duration
	PreviewBiasExtra  float64
	PreviewBackground color.RGBA

	// Pyramid construction and level selection.
	PyramidMinDim int
	PyramidLevels int
	PyramidBias   float64

	// SettleDelay is how long after a drag release the deferred
	// high-quality redraw waits.
	SettleDelay time.Duration
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		WheelRatio: 1.125,

		IdleMarginScreen:  160,
		InnerPadScreen:    140,
		EdgeTriggerScreen: 140,
		BaseEdgeDebounce:  18 * time.Millisecond,

		ZoomLow:  2.5,
		ZoomHigh: 10.0,

		DragMarginLowZoom:  260,
		DragMarginHighZoom: 420,
		DragQuantLowZoom:   32,
		DragQuantHighZoom:  64,

		FreezeEnabled:         true,
		EscapeThresholdScreen: 130,
		EscapeIntervalLow:     0,
		EscapeIntervalHigh:    75 * time.Millisecond,

		DragIntervalLow:         0,
		DragIntervalHigh:        55 * time.Millisecond,
		DragOutsideTileInterval: 70 * time.Millisecond,

		PreviewEnabled:    true,
		PreviewInterval:   18 * time.Millisecond,
		PreviewBiasExtra:  0.95,
		PreviewBackground: colorutil.Background,

		PyramidMinDim: 256,
		PyramidLevels: 5,
		PyramidBias:   0.55,

		SettleDelay: 120 * time.Millisecond,
	}
}

// zoomT maps zoom onto [0,1] with smoothstep easing between ZoomLow and
// ZoomHigh. At high zoom a screen-pixel margin covers few image pixels,
// so margins, quantization, and throttles all grow with t.
func (c *Config) zoomT(zoom float64) float64 {
	if zoom <= c.ZoomLow {
		return 0
	}
	if zoom >= c.ZoomHigh {
		return 1
	}
	t := (zoom - c.ZoomLow) / (c.ZoomHigh - c.ZoomLow)
	return t * t * (3 - 2*t)
}

// dragParams returns the drag-time tile margin and quantization grid (in
// screen pixels) and the eased debounce delay for the given zoom.
func (c *Config) dragParams(zoom float64) (margin, quant int, debounce time.Duration) {
	t := c.zoomT(zoom)

	margin = c.DragMarginLowZoom + int(float64(c.DragMarginHighZoom-c.DragMarginLowZoom)*t+0.5)
	quant = c.DragQuantLowZoom + int(float64(c.DragQuantHighZoom-c.DragQuantLowZoom)*t+0.5)
	debounce = time.Duration(float64(c.BaseEdgeDebounce) * (1 + 1.2*t))

	margin = clampInt(margin, 80, 900)
	quant = clampInt(quant, 8, 256)
	debounce = clampDuration(debounce, 8*time.Millisecond, 200*time.Millisecond)
	return margin, quant, debounce
}

// lerpDuration interpolates between two intervals by the eased zoom t.
func lerpDuration(lo, hi time.Duration, t float64) time.Duration {
	return lo + time.Duration(float64(hi-lo)*t)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
