package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestZoomT(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.0, cfg.zoomT(0.5))
	assert.Equal(t, 0.0, cfg.zoomT(cfg.ZoomLow))
	assert.Equal(t, 1.0, cfg.zoomT(cfg.ZoomHigh))
	assert.Equal(t, 1.0, cfg.zoomT(16))

	// Smoothstep midpoint.
	mid := (cfg.ZoomLow + cfg.ZoomHigh) / 2
	assert.InDelta(t, 0.5, cfg.zoomT(mid), 1e-9)

	// Monotone in between.
	prev := -1.0
	for z := cfg.ZoomLow; z <= cfg.ZoomHigh; z += 0.25 {
		cur := cfg.zoomT(z)
		assert.GreaterOrEqual(t, cur, prev, "zoom %v", z)
		prev = cur
	}
}

func TestDragParamsEndpoints(t *testing.T) {
	cfg := DefaultConfig()

	margin, quant, debounce := cfg.dragParams(1.0)
	assert.Equal(t, cfg.DragMarginLowZoom, margin)
	assert.Equal(t, cfg.DragQuantLowZoom, quant)
	assert.Equal(t, cfg.BaseEdgeDebounce, debounce)

	margin, quant, debounce = cfg.dragParams(12.0)
	assert.Equal(t, cfg.DragMarginHighZoom, margin)
	assert.Equal(t, cfg.DragQuantHighZoom, quant)
	assert.Equal(t, time.Duration(float64(cfg.BaseEdgeDebounce)*2.2), debounce)
}

func TestDragParamsClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DragMarginLowZoom = 10
	cfg.DragMarginHighZoom = 5000
	cfg.DragQuantLowZoom = 1
	cfg.DragQuantHighZoom = 4096
	cfg.BaseEdgeDebounce = 500 * time.Millisecond

	margin, quant, debounce := cfg.dragParams(1.0)
	assert.Equal(t, 80, margin)
	assert.Equal(t, 8, quant)
	assert.Equal(t, 200*time.Millisecond, debounce)

	margin, quant, _ = cfg.dragParams(16.0)
	assert.Equal(t, 900, margin)
	assert.Equal(t, 256, quant)
}

func TestScreenToImagePx(t *testing.T) {
	assert.Equal(t, 80, screenToImagePx(160, 2))
	assert.Equal(t, 320, screenToImagePx(160, 0.5))
	// Never below one image pixel, even at extreme zoom.
	assert.Equal(t, 1, screenToImagePx(10, 16))
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, 96, quantizeFloor(100, 32))
	assert.Equal(t, 128, quantizeCeil(100, 32))
	assert.Equal(t, 96, quantizeFloor(96, 32))
	assert.Equal(t, 96, quantizeCeil(96, 32))
}
