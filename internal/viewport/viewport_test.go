package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timview/pkg/geometry"
)

func TestInitialDrawCentersImage(t *testing.T) {
	v, comp, sched, _ := newTestViewport(256, 256, 512, 512)
	sched.advance(0)

	vis, ok := v.VisibleRect()
	require.True(t, ok)
	assert.InDelta(t, 128, vis.Center().X, 1e-9)
	assert.InDelta(t, 128, vis.Center().Y, 1e-9)

	require.NotNil(t, comp.sharp)
	assert.Equal(t, uint64(1), v.Stats().SharpRedraws)
}

func TestVisibleRectStaysWithinImage(t *testing.T) {
	v, _, sched, _ := newTestViewport(300, 200, 400, 300)
	sched.advance(0)

	bounds := geometry.NewRect(0, 0, 300, 200)
	for _, z := range []float64{0.5, 1, 3, 16} {
		v.SetZoom(z, false, true)
		sched.advance(0)
		v.SetScroll(5000, 5000) // clamps to the region edge
		sched.advance(time.Second)

		vis, ok := v.VisibleRect()
		require.True(t, ok, "zoom %v", z)
		assert.True(t, bounds.ContainsRect(vis), "zoom %v: %+v", z, vis)
	}
}

func TestZoomFit(t *testing.T) {
	v, _, sched, _ := newTestViewport(256, 256, 512, 512)
	v.ZoomFit()
	sched.advance(0)

	assert.InDelta(t, 2.0, v.Zoom(), 1e-9)
	vis, ok := v.VisibleRect()
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(0, 0, 256, 256), vis)
}

func TestZoomFitClamped(t *testing.T) {
	v, _, sched, _ := newTestViewport(2048, 2048, 64, 64)
	v.ZoomFit()
	sched.advance(0)
	assert.Equal(t, MinZoom, v.Zoom())

	v2, _, sched2, _ := newTestViewport(4, 4, 512, 512)
	v2.ZoomFit()
	sched2.advance(0)
	assert.Equal(t, MaxZoom, v2.Zoom())
}

func TestSetZoomClampsAndSkipsNoops(t *testing.T) {
	v, _, sched, _ := newTestViewport(128, 128, 256, 256)
	sched.advance(0)
	before := v.Stats().SharpRedraws

	v.SetZoom(100, false, false)
	sched.advance(0)
	assert.Equal(t, MaxZoom, v.Zoom())

	// Same zoom without force: no redraw scheduled.
	v.SetZoom(MaxZoom, false, false)
	assert.Equal(t, 0, sched.pendingCount())
	assert.Greater(t, v.Stats().SharpRedraws, before)
}

func TestWheelZoomAnchorsCursor(t *testing.T) {
	v, _, sched, _ := newTestViewport(1024, 1024, 512, 512)
	v.SetZoom(1, true, true)
	sched.advance(0)

	const cx, cy = 256.0, 200.0
	ix0, iy0 := v.ImageAt(cx, cy)

	v.WheelZoom(cx, cy, 120)
	assert.InDelta(t, 1.125, v.Zoom(), 1e-9)

	ix1, iy1 := v.ImageAt(cx, cy)
	assert.InDelta(t, ix0, ix1, 1.0/v.Zoom())
	assert.InDelta(t, iy0, iy1, 1.0/v.Zoom())

	// A single-unit delta counts as a full notch, undoing the zoom.
	v.WheelZoom(cx, cy, -1)
	assert.InDelta(t, 1.0, v.Zoom(), 1e-9)
}

func TestWheelZoomSaturatesAtLimits(t *testing.T) {
	v, _, sched, _ := newTestViewport(128, 128, 256, 256)
	v.SetZoom(MaxZoom, false, true)
	sched.advance(0)

	pending := sched.pendingCount()
	v.WheelZoom(128, 128, 120)
	assert.Equal(t, MaxZoom, v.Zoom())
	assert.Equal(t, pending, sched.pendingCount())
}

func TestScheduleRedrawReplacesPending(t *testing.T) {
	v, _, sched, _ := newTestViewport(256, 256, 256, 256)
	sched.advance(0)
	base := v.Stats().SharpRedraws

	v.ScheduleRedraw(0, true)
	v.ScheduleRedraw(0, true)
	assert.Equal(t, 1, sched.pendingCount())

	sched.advance(0)
	assert.Equal(t, base+1, v.Stats().SharpRedraws)
}

func TestSharpSkipsWhenTileStillCovers(t *testing.T) {
	v, _, sched, _ := newTestViewport(1024, 1024, 256, 256)
	v.SetZoom(1, true, true)
	sched.advance(0)
	base := v.Stats().SharpRedraws

	// Well within the inner tolerance of the cached tile.
	x, y := v.Scroll()
	v.SetScroll(x+10, y)
	sched.advance(time.Second)
	assert.Equal(t, base, v.Stats().SharpRedraws)
}

func TestTileCoversVisibleRect(t *testing.T) {
	v, _, sched, _ := newTestViewport(1024, 1024, 256, 256)

	for _, z := range []float64{0.5, 1, 4, 9} {
		v.SetZoom(z, true, true)
		sched.advance(0)

		vis, ok := v.VisibleRect()
		require.True(t, ok)
		require.NotNil(t, v.tile, "zoom %v", z)
		assert.True(t, v.tile.ToFloat().ContainsRect(vis), "zoom %v: tile %+v vis %+v", z, v.tile, vis)
	}
}

func TestFreezeSuppressesSharpDuringDrag(t *testing.T) {
	v, _, sched, _ := newTestViewport(1024, 1024, 256, 256)
	v.SetZoom(1, true, true)
	sched.advance(0)
	base := v.Stats().SharpRedraws

	v.PanBegin(0, 0)
	v.PanMove(-30, 0)
	sched.advance(time.Second)

	st := v.Stats()
	assert.Equal(t, base, st.SharpRedraws, "sharp layer must stay frozen")
	assert.NotZero(t, st.PreviewRedraws)
}

func TestPreviewThrottle(t *testing.T) {
	v, _, sched, _ := newTestViewport(1024, 1024, 256, 256)
	v.SetZoom(1, true, true)
	sched.advance(0)

	v.PanBegin(0, 0)
	v.PanMove(-5, 0) // immediate: interval long since elapsed
	assert.Equal(t, uint64(1), v.Stats().PreviewRedraws)

	// Rapid moves within the interval coalesce into one pending timer.
	v.PanMove(-10, 0)
	v.PanMove(-15, 0)
	v.PanMove(-20, 0)
	assert.Equal(t, uint64(1), v.Stats().PreviewRedraws)
	assert.Equal(t, 1, sched.pendingCount())

	sched.advance(DefaultConfig().PreviewInterval)
	assert.Equal(t, uint64(2), v.Stats().PreviewRedraws)
}

func TestEscapeHatch(t *testing.T) {
	v, _, sched, _ := newTestViewport(1024, 1024, 256, 256)
	v.SetZoom(1, true, true)
	sched.advance(0)
	base := v.Stats().SharpRedraws

	v.PanBegin(0, 0)

	// Overflow below the escape threshold: still frozen.
	v.PanMove(-200, 0)
	sched.advance(0)
	assert.Equal(t, base, v.Stats().SharpRedraws)

	// Past the threshold: exactly one escape redraw.
	v.PanMove(-160, 0)
	sched.advance(0)
	assert.Equal(t, base+1, v.Stats().SharpRedraws)
}

func TestPanEndForcesSharpAndDropsPreview(t *testing.T) {
	v, comp, sched, _ := newTestViewport(1024, 1024, 256, 256)
	v.SetZoom(1, true, true)
	sched.advance(0)
	base := v.Stats().SharpRedraws

	v.PanBegin(0, 0)
	v.PanMove(-300, 0)
	sched.advance(0)
	during := v.Stats().SharpRedraws

	v.PanEnd()
	sched.advance(0)
	assert.Greater(t, v.Stats().SharpRedraws, during)
	assert.Nil(t, comp.preview)
	assert.NotZero(t, comp.clears)

	// Settle pass runs after the delay without re-rendering: the final
	// redraw above was already full quality.
	after := v.Stats().SharpRedraws
	sched.advance(DefaultConfig().SettleDelay)
	assert.Equal(t, after, v.Stats().SharpRedraws)
	_ = base
}

func TestPanBeginCancelsSettle(t *testing.T) {
	v, _, sched, _ := newTestViewport(1024, 1024, 256, 256)
	v.SetZoom(1, true, true)
	sched.advance(0)

	v.PanBegin(0, 0)
	v.PanMove(-50, 0)
	v.PanEnd()
	sched.advance(0) // forced redraw fires, settle stays queued
	require.Equal(t, 1, sched.pendingCount())

	v.PanBegin(10, 10)
	assert.Equal(t, 0, sched.pendingCount())
}

func TestSetImageNilClearsLayers(t *testing.T) {
	v, comp, sched, _ := newTestViewport(256, 256, 256, 256)
	sched.advance(0)
	require.NotNil(t, comp.sharp)

	v.SetImage(nil, true)
	sched.advance(0)
	assert.Nil(t, comp.sharp)

	_, ok := v.VisibleRect()
	assert.False(t, ok)
}

func TestDragSequence(t *testing.T) {
	v, comp, sched, _ := newTestViewport(256, 256, 512, 512)
	v.ZoomFit()
	sched.advance(0)
	require.InDelta(t, 2.0, v.Zoom(), 1e-9)
	base := v.Stats().SharpRedraws

	// The idle tile covers the whole image at this zoom, so a long drag
	// never escapes the freeze: motion is carried by the preview alone.
	v.PanBegin(500, 250)
	x := 500.0
	for i := 0; i < 8; i++ {
		x -= 50
		v.PanMove(x, 250)
		sched.advance(10 * time.Millisecond)
	}

	st := v.Stats()
	assert.Equal(t, base, st.SharpRedraws)
	assert.NotZero(t, st.PreviewRedraws)
	require.NotNil(t, comp.preview)
	assert.Equal(t, 512, comp.preview.Bounds().Dx())
	assert.Equal(t, 512, comp.preview.Bounds().Dy())

	v.PanEnd()
	sched.advance(0)
	sched.advance(time.Second)

	vis, ok := v.VisibleRect()
	require.True(t, ok)
	assert.False(t, vis.Empty())
	assert.True(t, geometry.NewRect(0, 0, 256, 256).ContainsRect(vis))
	require.NotNil(t, v.tile)
	assert.True(t, v.tile.ToFloat().ContainsRect(vis))
	assert.Nil(t, comp.preview)
}

func TestScrollReportedToCompositor(t *testing.T) {
	v, comp, sched, _ := newTestViewport(256, 256, 512, 512)
	sched.advance(0)

	x, y := v.Scroll()
	assert.Equal(t, x, comp.scrollX)
	assert.Equal(t, y, comp.scrollY)

	// Region = zoomed image plus padding on both sides.
	assert.InDelta(t, 256*v.Zoom()+2*512, comp.regionW, 1e-9)
	assert.InDelta(t, 256*v.Zoom()+2*512, comp.regionH, 1e-9)
}

func TestSetImageRebuildsPyramid(t *testing.T) {
	v, _, sched, _ := newTestViewport(2048, 2048, 512, 512)
	sched.advance(0)

	require.NotNil(t, v.pyr)
	assert.Len(t, v.pyr.Levels(), 4)

	v.SetImage(gradientImage(64, 64), true)
	sched.advance(0)

	require.NotNil(t, v.pyr)
	assert.Len(t, v.pyr.Levels(), 1)
	assert.Equal(t, 1.0, v.pyr.Levels()[0].Scale)
}
