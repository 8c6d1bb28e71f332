package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPyramidStopsAtFloor(t *testing.T) {
	p := BuildPyramid(gradientImage(512, 512), 5, 64)
	require.NotNil(t, p)

	levels := p.Levels()
	require.Len(t, levels, 4)

	wantScales := []float64{1.0, 0.5, 0.25, 0.125}
	for i, lvl := range levels {
		assert.Equal(t, wantScales[i], lvl.Scale)
		b := lvl.Image.Bounds()
		assert.Equal(t, int(512*lvl.Scale), b.Dx())
		assert.Equal(t, int(512*lvl.Scale), b.Dy())
	}

	last := levels[len(levels)-1].Image.Bounds()
	assert.LessOrEqual(t, minI(last.Dx(), last.Dy()), 64)
}

func TestBuildPyramidSmallImageSingleLevel(t *testing.T) {
	p := BuildPyramid(gradientImage(64, 48), 5, 256)
	require.Len(t, p.Levels(), 1)
	assert.Equal(t, 1.0, p.Levels()[0].Scale)
}

func TestBuildPyramidLevelCap(t *testing.T) {
	p := BuildPyramid(gradientImage(1024, 1024), 3, 16)
	assert.Len(t, p.Levels(), 3)
}

func TestBuildPyramidNonSquare(t *testing.T) {
	// The smaller dimension controls the floor.
	p := BuildPyramid(gradientImage(1024, 128), 5, 64)
	require.Len(t, p.Levels(), 2)
	b := p.Levels()[1].Image.Bounds()
	assert.Equal(t, 512, b.Dx())
	assert.Equal(t, 64, b.Dy())
}

func TestSelectPrefersCoarseLevelsAtLowZoom(t *testing.T) {
	p := BuildPyramid(gradientImage(1024, 1024), 5, 64)
	require.Len(t, p.Levels(), 5)

	lo, _ := p.Select(0.125, 0.55)
	hi, _ := p.Select(8.0, 0.55)
	assert.Less(t, lo.Scale, hi.Scale)
	assert.Equal(t, 1.0, hi.Scale)
}

func TestSelectRelIsZoomOverScale(t *testing.T) {
	p := BuildPyramid(gradientImage(1024, 1024), 5, 64)
	lvl, rel := p.Select(0.5, 0.55)
	assert.InDelta(t, 0.5/lvl.Scale, rel, 1e-12)
}

func TestSelectPreviewBiasGoesCoarser(t *testing.T) {
	p := BuildPyramid(gradientImage(2048, 2048), 5, 64)

	for _, zoom := range []float64{0.5, 1.0, 2.0, 4.0} {
		sharp, _ := p.Select(zoom, 0.55)
		prev, _ := p.Select(zoom, 0.55+0.95)
		assert.LessOrEqual(t, prev.Scale, sharp.Scale, "zoom %v", zoom)
	}
}
